package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/omnarkhede/volunteerhub/internal/config"
	"github.com/omnarkhede/volunteerhub/pkg/core/model"
	"github.com/omnarkhede/volunteerhub/pkg/core/services"
	"github.com/omnarkhede/volunteerhub/pkg/db"
	"github.com/omnarkhede/volunteerhub/pkg/identity"
	"github.com/omnarkhede/volunteerhub/pkg/utils"
	"github.com/omnarkhede/volunteerhub/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg      *config.Config
	database *db.DB
	verifier *identity.Verifier
	review   *services.ReviewSession
	logger   *zap.Logger
	ctx      context.Context
}

var (
	env string
	app *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "VolunteerHub CLI - Manage opportunities and applications",
		Long:  `A CLI tool for managing volunteer opportunities, reviewing applications, and rating volunteers.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.logger != nil {
				app.logger.Sync()
			}
			if app != nil && app.database != nil {
				app.database.Close()
			}
		},
	}

	// Add persistent environment flag
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	// Add all commands
	rootCmd.AddCommand(listOpportunitiesCmd())
	rootCmd.AddCommand(createOpportunityCmd())
	rootCmd.AddCommand(toggleOpportunityCmd())
	rootCmd.AddCommand(deleteOpportunityCmd())
	rootCmd.AddCommand(applyCmd())
	rootCmd.AddCommand(applicantsCmd())
	rootCmd.AddCommand(refreshApplicantsCmd())
	rootCmd.AddCommand(approveCmd())
	rootCmd.AddCommand(rejectCmd())
	rootCmd.AddCommand(rateCmd())
	rootCmd.AddCommand(noteCmd())
	rootCmd.AddCommand(volunteerRatingCmd())
	rootCmd.AddCommand(interactiveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, database, and identity verifier
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	// Initialize logger
	app.logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application")

	// Load configuration
	app.logger.Info("Loading configuration")
	app.cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.logger.Debug("Configuration loaded successfully")

	// Initialize identity verifier
	app.verifier = identity.NewVerifier(
		app.cfg.Identity.SigningKey,
		app.cfg.Identity.Issuer,
		app.cfg.Identity.AdminEmails,
	)

	// Initialize database
	app.logger.Info("Connecting to database")
	app.database, err = db.NewDB(app.ctx, app.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.logger.Info("Database initialized successfully")

	// Review session caches applicant lists and volunteer ratings for the
	// life of this process (one command, or a whole interactive session)
	app.review = services.NewReviewSession(app.database, app.logger)

	return nil
}

// Command definitions

func listOpportunitiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listOpportunities",
		Short: "List opportunities (active only by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")
			category, _ := cmd.Flags().GetString("category")
			all, _ := cmd.Flags().GetBool("all")

			var opportunities []db.Opportunity
			var err error
			if all {
				opportunities, err = services.ListAllOpportunities(app.ctx, app.database, app.logger)
			} else {
				opportunities, err = services.ListActiveOpportunities(app.ctx, app.database, app.logger)
			}
			if err != nil {
				return err
			}

			opportunities = services.FilterOpportunities(opportunities, search, db.Category(category))

			fmt.Printf("\nFound %d opportunities:\n\n", len(opportunities))
			for _, o := range opportunities {
				status := "active"
				if !o.IsActive {
					status = "inactive"
				}
				fmt.Printf("- %s (%s)\n", o.Title, o.ID)
				fmt.Printf("    %s | %s | %s | %d/%d volunteers | %s\n",
					o.Category, o.Location, o.Date,
					o.CurrentVolunteers, o.MaxVolunteers, status)
			}

			return nil
		},
	}

	cmd.Flags().String("search", "", "Free-text search over title, description and location")
	cmd.Flags().String("category", "", "Exact category filter")
	cmd.Flags().Bool("all", false, "Include inactive opportunities")

	return cmd
}

func createOpportunityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "createOpportunity <title> <description> <location> <date> <category> <max_volunteers>",
		Short: "Create a new opportunity (active, zero volunteers)",
		Args:  cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			requirements, _ := cmd.Flags().GetString("requirements")
			price, _ := cmd.Flags().GetString("price")

			opportunity, err := services.CreateOpportunity(app.ctx, app.database, app.logger, services.OpportunityDraft{
				Title:         args[0],
				Description:   args[1],
				Location:      args[2],
				Date:          args[3],
				Category:      args[4],
				MaxVolunteers: args[5],
				Requirements:  requirements,
				Price:         price,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Opportunity created successfully!\n\n")
			fmt.Printf("ID:             %s\n", opportunity.ID)
			fmt.Printf("Title:          %s\n", opportunity.Title)
			fmt.Printf("Category:       %s\n", opportunity.Category)
			fmt.Printf("Max volunteers: %d\n\n", opportunity.MaxVolunteers)

			return nil
		},
	}

	cmd.Flags().String("requirements", "", "Requirements text")
	cmd.Flags().String("price", "", "Participation price (empty means free)")

	return cmd
}

func toggleOpportunityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggleOpportunity <opportunity_id>",
		Short: "Flip an opportunity's active flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			active, err := services.ToggleOpportunityActive(app.ctx, app.database, app.logger, args[0])
			if err != nil {
				return err
			}

			if active {
				fmt.Printf("\n✓ Opportunity activated\n\n")
			} else {
				fmt.Printf("\n✓ Opportunity deactivated\n\n")
			}
			return nil
		},
	}
}

func deleteOpportunityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deleteOpportunity <opportunity_id>",
		Short: "Delete an opportunity and all of its applications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.DeleteOpportunity(app.ctx, app.database, app.logger, args[0])
			if err != nil {
				return err
			}

			app.review.Refresh(args[0])
			fmt.Printf("\n✓ Opportunity deleted (%d applications also removed)\n\n", result.ApplicationsRemoved)
			return nil
		},
	}
}

func applyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <opportunity_id>",
		Short: "Apply for an opportunity as the signed-in volunteer",
		Long: `Apply for an opportunity. Identity comes from an identity-provider token:
pass one with --token, or leave it empty to fetch one using the OAuth client
configuration (idpClient.<env>.json).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			phone, _ := cmd.Flags().GetString("phone")
			message, _ := cmd.Flags().GetString("message")
			token, _ := cmd.Flags().GetString("token")

			if token == "" {
				oauthCfg, err := config.LoadOAuthClientWithEnv(env)
				if err != nil {
					return fmt.Errorf("failed to load OAuth client config: %w", err)
				}
				token, err = utils.FetchIdentityToken(app.ctx, oauthCfg)
				if err != nil {
					return err
				}
			}

			user, err := app.verifier.Verify(token)
			if err != nil {
				return err
			}

			application, err := services.Apply(app.ctx, app.database, app.logger, args[0], user,
				model.ApplicationRequest{Phone: phone, Message: message})
			if err != nil {
				return err
			}

			app.review.Refresh(args[0])
			fmt.Printf("\n✓ Application submitted!\n\n")
			fmt.Printf("Application ID: %s\n", application.ID)
			fmt.Printf("Status:         %s\n\n", application.Status)

			return nil
		},
	}

	cmd.Flags().String("phone", "", "Contact phone number (required)")
	cmd.Flags().String("message", "", "Motivation message")
	cmd.Flags().String("token", "", "Identity-provider token (fetched via OAuth client when empty)")
	cmd.MarkFlagRequired("phone")

	return cmd
}

func applicantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "applicants <opportunity_id>",
		Short: "List an opportunity's applicants with their historical ratings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applications, err := app.review.Applicants(app.ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\nFound %d applicants:\n\n", len(applications))
			for _, a := range applications {
				avg, err := app.review.VolunteerRating(app.ctx, a.VolunteerID)
				if err != nil {
					return err
				}
				avgText := "N/A"
				if avg != nil {
					avgText = fmt.Sprintf("%.1f", *avg)
				}

				fmt.Printf("- %s (%s) - %s\n", a.VolunteerName, a.ID, a.Status)
				fmt.Printf("    %s | %s | avg rating %s\n", a.VolunteerEmail, a.Phone, avgText)
				if a.Message != "" {
					fmt.Printf("    Message: %s\n", a.Message)
				}
				if a.AdminNotes != nil && *a.AdminNotes != "" {
					fmt.Printf("    Notes:   %s\n", *a.AdminNotes)
				}
			}

			return nil
		},
	}
}

func refreshApplicantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refreshApplicants <opportunity_id>",
		Short: "Drop the cached applicant list so the next view re-fetches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.review.Refresh(args[0])
			fmt.Println("✓ Applicant cache cleared")
			return nil
		},
	}
}

func approveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <application_id>",
		Short: "Approve an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.review.SetStatus(app.ctx, args[0], db.StatusApproved); err != nil {
				return err
			}
			fmt.Printf("\n✓ Application approved\n\n")
			return nil
		},
	}
}

func rejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject <application_id>",
		Short: "Reject an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.review.SetStatus(app.ctx, args[0], db.StatusRejected); err != nil {
				return err
			}
			fmt.Printf("\n✓ Application rejected\n\n")
			return nil
		},
	}
}

func rateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rate <application_id> <rating>",
		Short: "Rate an application from 1 to 5 (overwrites any existing rating)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rating, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("rating must be a number: %w", err)
			}

			if err := app.review.SetRating(app.ctx, args[0], rating); err != nil {
				return err
			}
			fmt.Printf("\n✓ Rating saved\n\n")
			return nil
		},
	}
}

func noteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "note <application_id> <notes...>",
		Short: "Record admin notes on an application",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			notes := strings.Join(args[1:], " ")

			if err := app.review.SetNotes(app.ctx, args[0], notes); err != nil {
				return err
			}
			fmt.Printf("\n✓ Notes saved\n\n")
			return nil
		},
	}
}

func volunteerRatingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "volunteerRating <volunteer_id>",
		Short: "Show a volunteer's average rating across all applications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			avg, err := app.review.VolunteerRating(app.ctx, args[0])
			if err != nil {
				return err
			}

			if avg == nil {
				fmt.Printf("\nVolunteer %s has no ratings yet (N/A)\n\n", args[0])
			} else {
				fmt.Printf("\nVolunteer %s average rating: %.1f\n\n", args[0], *avg)
			}
			return nil
		},
	}
}

func interactiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (connect once, run multiple commands)",
		Long: `Start an interactive session where you can run multiple commands without reconnecting.
Applicant lists and volunteer ratings stay cached between commands until a
mutation or refreshApplicants invalidates them.

Type 'help' to see available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("\n🚀 Starting interactive session...")
			fmt.Println("Type 'help' for available commands, 'exit' or 'quit' to leave")

			// Get all sibling commands (excluding interactive itself)
			rootCmd := cmd.Parent()
			commands := make(map[string]*cobra.Command)
			for _, subCmd := range rootCmd.Commands() {
				if subCmd.Name() != "interactive" && subCmd.Name() != "completion" && subCmd.Name() != "help" {
					commands[subCmd.Name()] = subCmd
				}
			}

			scanner := bufio.NewScanner(os.Stdin)

			for {
				fmt.Print("> ")

				if !scanner.Scan() {
					break
				}

				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				// Parse command
				parts := strings.Fields(line)
				cmdName := parts[0]
				cmdArgs := parts[1:]

				// Handle exit
				if cmdName == "exit" || cmdName == "quit" {
					fmt.Println("👋 Goodbye!")
					return nil
				}

				// Handle help
				if cmdName == "help" {
					printInteractiveHelp(commands)
					continue
				}

				// Execute command via Cobra
				targetCmd, exists := commands[cmdName]
				if !exists {
					fmt.Printf("❌ Unknown command: %s (type 'help' for available commands)\n\n", cmdName)
					continue
				}

				// Reset command flags and args
				targetCmd.Flags().VisitAll(func(flag *pflag.Flag) {
					flag.Changed = false
					flag.Value.Set(flag.DefValue)
				})

				// Execute the command's RunE directly, bypassing the full Execute() flow
				// This avoids re-running PersistentPreRunE which would call initApp() again
				if err := targetCmd.ParseFlags(cmdArgs); err != nil {
					fmt.Printf("❌ Error parsing flags: %v\n\n", err)
					continue
				}

				// Get non-flag args after parsing flags
				cmdArgs = targetCmd.Flags().Args()

				// Validate args
				if err := targetCmd.Args(targetCmd, cmdArgs); err != nil {
					fmt.Printf("❌ Error: %v\n\n", err)
					continue
				}

				// Execute the RunE function directly
				if targetCmd.RunE != nil {
					if err := targetCmd.RunE(targetCmd, cmdArgs); err != nil {
						fmt.Printf("❌ Error: %v\n\n", err)
					}
				} else if targetCmd.Run != nil {
					targetCmd.Run(targetCmd, cmdArgs)
				}
			}

			if err := scanner.Err(); err != nil {
				return fmt.Errorf("error reading input: %w", err)
			}

			return nil
		},
	}

	return cmd
}

func printInteractiveHelp(commands map[string]*cobra.Command) {
	fmt.Println("\nAvailable commands:")

	// Get command names and sort them
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}

	// Print each command with its short description
	for _, name := range names {
		cmd := commands[name]
		fmt.Printf("  %-30s %s\n", cmd.Use, cmd.Short)
	}

	fmt.Println("\n  help                           Show this help message")
	fmt.Println("  exit, quit                     Exit the interactive session")
}
