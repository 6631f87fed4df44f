package db

import "time"

// Category classifies an opportunity. The set is fixed; the admin form only
// offers these six.
type Category string

const (
	CategoryCommunityService Category = "Community Service"
	CategoryEducation        Category = "Education"
	CategoryEnvironment      Category = "Environment"
	CategoryHealthcare       Category = "Healthcare"
	CategoryAnimalCare       Category = "Animal Care"
	CategorySeniorCare       Category = "Senior Care"
)

// Categories returns every valid category in display order.
func Categories() []Category {
	return []Category{
		CategoryCommunityService,
		CategoryEducation,
		CategoryEnvironment,
		CategoryHealthcare,
		CategoryAnimalCare,
		CategorySeniorCare,
	}
}

func (c Category) IsValid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Status is the review state of an application.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// IsDecision reports whether the status is one an admin may set. Applications
// start pending; only approved/rejected are written by the review workflow.
func (s Status) IsDecision() bool {
	return s == StatusApproved || s == StatusRejected
}

// Opportunity is a postable volunteer activity.
type Opportunity struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Requirements      string    `json:"requirements"`
	Location          string    `json:"location"`
	Date              string    `json:"date"`
	MaxVolunteers     int       `json:"max_volunteers"`
	CurrentVolunteers int       `json:"current_volunteers"`
	Category          Category  `json:"category"`
	CreatedAt         time.Time `json:"created_at"`
	IsActive          bool      `json:"is_active"`
	Price             *float64  `json:"price,omitempty"`
}

// Application is a volunteer's request to participate in an opportunity.
// Name/email/image are a snapshot of the identity-provider profile at apply
// time.
type Application struct {
	ID                string    `json:"id"`
	OpportunityID     string    `json:"opportunity_id"`
	VolunteerID       string    `json:"volunteer_id"`
	VolunteerName     string    `json:"volunteer_name"`
	VolunteerEmail    string    `json:"volunteer_email"`
	Phone             string    `json:"phone"`
	Message           string    `json:"message"`
	Status            Status    `json:"status"`
	Rating            *int      `json:"rating,omitempty"`
	VolunteerImageURL *string   `json:"volunteer_image_url,omitempty"`
	AdminNotes        *string   `json:"admin_notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
