package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/omnarkhede/volunteerhub/pkg/core/model"
	"github.com/omnarkhede/volunteerhub/pkg/core/services"
	"github.com/omnarkhede/volunteerhub/pkg/db"
	"github.com/omnarkhede/volunteerhub/pkg/identity"
)

// Store is the record store surface the HTTP API needs.
type Store interface {
	db.CatalogStore
	db.ApplyStore
	db.ReviewStore
	db.AdminStore
	db.ProfileStore
}

// Handler holds the HTTP API dependencies.
type Handler struct {
	store    Store
	verifier *identity.Verifier
	logger   *zap.Logger
}

// New creates the API handler set.
func New(store Store, verifier *identity.Verifier, logger *zap.Logger) *Handler {
	return &Handler{
		store:    store,
		verifier: verifier,
		logger:   logger,
	}
}

// Routes mounts every endpoint on a fresh router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/api/opportunities", h.ListOpportunities)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(h.verifier, h.logger))

		r.Post("/api/opportunities/{id}/applications", h.Apply)
		r.Get("/api/me/applications", h.MyApplications)
		r.Get("/api/me/summary", h.MySummary)

		r.Group(func(r chi.Router) {
			r.Use(AdminMiddleware(h.verifier))

			r.Get("/api/admin/opportunities", h.AdminListOpportunities)
			r.Post("/api/admin/opportunities", h.CreateOpportunity)
			r.Patch("/api/admin/opportunities/{id}/active", h.ToggleOpportunity)
			r.Delete("/api/admin/opportunities/{id}", h.DeleteOpportunity)
			r.Get("/api/admin/opportunities/{id}/applications", h.ListApplicants)
			r.Patch("/api/admin/applications/{id}/status", h.SetStatus)
			r.Patch("/api/admin/applications/{id}/rating", h.SetRating)
			r.Patch("/api/admin/applications/{id}/notes", h.SetNotes)
			r.Get("/api/admin/volunteers/{id}/rating", h.VolunteerRating)
		})
	})
}

// ListOpportunities serves the public catalog with optional ?search= and
// ?category= narrowing.
func (h *Handler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	opportunities, err := services.ListActiveOpportunities(r.Context(), h.store, h.logger)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	search := r.URL.Query().Get("search")
	category := db.Category(r.URL.Query().Get("category"))
	filtered := services.FilterOpportunities(opportunities, search, category)

	writeJSON(w, http.StatusOK, filtered)
}

type applyRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Apply submits an application for the signed-in user.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	application, err := services.Apply(r.Context(), h.store, h.logger,
		chi.URLParam(r, "id"), user,
		model.ApplicationRequest{Phone: req.Phone, Message: req.Message})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, application)
}

// MyApplications serves the signed-in volunteer's applications joined to
// their opportunities.
func (h *Handler) MyApplications(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	applications, err := services.MyApplications(r.Context(), h.store, h.logger, user)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, applications)
}

// MySummary serves the signed-in volunteer's dashboard totals.
func (h *Handler) MySummary(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	summary, err := services.MyProfileSummary(r.Context(), h.store, h.logger, user)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// AdminListOpportunities serves every opportunity, inactive ones included.
func (h *Handler) AdminListOpportunities(w http.ResponseWriter, r *http.Request) {
	opportunities, err := services.ListAllOpportunities(r.Context(), h.store, h.logger)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, opportunities)
}

type createOpportunityRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Requirements  string `json:"requirements"`
	Location      string `json:"location"`
	Date          string `json:"date"`
	Category      string `json:"category"`
	MaxVolunteers string `json:"max_volunteers"`
	Price         string `json:"price"`
}

// CreateOpportunity posts a new opportunity from the admin form.
func (h *Handler) CreateOpportunity(w http.ResponseWriter, r *http.Request) {
	var req createOpportunityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opportunity, err := services.CreateOpportunity(r.Context(), h.store, h.logger, services.OpportunityDraft{
		Title:         req.Title,
		Description:   req.Description,
		Requirements:  req.Requirements,
		Location:      req.Location,
		Date:          req.Date,
		Category:      req.Category,
		MaxVolunteers: req.MaxVolunteers,
		Price:         req.Price,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, opportunity)
}

// ToggleOpportunity flips an opportunity's active flag.
func (h *Handler) ToggleOpportunity(w http.ResponseWriter, r *http.Request) {
	active, err := services.ToggleOpportunityActive(r.Context(), h.store, h.logger, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"is_active": active})
}

// DeleteOpportunity removes an opportunity and its applications.
func (h *Handler) DeleteOpportunity(w http.ResponseWriter, r *http.Request) {
	result, err := services.DeleteOpportunity(r.Context(), h.store, h.logger, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"applications_removed": result.ApplicationsRemoved})
}

// ListApplicants serves an opportunity's applications for review.
func (h *Handler) ListApplicants(w http.ResponseWriter, r *http.Request) {
	applications, err := services.ListApplicants(r.Context(), h.store, h.logger, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, applications)
}

type statusRequest struct {
	Status db.Status `json:"status"`
}

// SetStatus records an approve/reject decision.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := services.SetApplicationStatus(r.Context(), h.store, h.logger, chi.URLParam(r, "id"), req.Status); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]db.Status{"status": req.Status})
}

type ratingRequest struct {
	Rating int `json:"rating"`
}

// SetRating records a 1-5 rating.
func (h *Handler) SetRating(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := services.SetApplicationRating(r.Context(), h.store, h.logger, chi.URLParam(r, "id"), req.Rating); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"rating": req.Rating})
}

type notesRequest struct {
	Notes string `json:"notes"`
}

// SetNotes records admin notes.
func (h *Handler) SetNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := services.SetApplicationNotes(r.Context(), h.store, h.logger, chi.URLParam(r, "id"), req.Notes); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type volunteerRatingResponse struct {
	VolunteerID   string   `json:"volunteer_id"`
	AverageRating *float64 `json:"average_rating"`
}

// VolunteerRating serves a volunteer's average rating across every
// application; average_rating is null when nothing has been rated.
func (h *Handler) VolunteerRating(w http.ResponseWriter, r *http.Request) {
	volunteerID := chi.URLParam(r, "id")

	avg, err := services.AverageRating(r.Context(), h.store, h.logger, volunteerID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, volunteerRatingResponse{VolunteerID: volunteerID, AverageRating: avg})
}
