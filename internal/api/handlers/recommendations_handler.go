package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/rareminds/skillhub/internal/api/response"
	"github.com/rareminds/skillhub/internal/apperrors"
	"github.com/rareminds/skillhub/internal/models"
	"github.com/rareminds/skillhub/internal/recommend"
)

// RecommendationProvider defines the interface for ranked recommendations.
type RecommendationProvider interface {
	RecommendForStudent(ctx context.Context, studentID uuid.UUID, kind models.EntityKind,
		skillGaps []string, limit int) ([]recommend.Recommendation, error)
}

// RecommendationsHandler handles HTTP requests for student recommendations.
type RecommendationsHandler struct {
	service RecommendationProvider
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(service RecommendationProvider) *RecommendationsHandler {
	return &RecommendationsHandler{service: service}
}

// RecommendationsResponse is the response for GET /v1/students/{studentID}/recommendations.
type RecommendationsResponse struct {
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

const (
	defaultRecommendationLimit = 10
	maxRecommendationLimit     = 50
)

// List handles GET /v1/students/{studentID}/recommendations.
// Query parameters: kind (courses|opportunities, default courses), limit,
// and skillGaps (comma-separated skill names).
func (h *RecommendationsHandler) List(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("studentID")

	studentID, err := uuid.Parse(idStr)
	if err != nil {
		response.RespondBadRequest(w, "Invalid student ID")

		return
	}

	kind := models.KindCourses
	if kindStr := r.URL.Query().Get("kind"); kindStr != "" {
		kind, err = models.ParseEntityKind(kindStr)
		if err != nil || kind == models.KindStudents {
			response.RespondBadRequest(w, "kind must be one of: courses, opportunities")

			return
		}
	}

	limit := defaultRecommendationLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = min(l, maxRecommendationLimit)
		}
	}

	skillGaps := parseSkillGaps(r.URL.Query().Get("skillGaps"))

	recs, err := h.service.RecommendForStudent(r.Context(), studentID, kind, skillGaps, limit)
	if err != nil {
		var notFound *apperrors.NotFoundError
		if errors.As(err, &notFound) {
			response.RespondNotFound(w, "Student not found")

			return
		}

		response.RespondInternalServerError(w, "Recommendation lookup failed")

		return
	}

	response.RespondJSON(w, http.StatusOK, RecommendationsResponse{Recommendations: recs})
}

// parseSkillGaps splits a comma-separated list, trimming whitespace and
// dropping empty entries.
func parseSkillGaps(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	gaps := make([]string, 0, len(parts))

	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			gaps = append(gaps, trimmed)
		}
	}

	return gaps
}
