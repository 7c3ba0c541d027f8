package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rareminds/skillhub/internal/apperrors"
	"github.com/rareminds/skillhub/internal/models"
	"github.com/rareminds/skillhub/internal/recommend"
)

type mockRecommendationProvider struct {
	recs []recommend.Recommendation
	err  error

	gotStudentID uuid.UUID
	gotKind      models.EntityKind
	gotSkillGaps []string
	gotLimit     int
}

func (m *mockRecommendationProvider) RecommendForStudent(
	_ context.Context, studentID uuid.UUID, kind models.EntityKind, skillGaps []string, limit int,
) ([]recommend.Recommendation, error) {
	m.gotStudentID = studentID
	m.gotKind = kind
	m.gotSkillGaps = skillGaps
	m.gotLimit = limit

	if m.err != nil {
		return nil, m.err
	}

	return m.recs, nil
}

func recommendationsRequest(t *testing.T, studentID, query string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet,
		"/v1/students/"+studentID+"/recommendations"+query, nil)
	req.SetPathValue("studentID", studentID)

	return req
}

func TestRecommendationsHandler_List_success(t *testing.T) {
	studentID := uuid.Must(uuid.NewV7())
	provider := &mockRecommendationProvider{
		recs: []recommend.Recommendation{
			{
				EntityID:       uuid.Must(uuid.NewV7()),
				Title:          "Go Fundamentals",
				RelevanceScore: 87,
				MatchReasons:   []string{"Aligned with your profile"},
			},
		},
	}

	handler := NewRecommendationsHandler(provider)
	rec := httptest.NewRecorder()

	handler.List(rec, recommendationsRequest(t, studentID.String(), ""))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp RecommendationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "Go Fundamentals", resp.Recommendations[0].Title)
	assert.Equal(t, 87, resp.Recommendations[0].RelevanceScore)

	assert.Equal(t, studentID, provider.gotStudentID)
	assert.Equal(t, models.KindCourses, provider.gotKind)
	assert.Equal(t, 10, provider.gotLimit)
}

func TestRecommendationsHandler_List_queryParameters(t *testing.T) {
	provider := &mockRecommendationProvider{recs: []recommend.Recommendation{}}
	handler := NewRecommendationsHandler(provider)
	rec := httptest.NewRecorder()

	req := recommendationsRequest(t, uuid.Must(uuid.NewV7()).String(),
		"?kind=opportunities&limit=5&skillGaps=Docker,%20Kubernetes%20,,Rust")

	handler.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.KindOpportunities, provider.gotKind)
	assert.Equal(t, 5, provider.gotLimit)
	assert.Equal(t, []string{"Docker", "Kubernetes", "Rust"}, provider.gotSkillGaps)
}

func TestRecommendationsHandler_List_limitClamped(t *testing.T) {
	provider := &mockRecommendationProvider{recs: []recommend.Recommendation{}}
	handler := NewRecommendationsHandler(provider)
	rec := httptest.NewRecorder()

	handler.List(rec, recommendationsRequest(t, uuid.Must(uuid.NewV7()).String(), "?limit=500"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, provider.gotLimit)
}

func TestRecommendationsHandler_List_invalidStudentID(t *testing.T) {
	handler := NewRecommendationsHandler(&mockRecommendationProvider{})
	rec := httptest.NewRecorder()

	handler.List(rec, recommendationsRequest(t, "not-a-uuid", ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommendationsHandler_List_invalidKind(t *testing.T) {
	handler := NewRecommendationsHandler(&mockRecommendationProvider{})
	rec := httptest.NewRecorder()

	handler.List(rec, recommendationsRequest(t, uuid.Must(uuid.NewV7()).String(), "?kind=mentors"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Students are never a recommendation target.
	rec = httptest.NewRecorder()
	handler.List(rec, recommendationsRequest(t, uuid.Must(uuid.NewV7()).String(), "?kind=students"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommendationsHandler_List_studentNotFound(t *testing.T) {
	provider := &mockRecommendationProvider{err: apperrors.NewNotFoundError("student", "")}
	handler := NewRecommendationsHandler(provider)
	rec := httptest.NewRecorder()

	handler.List(rec, recommendationsRequest(t, uuid.Must(uuid.NewV7()).String(), ""))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestRecommendationsHandler_List_serviceError(t *testing.T) {
	provider := &mockRecommendationProvider{err: errors.New("boom")}
	handler := NewRecommendationsHandler(provider)
	rec := httptest.NewRecorder()

	handler.List(rec, recommendationsRequest(t, uuid.Must(uuid.NewV7()).String(), ""))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
