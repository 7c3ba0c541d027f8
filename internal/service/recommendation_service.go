// Package service wires profiles, the embedding client, and the
// recommendation engine into the request-facing recommendation flow.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/rareminds/skillhub/internal/embed"
	"github.com/rareminds/skillhub/internal/embedtext"
	"github.com/rareminds/skillhub/internal/models"
	"github.com/rareminds/skillhub/internal/recommend"
)

// StudentStore provides the student reads and the embedding point update used
// by the on-demand profile path.
type StudentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Student, error)
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error
}

// CandidateLister provides one entity kind's recommendation pool.
type CandidateLister interface {
	ListEmbedded(ctx context.Context) ([]recommend.Candidate, error)
}

// RecommendationService ranks courses or opportunities for a student profile.
// Provider and storage failures degrade to empty results; they never surface
// to the consumer.
type RecommendationService struct {
	students      StudentStore
	pools         map[models.EntityKind]CandidateLister
	embedder      embed.Client
	engine        *recommend.Engine
	dimensions    int
	profileCache  *lru.Cache[string, []float32]
	embedGroup    singleflight.Group
	logger        *slog.Logger
}

// RecommendationServiceParams configures RecommendationService.
// ProfileCache and Logger may be nil (no caching, default logger).
type RecommendationServiceParams struct {
	Students      StudentStore
	Courses       CandidateLister
	Opportunities CandidateLister
	Embedder      embed.Client
	Engine        *recommend.Engine
	Dimensions    int
	ProfileCache  *lru.Cache[string, []float32]
	Logger        *slog.Logger
}

// NewRecommendationService creates a RecommendationService.
func NewRecommendationService(p RecommendationServiceParams) *RecommendationService {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pools := make(map[models.EntityKind]CandidateLister, 2)
	if p.Courses != nil {
		pools[models.KindCourses] = p.Courses
	}

	if p.Opportunities != nil {
		pools[models.KindOpportunities] = p.Opportunities
	}

	return &RecommendationService{
		students:     p.Students,
		pools:        pools,
		embedder:     p.Embedder,
		engine:       p.Engine,
		dimensions:   p.Dimensions,
		profileCache: p.ProfileCache,
		logger:       logger,
	}
}

// RecommendForStudent returns up to limit ranked recommendations of the given
// kind for the student. A student without a stored embedding is embedded on
// demand from their profile text; a profile with no extractable signal yields
// an empty list, not an error. Only a missing student propagates an error.
func (s *RecommendationService) RecommendForStudent(
	ctx context.Context, studentID uuid.UUID, kind models.EntityKind, skillGaps []string, limit int,
) ([]recommend.Recommendation, error) {
	lister, ok := s.pools[kind]
	if !ok {
		return nil, fmt.Errorf("no recommendation pool for entity kind %q", kind)
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}

	profile := student.Embedding
	if len(profile) != s.dimensions {
		profile, err = s.embedProfile(ctx, student)
		if err != nil {
			s.logger.Error("profile embedding failed, returning no recommendations",
				"student_id", studentID, "error", err)

			return []recommend.Recommendation{}, nil
		}

		if profile == nil {
			// No embeddable profile data.
			return []recommend.Recommendation{}, nil
		}
	}

	pool, err := lister.ListEmbedded(ctx)
	if err != nil {
		s.logger.Error("candidate pool unavailable, returning no recommendations",
			"student_id", studentID, "kind", kind, "error", err)

		return []recommend.Recommendation{}, nil
	}

	return s.engine.Rank(profile, skillGaps, pool, limit), nil
}

// embedProfile builds the student's profile text and obtains a normalized
// embedding for it, persisting the vector for subsequent requests. Returns
// (nil, nil) when the profile has no embeddable data.
func (s *RecommendationService) embedProfile(ctx context.Context, student *models.Student) ([]float32, error) {
	text := embedtext.BuildStudentText(student)
	if strings.TrimSpace(text) == "" {
		s.logger.Info("student profile has no embeddable data", "student_id", student.ID)

		return nil, nil
	}

	vec, err := s.textEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}

	// Best effort: the recommendation response does not depend on the write.
	if err := s.students.UpdateEmbedding(ctx, student.ID, vec); err != nil {
		s.logger.Warn("persist profile embedding failed", "student_id", student.ID, "error", err)
	}

	return vec, nil
}

// textEmbedding returns the normalized embedding for text, caching by text
// hash and deduplicating concurrent requests for the same text.
func (s *RecommendationService) textEmbedding(ctx context.Context, text string) ([]float32, error) {
	if s.profileCache == nil {
		return s.createEmbedding(ctx, text)
	}

	key := hashText(text)
	if vec, ok := s.profileCache.Get(key); ok {
		return vec, nil
	}

	result, err, _ := s.embedGroup.Do(key, func() (any, error) {
		vec, err := s.createEmbedding(ctx, text)
		if err != nil {
			return nil, err
		}

		s.profileCache.Add(key, vec)

		return vec, nil
	})
	if err != nil {
		return nil, err
	}

	vec, ok := result.([]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected cached embedding type %T", result)
	}

	return vec, nil
}

func (s *RecommendationService) createEmbedding(ctx context.Context, text string) ([]float32, error) {
	vec, err := s.embedder.CreateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}

	return embed.NormalizeDimension(vec, s.dimensions), nil
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))

	return hex.EncodeToString(sum[:])
}
