package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/rareminds/skillhub/internal/apperrors"
	"github.com/rareminds/skillhub/internal/embedtext"
	"github.com/rareminds/skillhub/internal/models"
	"github.com/rareminds/skillhub/internal/pipeline"
	"github.com/rareminds/skillhub/internal/recommend"
)

// CoursesRepository handles data access for the courses table.
type CoursesRepository struct {
	db *pgxpool.Pool
}

// NewCoursesRepository creates a new courses repository.
func NewCoursesRepository(db *pgxpool.Pool) *CoursesRepository {
	return &CoursesRepository{db: db}
}

// Kind identifies this repository's entity table.
func (r *CoursesRepository) Kind() models.EntityKind {
	return models.KindCourses
}

// ListMissingEmbedding returns active, non-deleted courses without an
// embedding, with their normalized text already built.
func (r *CoursesRepository) ListMissingEmbedding(ctx context.Context) ([]pipeline.Candidate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, provider, category, level, skills_taught, description
		FROM courses
		WHERE status = 'active' AND deleted_at IS NULL AND embedding IS NULL
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list courses missing embedding: %w", err)
	}
	defer rows.Close()

	var candidates []pipeline.Candidate

	for rows.Next() {
		var c models.Course

		if err := rows.Scan(&c.ID, &c.Title, &c.Provider, &c.Category, &c.Level, &c.SkillsTaught, &c.Description); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}

		candidates = append(candidates, pipeline.Candidate{
			ID:   c.ID,
			Text: embedtext.BuildCourseText(&c),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating courses: %w", err)
	}

	return candidates, nil
}

// UpdateEmbedding persists the vector for one course.
func (r *CoursesRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE courses SET embedding = $2, updated_at = now() WHERE id = $1`,
		id, pgvector.NewVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("update course embedding: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("course", "")
	}

	return nil
}

// Coverage counts eligible courses and how many already have an embedding.
func (r *CoursesRepository) Coverage(ctx context.Context) (models.Coverage, error) {
	var cov models.Coverage

	err := r.db.QueryRow(ctx, `
		SELECT count(*), count(embedding)
		FROM courses
		WHERE status = 'active' AND deleted_at IS NULL`,
	).Scan(&cov.Total, &cov.Embedded)
	if err != nil {
		return models.Coverage{}, fmt.Errorf("course coverage: %w", err)
	}

	cov.NotEmbedded = cov.Total - cov.Embedded

	return cov, nil
}

// ListEmbedded returns the recommendation pool: active courses with a stored
// embedding.
func (r *CoursesRepository) ListEmbedded(ctx context.Context) ([]recommend.Candidate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, skills_taught, embedding
		FROM courses
		WHERE status = 'active' AND deleted_at IS NULL AND embedding IS NOT NULL
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list embedded courses: %w", err)
	}
	defer rows.Close()

	var pool []recommend.Candidate

	for rows.Next() {
		var (
			c   recommend.Candidate
			vec pgvector.Vector
		)

		if err := rows.Scan(&c.ID, &c.Title, &c.Skills, &vec); err != nil {
			return nil, fmt.Errorf("scan embedded course: %w", err)
		}

		c.Embedding = vec.Slice()
		pool = append(pool, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embedded courses: %w", err)
	}

	return pool, nil
}
