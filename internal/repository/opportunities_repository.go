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

// OpportunitiesRepository handles data access for the opportunities table.
type OpportunitiesRepository struct {
	db *pgxpool.Pool
}

// NewOpportunitiesRepository creates a new opportunities repository.
func NewOpportunitiesRepository(db *pgxpool.Pool) *OpportunitiesRepository {
	return &OpportunitiesRepository{db: db}
}

// Kind identifies this repository's entity table.
func (r *OpportunitiesRepository) Kind() models.EntityKind {
	return models.KindOpportunities
}

// ListMissingEmbedding returns active, non-deleted opportunities without an
// embedding, with their normalized text already built.
func (r *OpportunitiesRepository) ListMissingEmbedding(ctx context.Context) ([]pipeline.Candidate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, job_title, company_name, department, employment_type,
			experience_level, location, skills_required, requirements,
			responsibilities, description
		FROM opportunities
		WHERE status = 'active' AND deleted_at IS NULL AND embedding IS NULL
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list opportunities missing embedding: %w", err)
	}
	defer rows.Close()

	var candidates []pipeline.Candidate

	for rows.Next() {
		var o models.Opportunity

		err := rows.Scan(&o.ID, &o.JobTitle, &o.CompanyName, &o.Department, &o.EmploymentType,
			&o.ExperienceLevel, &o.Location, &o.SkillsRequired, &o.Requirements,
			&o.Responsibilities, &o.Description)
		if err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}

		candidates = append(candidates, pipeline.Candidate{
			ID:   o.ID,
			Text: embedtext.BuildOpportunityText(&o),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating opportunities: %w", err)
	}

	return candidates, nil
}

// UpdateEmbedding persists the vector for one opportunity.
func (r *OpportunitiesRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE opportunities SET embedding = $2, updated_at = now() WHERE id = $1`,
		id, pgvector.NewVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("update opportunity embedding: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("opportunity", "")
	}

	return nil
}

// Coverage counts eligible opportunities and how many already have an embedding.
func (r *OpportunitiesRepository) Coverage(ctx context.Context) (models.Coverage, error) {
	var cov models.Coverage

	err := r.db.QueryRow(ctx, `
		SELECT count(*), count(embedding)
		FROM opportunities
		WHERE status = 'active' AND deleted_at IS NULL`,
	).Scan(&cov.Total, &cov.Embedded)
	if err != nil {
		return models.Coverage{}, fmt.Errorf("opportunity coverage: %w", err)
	}

	cov.NotEmbedded = cov.Total - cov.Embedded

	return cov, nil
}

// ListEmbedded returns the recommendation pool: active opportunities with a
// stored embedding, with required skills as the candidate's tags.
func (r *OpportunitiesRepository) ListEmbedded(ctx context.Context) ([]recommend.Candidate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, job_title, skills_required, embedding
		FROM opportunities
		WHERE status = 'active' AND deleted_at IS NULL AND embedding IS NOT NULL
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list embedded opportunities: %w", err)
	}
	defer rows.Close()

	var pool []recommend.Candidate

	for rows.Next() {
		var (
			c   recommend.Candidate
			vec pgvector.Vector
		)

		if err := rows.Scan(&c.ID, &c.Title, &c.Skills, &vec); err != nil {
			return nil, fmt.Errorf("scan embedded opportunity: %w", err)
		}

		c.Embedding = vec.Slice()
		pool = append(pool, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embedded opportunities: %w", err)
	}

	return pool, nil
}
