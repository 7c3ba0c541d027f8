// Package pipeline runs batched embedding passes over entities that are
// missing vectors, and reports coverage before and after each run.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rareminds/skillhub/internal/models"
)

// Candidate is one entity due for embedding: its identifier and the normalized
// text built from its fields. Empty text means the entity has no embeddable
// data and is recorded as skipped.
type Candidate struct {
	ID   uuid.UUID
	Text string
}

// Store is the entity-store side of the pipeline: one implementation per
// entity kind (courses, students, opportunities).
type Store interface {
	// Kind identifies the entity table this store serves.
	Kind() models.EntityKind

	// ListMissingEmbedding returns active, non-deleted entities whose
	// embedding column is null, in stable worklist order.
	ListMissingEmbedding(ctx context.Context) ([]Candidate, error)

	// UpdateEmbedding persists the vector for one entity by identifier.
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error

	// Coverage counts eligible entities and how many already have a vector.
	Coverage(ctx context.Context) (models.Coverage, error)
}

// EntityError records one entity's failure during a run.
type EntityError struct {
	EntityID uuid.UUID `json:"entityId"` //nolint:tagliatelle // API contract
	Reason   string    `json:"reason"`
}

// RunSummary is the sole reported artifact of an embedding run.
type RunSummary struct {
	Kind           models.EntityKind `json:"kind"`
	SuccessCount   int               `json:"successCount"`   //nolint:tagliatelle // API contract
	FailedCount    int               `json:"failedCount"`    //nolint:tagliatelle // API contract
	SkippedCount   int               `json:"skippedCount"`   //nolint:tagliatelle // API contract
	Errors         []EntityError     `json:"errors,omitempty"`
	CoverageBefore models.Coverage   `json:"coverageBefore"` //nolint:tagliatelle // API contract
	CoverageAfter  models.Coverage   `json:"coverageAfter"`  //nolint:tagliatelle // API contract
	Duration       time.Duration     `json:"-"`
}

// Clean reports whether the run finished without per-entity failures.
// Automation maps this to the process exit status.
func (s *RunSummary) Clean() bool {
	return s.FailedCount == 0
}
