package handlers

import (
	"context"
	"net/http"

	"github.com/rareminds/skillhub/internal/api/response"
	"github.com/rareminds/skillhub/internal/models"
)

// CoverageReader reports embedding coverage for one entity kind.
type CoverageReader interface {
	Coverage(ctx context.Context) (models.Coverage, error)
}

// CoverageHandler handles HTTP requests for embedding coverage statistics.
type CoverageHandler struct {
	readers map[models.EntityKind]CoverageReader
}

// NewCoverageHandler creates a new coverage handler over the given readers.
func NewCoverageHandler(readers map[models.EntityKind]CoverageReader) *CoverageHandler {
	return &CoverageHandler{readers: readers}
}

// KindCoverage is one entity kind's coverage in the stats response.
type KindCoverage struct {
	Total       int     `json:"total"`
	Embedded    int     `json:"embedded"`
	NotEmbedded int     `json:"notEmbedded"`
	Percent     float64 `json:"percent"`
}

// Stats handles GET /v1/embeddings/coverage. An optional kind query parameter
// restricts the report to one entity kind.
func (h *CoverageHandler) Stats(w http.ResponseWriter, r *http.Request) {
	kinds := make([]models.EntityKind, 0, len(h.readers))

	if kindStr := r.URL.Query().Get("kind"); kindStr != "" {
		kind, err := models.ParseEntityKind(kindStr)
		if err != nil {
			response.RespondBadRequest(w, "kind must be one of: courses, students, opportunities")

			return
		}

		kinds = append(kinds, kind)
	} else {
		for kind := range h.readers {
			kinds = append(kinds, kind)
		}
	}

	stats := make(map[string]KindCoverage, len(kinds))

	for _, kind := range kinds {
		reader, ok := h.readers[kind]
		if !ok {
			response.RespondBadRequest(w, "kind must be one of: courses, students, opportunities")

			return
		}

		cov, err := reader.Coverage(r.Context())
		if err != nil {
			response.RespondInternalServerError(w, "Coverage lookup failed")

			return
		}

		stats[string(kind)] = KindCoverage{
			Total:       cov.Total,
			Embedded:    cov.Embedded,
			NotEmbedded: cov.NotEmbedded,
			Percent:     cov.Percent(),
		}
	}

	response.RespondJSON(w, http.StatusOK, stats)
}
