// Package recommend ranks candidate entities against a profile embedding,
// blending cosine similarity with rule-based skill-gap matches into a bounded
// relevance score with human-readable reasons.
package recommend

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Each matched skill gap adds this much on top of the similarity score.
const skillGapBonus = 10

// defaultReason is attached when a candidate earned its place purely through
// embedding similarity.
const defaultReason = "Aligned with your profile"

// Candidate is one entity from the recommendation pool.
type Candidate struct {
	ID        uuid.UUID
	Title     string
	Skills    []string
	Embedding []float32
}

// Recommendation is one ranked result. RelevanceScore is always in [0, 100]
// and MatchReasons is never empty.
type Recommendation struct {
	EntityID       uuid.UUID `json:"entityId"`       //nolint:tagliatelle // API contract
	Title          string    `json:"title"`
	Skills         []string  `json:"skills"`
	RelevanceScore int       `json:"relevanceScore"` //nolint:tagliatelle // API contract
	MatchReasons   []string  `json:"matchReasons"`   //nolint:tagliatelle // API contract
}

// Engine ranks candidates. It is stateless apart from configuration and safe
// for concurrent use.
type Engine struct {
	dimensions int
	logger     *slog.Logger
}

// NewEngine creates an engine expecting embeddings of the given dimension.
// logger may be nil.
func NewEngine(dimensions int, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{dimensions: dimensions, logger: logger}
}

// Rank scores every candidate with a stored embedding against the profile
// vector, adds skill-gap bonuses, and returns at most limit results ordered by
// score descending (ties broken by entity ID for determinism). Candidates with
// malformed embeddings are skipped with a warning, never failing the ranking.
func (e *Engine) Rank(profile []float32, skillGaps []string, pool []Candidate, limit int) []Recommendation {
	if len(profile) == 0 {
		return []Recommendation{}
	}

	results := make([]Recommendation, 0, len(pool))

	for _, candidate := range pool {
		if !e.validEmbedding(candidate) {
			continue
		}

		similarity := CosineSimilarity(profile, candidate.Embedding)
		score := similarity * 100

		matched := matchSkillGaps(skillGaps, candidate.Skills)
		score += float64(skillGapBonus * len(matched))

		reasons := make([]string, 0, len(matched)+1)
		for _, gap := range matched {
			reasons = append(reasons, "Matches your skill gap: "+gap)
		}

		if len(reasons) == 0 {
			reasons = append(reasons, defaultReason)
		}

		results = append(results, Recommendation{
			EntityID:       candidate.ID,
			Title:          candidate.Title,
			Skills:         candidate.Skills,
			RelevanceScore: clampScore(score),
			MatchReasons:   reasons,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].RelevanceScore != results[j].RelevanceScore {
			return results[i].RelevanceScore > results[j].RelevanceScore
		}

		return results[i].EntityID.String() < results[j].EntityID.String()
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results
}

// validEmbedding checks the stored vector is usable: right length, finite values.
func (e *Engine) validEmbedding(c Candidate) bool {
	if len(c.Embedding) != e.dimensions {
		e.logger.Warn("candidate skipped, embedding has wrong dimension",
			"entity_id", c.ID,
			"got", len(c.Embedding),
			"want", e.dimensions,
		)

		return false
	}

	for _, v := range c.Embedding {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			e.logger.Warn("candidate skipped, embedding contains non-finite values", "entity_id", c.ID)

			return false
		}
	}

	return true
}

// matchSkillGaps returns the gap terms with a case-insensitive partial match
// against any of the candidate's skill tags, preserving the caller's casing
// for the reason strings.
func matchSkillGaps(gaps, skills []string) []string {
	matched := make([]string, 0, len(gaps))

	for _, gap := range gaps {
		gap = strings.TrimSpace(gap)
		if gap == "" {
			continue
		}

		gapLower := strings.ToLower(gap)

		for _, skill := range skills {
			skillLower := strings.ToLower(strings.TrimSpace(skill))
			if skillLower == "" {
				continue
			}

			if strings.Contains(skillLower, gapLower) || strings.Contains(gapLower, skillLower) {
				matched = append(matched, gap)

				break
			}
		}
	}

	return matched
}

// clampScore rounds and bounds a raw score into [0, 100].
func clampScore(score float64) int {
	rounded := int(math.Round(score))

	if rounded < 0 {
		return 0
	}

	if rounded > 100 {
		return 100
	}

	return rounded
}

// CosineSimilarity returns the cosine of the angle between two equal-length
// vectors, 0 when either vector is zero.
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64

	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
