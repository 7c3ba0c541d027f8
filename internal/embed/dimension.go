package embed

// NormalizeDimension forces vec to exactly target entries. Shorter vectors are
// zero-padded, longer ones truncated. Providers differ in native
// dimensionality (a lightweight local model emits 384, OpenAI 1536) while the
// vector column enforces one fixed size per table, so every vector passes
// through here before being persisted or compared.
func NormalizeDimension(vec []float32, target int) []float32 {
	if target <= 0 || len(vec) == target {
		return vec
	}

	if len(vec) > target {
		return vec[:target]
	}

	out := make([]float32, target)
	copy(out, vec)

	return out
}
