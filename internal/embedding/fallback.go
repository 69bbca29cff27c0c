package embedding

import (
	"math"
	"strings"
)

// phaseRatio offsets the cosine term from the sine term so the two periodic
// components stay out of phase.
const phaseRatio = 1.7

// domainTerms nudge the accumulator for texts about storage and retrieval,
// giving related texts slightly correlated vectors. An enhancement, not a
// correctness requirement.
var domainTerms = []string{"database", "search", "vector", "index", "query", "cache"}

// Fallback is a deterministic, stateless local embedder. It never makes an
// external call: the same text always yields the same unit-length vector, so
// cosine similarity stays well-defined when the remote provider is absent or
// failing.
type Fallback struct {
	dimensions int
}

// NewFallback creates a fallback embedder producing vectors of the given dimension.
func NewFallback(dimensions int) *Fallback {
	return &Fallback{dimensions: dimensions}
}

// Embed computes the deterministic vector for text.
func (f *Fallback) Embed(text string) []float32 {
	normalized := strings.ToLower(strings.TrimSpace(text))

	// Two positional accumulators over the character codes; each dimension
	// samples them at a different frequency.
	var s1, s2 float64
	for i, r := range normalized {
		s1 += float64(r) * float64(i+1)
		s2 += float64(r) / float64(i+1)
	}

	var bias float64
	for _, term := range domainTerms {
		if strings.Contains(normalized, term) {
			bias += 0.37
		}
	}

	vec := make([]float32, f.dimensions)
	var norm float64
	for j := range vec {
		a := s1*float64(j+1)*1e-4 + s2*1e-2 + bias
		v := (math.Sin(a) + math.Cos(a*phaseRatio)) / 2
		vec[j] = float32(v)
		norm += v * v
	}

	// L2-normalize to unit length.
	if norm > 0 {
		inv := 1 / math.Sqrt(norm)
		for j := range vec {
			vec[j] = float32(float64(vec[j]) * inv)
		}
	}

	return vec
}
