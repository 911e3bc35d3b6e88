package store

import (
	"crypto/sha256"
	"math"
	"strings"
)

// localEmbedder computes a deterministic, offline text embedding by hashing
// overlapping word shingles into fixed buckets of a fixed-width vector and
// L2-normalizing the result. It exists so the module runs without network
// access; SPEC_FULL §6.2.1 treats the real embedding backend as pluggable —
// any type satisfying Embedder (e.g. an Ollama or OpenAI-backed one, as the
// teacher's apps/cli/internal/memory.NewEmbedder factory demonstrates) can
// replace it without touching callers.
type localEmbedder struct {
	dims int
}

// NewLocalEmbedder returns the default offline Embedder with the given
// fixed vector width (spec §6.2: "embedding dim = 384 by default").
func NewLocalEmbedder(dims int) Embedder {
	if dims <= 0 {
		dims = 384
	}
	return &localEmbedder{dims: dims}
}

func (e *localEmbedder) Model() string   { return "local-hash" }
func (e *localEmbedder) Dimensions() int { return e.dims }

func (e *localEmbedder) Embed(text string) ([]float32, error) {
	vec := make([]float32, e.dims)
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return vec, nil
	}

	addShingle := func(shingle string) {
		sum := sha256.Sum256([]byte(shingle))
		// Use the first 2 bytes as a bucket index and the third byte as a
		// signed weight, plus bytes 3-4 as a second bucket at half weight,
		// spreading each shingle's contribution across the vector
		// deterministically.
		idx := int(sum[0])<<8 | int(sum[1])
		idx %= e.dims
		weight := float32(int8(sum[2])) / 127.0
		vec[idx] += weight
		idx2 := (int(sum[3])<<8 | int(sum[4])) % e.dims
		vec[idx2] += weight * 0.5
	}

	for _, w := range words {
		addShingle(w)
	}
	for i := 0; i+1 < len(words); i++ {
		addShingle(words[i] + "_" + words[i+1])
	}

	normalize(vec)
	return vec, nil
}

func normalize(v []float32) {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return
	}
	norm := float32(math.Sqrt(sumSq))
	for i := range v {
		v[i] /= norm
	}
}

// CosineDistance returns 1 - cosine_similarity(a, b), in [0, 2]. Spec §4.6.2
// drops semantic results whose cosine distance exceeds 0.8.
func CosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 2
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 2
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return 1 - cos
}
