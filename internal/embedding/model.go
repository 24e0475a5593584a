// Package embedding provides the deterministic text encoder the service
// runs inference with. The model ships inside the binary: a weighted
// hashed bag-of-words projected into a fixed 384-dimensional space, with
// vocabulary weights loaded from an embedded artifact whose checksum is
// verified at startup.
package embedding

import (
	"context"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"brainbin/internal/logger"
)

//go:embed artifact.json
var artifactData []byte

//go:embed artifact.sha256
var artifactChecksum string

// State tracks model readiness. The transition is one-way: the model
// starts Initializing and either becomes Ready or the process exits.
type State int32

const (
	StateInitializing State = iota
	StateReady
)

func (s State) String() string {
	if s == StateReady {
		return "ready"
	}
	return "initializing"
}

type artifact struct {
	ModelID    string             `json:"model_id"`
	Version    string             `json:"version"`
	Dimension  int                `json:"dimension"`
	Seed       uint32             `json:"seed"`
	DefaultIDF float64            `json:"default_idf"`
	Vocabulary map[string]float64 `json:"vocabulary"`
}

// Model encodes text into normalized float32 vectors. Safe for
// concurrent use once Ready.
type Model struct {
	id         string
	version    string
	dimension  int
	seed       uint32
	defaultIDF float64
	vocabulary map[string]float64
	state      atomic.Int32
}

var tokenRe = regexp.MustCompile(`[a-zA-Z0-9]+`)

// Load verifies the embedded artifact checksum, parses the weights and
// moves the model to Ready. Any failure is fatal for the caller: the
// service must not accept inference traffic without a verified model.
func Load() (*Model, error) {
	sum := sha256.Sum256(artifactData)
	got := hex.EncodeToString(sum[:])
	want := strings.TrimSpace(artifactChecksum)
	if got != want {
		return nil, fmt.Errorf("model artifact checksum mismatch: got %s, want %s", got, want)
	}

	var a artifact
	if err := json.Unmarshal(artifactData, &a); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact: %w", err)
	}
	if a.Dimension <= 0 {
		return nil, fmt.Errorf("model artifact has invalid dimension %d", a.Dimension)
	}
	if len(a.Vocabulary) == 0 {
		return nil, fmt.Errorf("model artifact has empty vocabulary")
	}

	m := &Model{
		id:         a.ModelID,
		version:    a.Version,
		dimension:  a.Dimension,
		seed:       a.Seed,
		defaultIDF: a.DefaultIDF,
		vocabulary: a.Vocabulary,
	}
	m.state.Store(int32(StateReady))

	logger.GetLogger().Info("Embedding model loaded",
		"model_id", m.id,
		"version", m.version,
		"dimension", m.dimension,
		"vocabulary_size", len(m.vocabulary),
	)
	return m, nil
}

func (m *Model) ID() string      { return m.id }
func (m *Model) Version() string { return m.version }
func (m *Model) Dimension() int  { return m.dimension }

func (m *Model) State() State {
	return State(m.state.Load())
}

func (m *Model) Ready() bool {
	return m.State() == StateReady
}

// Embed encodes one text into a unit-length vector. The encoding is
// deterministic: equal input always yields equal output.
func (m *Model) Embed(ctx context.Context, text string) ([]float32, error) {
	if !m.Ready() {
		return nil, fmt.Errorf("model is not ready")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float64, m.dimension)
	tokens := tokenRe.FindAllString(strings.ToLower(text), -1)

	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}

	for tok, count := range counts {
		weight := m.defaultIDF
		if w, ok := m.vocabulary[tok]; ok {
			weight = w
		}
		tf := 1 + math.Log(float64(count))

		// Each token lights up three signed positions, which keeps
		// collisions from dominating any single dimension.
		h := m.tokenHash(tok)
		for k := 0; k < 3; k++ {
			idx := int((h >> (k * 8)) % uint64(m.dimension))
			sign := 1.0
			if (h>>(k*8+20))&1 == 1 {
				sign = -1.0
			}
			vec[idx] += sign * tf * weight
		}
	}

	return normalize(vec), nil
}

// EmbedBatch encodes texts concurrently, preserving order.
func (m *Model) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if !m.Ready() {
		return nil, fmt.Errorf("model is not ready")
	}

	out := make([][]float32, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, text := range texts {
		g.Go(func() error {
			vec, err := m.Embed(ctx, text)
			if err != nil {
				return err
			}
			out[i] = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Model) tokenHash(token string) uint64 {
	h := fnv.New64a()
	var seedBytes [4]byte
	seedBytes[0] = byte(m.seed)
	seedBytes[1] = byte(m.seed >> 8)
	seedBytes[2] = byte(m.seed >> 16)
	seedBytes[3] = byte(m.seed >> 24)
	h.Write(seedBytes[:])
	h.Write([]byte(token))
	return h.Sum64()
}

func normalize(vec []float64) []float32 {
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, len(vec))
	if norm == 0 {
		return out
	}
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}

// CosineSimilarity assumes both vectors are unit length, which holds for
// everything this model produces.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}
