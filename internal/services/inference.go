package services

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"brainbin/internal/config"
	"brainbin/internal/embedding"
	"brainbin/internal/logger"
	"brainbin/pkg/apperrors"
)

// Inference wraps the embedding model with a concurrency gate and a
// per-request deadline. Requests that cannot get a slot before the
// deadline fail rather than queue without bound.
type Inference struct {
	model   *embedding.Model
	slots   *semaphore.Weighted
	timeout time.Duration
}

func NewInference(model *embedding.Model, cfg *config.Config) *Inference {
	return &Inference{
		model:   model,
		slots:   semaphore.NewWeighted(int64(cfg.Model.MaxConcurrent)),
		timeout: time.Duration(cfg.Model.TimeoutSeconds) * time.Second,
	}
}

func (inf *Inference) Ready() bool {
	return inf.model.Ready()
}

func (inf *Inference) Model() *embedding.Model {
	return inf.model
}

// Embed encodes one text under the concurrency gate.
func (inf *Inference) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := inf.run(ctx, func(ctx context.Context) ([][]float32, error) {
		vec, err := inf.model.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		return [][]float32{vec}, nil
	})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch encodes a batch under one slot of the concurrency gate.
func (inf *Inference) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return inf.run(ctx, func(ctx context.Context) ([][]float32, error) {
		return inf.model.EmbedBatch(ctx, texts)
	})
}

func (inf *Inference) run(ctx context.Context, fn func(context.Context) ([][]float32, error)) ([][]float32, error) {
	if !inf.model.Ready() {
		return nil, apperrors.ErrModelUnavailable(nil)
	}

	ctx, cancel := context.WithTimeout(ctx, inf.timeout)
	defer cancel()

	start := time.Now()
	if err := inf.slots.Acquire(ctx, 1); err != nil {
		logger.CtxWarn(ctx, "Inference slot acquisition timed out", "waited", time.Since(start).String())
		return nil, apperrors.ErrModelUnavailable(err)
	}
	defer inf.slots.Release(1)

	out, err := fn(ctx)
	logger.InferenceLog("embed", len(out), time.Since(start), err)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.ErrInferenceFailed(ctx.Err())
		}
		return nil, apperrors.ErrInferenceFailed(err)
	}
	return out, nil
}
