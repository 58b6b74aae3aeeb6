package semanticx

import (
	"context"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sony/gobreaker/v2"

	"github.com/trigoo007/cagcore/pkg/logx"
)

// OpenAIProvider wraps the openai-go embeddings endpoint for a real dense
// embedding backend. Per the SemanticService failure contract (§4.1), a
// failed call returns a nil Vector rather than propagating the error —
// callers treat nil as "similarity 0" and fall back to occurrence×
// confidence ranking.
type OpenAIProvider struct {
	client  openai.Client
	model   string
	breaker *gobreaker.CircuitBreaker[[]Vector]
}

type OpenAIProviderConfig struct {
	APIKey      string
	Model       string
	MaxRequests uint32
	Interval    time.Duration
}

func NewOpenAIProvider(cfg OpenAIProviderConfig) *OpenAIProvider {
	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	maxRequests := cfg.MaxRequests
	if maxRequests == 0 {
		maxRequests = 5
	}

	client := openai.NewClient(option.WithAPIKey(cfg.APIKey))

	breaker := gobreaker.NewCircuitBreaker[[]Vector](gobreaker.Settings{
		Name:        "semanticx-openai",
		MaxRequests: maxRequests,
		Interval:    cfg.Interval,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logx.Warnf("semanticx: circuit %s changed from %s to %s", name, from, to)
		},
	})

	return &OpenAIProvider{client: client, model: model, breaker: breaker}
}

func (p *OpenAIProvider) Embed(ctx context.Context, text string) (Vector, error) {
	if text == "" {
		return nil, nil
	}
	vecs, err := p.batchEmbedThroughBreaker(ctx, []string{text})
	if err != nil {
		logx.Errorf("semanticx: openai embed failed, returning nil vector: %v", err)
		return nil, nil
	}
	if len(vecs) == 0 {
		return nil, nil
	}
	return vecs[0], nil
}

func (p *OpenAIProvider) BatchEmbed(ctx context.Context, texts []string) ([]Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := p.batchEmbedThroughBreaker(ctx, texts)
	if err != nil {
		logx.Errorf("semanticx: openai batch embed failed, returning nil vectors: %v", err)
		return make([]Vector, len(texts)), nil
	}
	return vecs, nil
}

func (p *OpenAIProvider) batchEmbedThroughBreaker(ctx context.Context, texts []string) ([]Vector, error) {
	return p.breaker.Execute(func() ([]Vector, error) {
		params := openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: texts,
			},
			Model: openai.EmbeddingModel(p.model),
		}

		resp, err := p.client.Embeddings.New(ctx, params)
		if err != nil {
			return nil, errorRegistry.NewWithCause(ErrProviderUnavailable, err)
		}
		if len(resp.Data) == 0 {
			return nil, errorRegistry.New(ErrNoEmbeddingReturned)
		}

		out := make([]Vector, len(resp.Data))
		for i, d := range resp.Data {
			out[i] = toFloat32Vector(d.Embedding)
		}
		return out, nil
	})
}

func (p *OpenAIProvider) Similarity(v1, v2 Vector) float64 {
	return Cosine(v1, v2)
}

func toFloat32Vector(in []float64) Vector {
	out := make(Vector, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
