package search

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"groundchat/internal/pkg/logx"
)

const (
	// MaxResults is the most results a single retrieval returns.
	MaxResults = 3

	DefaultTimeout = 8 * time.Second
)

// Retriever performs best-effort retrieval. It never returns an error: every
// provider failure degrades to an empty result set.
type Retriever struct {
	provider  Provider
	timeout   time.Duration
	limiter   *rate.Limiter
	onFailure func(error)
	logger    zerolog.Logger
}

type RetrieverOption func(*Retriever)

// WithTimeout bounds each provider call. Non-positive values keep the default.
func WithTimeout(d time.Duration) RetrieverOption {
	return func(r *Retriever) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithRateLimit paces outbound provider calls to perSecond, letting up to burst calls
// through at once. Waiting counts against the retrieval timeout, so a request that
// cannot get a token in time goes without context. Non-positive perSecond disables pacing.
func WithRateLimit(perSecond float64, burst int) RetrieverOption {
	return func(r *Retriever) {
		if burst < 1 {
			burst = 1
		}
		if perSecond > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		} else {
			r.limiter = nil
		}
	}
}

// WithFailureObserver registers fn to be called once per failed retrieval.
func WithFailureObserver(fn func(error)) RetrieverOption {
	return func(r *Retriever) { r.onFailure = fn }
}

func NewRetriever(provider Provider, opts ...RetrieverOption) *Retriever {
	r := &Retriever{
		provider: provider,
		timeout:  DefaultTimeout,
		logger:   logx.Component("retriever"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns up to MaxResults results for query, in provider order.
func (r *Retriever) Retrieve(ctx context.Context, query string) []Result {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			r.fail(err)
			return []Result{}
		}
	}

	start := time.Now()
	results, err := r.provider.Search(ctx, query, MaxResults)
	if err != nil {
		r.fail(err)
		return []Result{}
	}

	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	if results == nil {
		results = []Result{}
	}

	r.logger.Debug().
		Int("results", len(results)).
		Dur("elapsed", time.Since(start)).
		Msg("search context retrieved")

	return results
}

func (r *Retriever) fail(err error) {
	r.logger.Warn().Err(err).Msg("search failed; continuing without context")
	if r.onFailure != nil {
		r.onFailure(err)
	}
}
