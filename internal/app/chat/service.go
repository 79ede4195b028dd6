/*
Package chat runs one grounded chat turn.

Service.Handle is the request pipeline: session check, message decoding, best-effort
search retrieval, prompt assembly and a single completion call. It translates every
failure into an *errs.CustomError for the HTTP layer.
*/
package chat

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"groundchat/internal/app/completion"
	"groundchat/internal/app/prompt"
	"groundchat/internal/app/search"
	"groundchat/internal/app/user"
	"groundchat/internal/pkg/auth/jwt"
	"groundchat/internal/pkg/errs"
	"groundchat/internal/pkg/metrics"
	"groundchat/internal/pkg/randx"
	"groundchat/internal/pkg/req"
)

type Authenticator interface {
	RequireAuthenticated(ctx context.Context, token string) (user.User, error)
}

type Retriever interface {
	Retrieve(ctx context.Context, query string) []search.Result
}

type Completer interface {
	Complete(ctx context.Context, messages []prompt.Message) (string, error)
}

// Request is the JSON body of a chat turn.
type Request struct {
	Message string `json:"message"`
}

// Reply is the JSON body of a successful chat turn.
type Reply struct {
	Response string `json:"response"`
}

type Service struct {
	auth      Authenticator
	retriever Retriever
	assembler prompt.Assembler
	completer Completer
}

func NewService(auth Authenticator, retriever Retriever, assembler prompt.Assembler, completer Completer) *Service {
	return &Service{
		auth:      auth,
		retriever: retriever,
		assembler: assembler,
		completer: completer,
	}
}

// Handle runs the pipeline for r. The steps are strictly sequential and nothing after a
// failed step runs.
func (s *Service) Handle(r *http.Request) (Reply, *errs.CustomError) {
	ctx := r.Context()

	u, err := s.auth.RequireAuthenticated(ctx, jwt.TokenFromRequest(r))
	if err != nil {
		metrics.ChatRequests.WithLabelValues("unauthorized").Inc()
		return Reply{}, errs.NewError(errs.ErrUnauthorized)
	}

	logger := zerolog.Ctx(ctx).With().
		Str("turn_id", randx.RequestID()).
		Str("user_id", u.ID).
		Logger()

	var body Request
	if decodeErr := req.DecodeJSON(r.Body, &body); decodeErr != nil || body.Message == "" {
		metrics.ChatRequests.WithLabelValues("invalid").Inc()
		return Reply{}, errs.NewError(errs.ErrMessageRequired)
	}

	start := time.Now()

	results := s.retriever.Retrieve(ctx, body.Message)
	_, messages := s.assembler.Assemble(body.Message, results)

	answer, err := s.completer.Complete(ctx, messages)
	if err != nil {
		metrics.ChatRequests.WithLabelValues("failed").Inc()
		logger.Error().Err(err).Int("context_results", len(results)).Msg("chat turn failed")
		return Reply{}, errs.NewError(errs.ErrCompletionFailed, providerMessage(err))
	}

	metrics.ChatRequests.WithLabelValues("ok").Inc()
	logger.Info().
		Int("context_results", len(results)).
		Dur("elapsed", time.Since(start)).
		Msg("chat turn answered")

	return Reply{Response: answer}, nil
}

func providerMessage(err error) string {
	var perr *completion.ProviderError
	if errors.As(err, &perr) {
		return perr.Message
	}
	return err.Error()
}
