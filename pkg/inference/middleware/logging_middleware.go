package middleware

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/engine"
)

// NewLoggingMiddleware logs each completion request and its outcome.
func NewLoggingMiddleware(logger zerolog.Logger, name string) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req engine.Request) (*engine.Completion, error) {
			lg := logger
			if lg.GetLevel() == zerolog.NoLevel {
				lg = log.Logger
			}
			lg = lg.With().
				Str("engine", name).
				Int("history", len(req.History)).
				Int("tools", len(req.Tools)).
				Str("tool_choice", string(req.ToolChoice)).
				Logger()

			start := time.Now()
			lg.Debug().Msg("completion: starting")
			c, err := next(ctx, req)
			if err != nil {
				lg.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("completion: failed")
				return c, err
			}

			names := make([]string, 0, len(c.ToolCalls))
			for _, tc := range c.ToolCalls {
				names = append(names, tc.Name)
			}
			lg.Debug().
				Dur("elapsed", time.Since(start)).
				Int("text_len", len(c.Text)).
				Strs("tool_calls", names).
				Msg("completion: finished")
			return c, nil
		}
	}
}

// NewHistoryWindowMiddleware keeps only the last n history messages sent to the model.
// The stored history is not affected. n <= 0 disables the window.
func NewHistoryWindowMiddleware(n int) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req engine.Request) (*engine.Completion, error) {
			if n > 0 && len(req.History) > n {
				req.History = req.History[len(req.History)-n:]
			}
			return next(ctx, req)
		}
	}
}
