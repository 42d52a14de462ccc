package middleware

import (
	"context"

	"github.com/sudo-god/AI-Receptionist/pkg/inference/engine"
)

// HandlerFunc is the signature wrapped by middlewares.
type HandlerFunc func(ctx context.Context, req engine.Request) (*engine.Completion, error)

// Middleware wraps a HandlerFunc.
type Middleware func(HandlerFunc) HandlerFunc

// EngineWithMiddleware runs every completion through a middleware chain.
type EngineWithMiddleware struct {
	handler HandlerFunc
}

var _ engine.Engine = (*EngineWithMiddleware)(nil)

// NewEngineWithMiddleware wraps e. The first middleware is the outermost.
func NewEngineWithMiddleware(e engine.Engine, middlewares ...Middleware) *EngineWithMiddleware {
	h := HandlerFunc(e.Complete)
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return &EngineWithMiddleware{handler: h}
}

func (e *EngineWithMiddleware) Complete(ctx context.Context, req engine.Request) (*engine.Completion, error) {
	return e.handler(ctx, req)
}
