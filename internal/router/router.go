// Package router dispatches typed messages from the page and panel to
// the pipeline components, and guarantees every request resolves with a
// success or error envelope.
package router

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/resilience"
)

// Handler processes one message type. Returning a model.Envelope passes
// it through unchanged; any other value is wrapped in a success
// envelope.
type Handler func(ctx context.Context, msg model.Message) (any, error)

// Router maps message types to handlers.
type Router struct {
	handlers map[model.MsgType]Handler
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{handlers: make(map[model.MsgType]Handler)}
}

// Register installs the handler for a message type.
func (r *Router) Register(t model.MsgType, h Handler) {
	r.handlers[t] = h
}

// Dispatch routes the message and always resolves: handler errors and
// panics are converted into error envelopes, never left to hang the
// response channel.
func (r *Router) Dispatch(ctx context.Context, msg model.Message) (env model.Envelope) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("router: handler panicked",
				zap.String("type", string(msg.Type)),
				zap.Any("panic", rec),
			)
			env = model.Fail("internal", fmt.Sprintf("internal error handling %s", msg.Type))
		}
	}()

	h, ok := r.handlers[msg.Type]
	if !ok {
		return model.Fail("unknown_message", fmt.Sprintf("unknown message type %q", msg.Type))
	}

	out, err := h(ctx, msg)
	if err != nil {
		zap.L().Debug("router: handler returned error",
			zap.String("type", string(msg.Type)),
			zap.Error(err),
		)
		return model.Fail(codeFor(err), err.Error())
	}
	if e, ok := out.(model.Envelope); ok {
		return e
	}
	return model.OK(out)
}

// codeFor maps the error taxonomy to machine-readable envelope codes.
func codeFor(err error) string {
	var verr *resilience.ValidationError
	switch {
	case errors.Is(err, resilience.ErrUnsupportedPage):
		return "unsupported_page"
	case errors.Is(err, resilience.ErrNoIdentity):
		return "no_identity"
	case errors.Is(err, resilience.ErrGestureLost):
		return "gesture_lost"
	case errors.Is(err, resilience.ErrNotEligible):
		return "not_eligible"
	case errors.Is(err, resilience.ErrPanelUnavailable):
		return "api_unavailable"
	case errors.Is(err, resilience.ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, resilience.ErrAuthExpired):
		return "auth_expired"
	case errors.As(err, &verr):
		return "validation_failed"
	default:
		return string(resilience.ClassifyError(err))
	}
}
