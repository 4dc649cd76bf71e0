package controller

import (
	"context"

	apperrors "github.com/homemeal/homemeal-backend/internal/errors"
	"github.com/homemeal/homemeal-backend/internal/metrics"
	"github.com/homemeal/homemeal-backend/internal/middleware"
	"github.com/homemeal/homemeal-backend/internal/session"
)

// guard wraps every controller call with operation logging and, where required,
// session resolution. Controllers never touch storage directly.
type guard struct {
	auth    *middleware.AuthMiddleware
	metrics *metrics.Metrics
}

func (g guard) authenticated(
	ctx context.Context,
	name, token string,
	fields map[string]interface{},
	fn func(sess *session.Session) apperrors.Result,
) apperrors.Result {
	op := middleware.StartOperation(g.metrics, name, fields)

	sess, err := g.auth.Authenticate(ctx, token)
	if err != nil {
		return op.Finish(apperrors.FromError(err))
	}
	return op.Finish(fn(sess))
}

func (g guard) public(name string, fields map[string]interface{}, fn func() apperrors.Result) apperrors.Result {
	op := middleware.StartOperation(g.metrics, name, fields)
	return op.Finish(fn())
}
