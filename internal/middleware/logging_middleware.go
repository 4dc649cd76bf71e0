package middleware

import (
	"time"

	"github.com/google/uuid"
	apperrors "github.com/homemeal/homemeal-backend/internal/errors"
	"github.com/homemeal/homemeal-backend/internal/metrics"
	"github.com/homemeal/homemeal-backend/pkg/logger"
)

const outcomeOK = "ok"

// Operation tracks one call through the controller layer.
type Operation struct {
	Name    string
	ID      string
	started time.Time
	log     *logger.Logger
	metrics *metrics.Metrics
}

// StartOperation logs the incoming call under a fresh operation id.
func StartOperation(m *metrics.Metrics, name string, fields map[string]interface{}) *Operation {
	op := &Operation{
		Name:    name,
		ID:      uuid.NewString(),
		started: time.Now(),
		metrics: m,
	}
	op.log = logger.WithContext(map[string]interface{}{
		"operation":    name,
		"operation_id": op.ID,
	})
	op.log.Debug("Operation started", fields)
	return op
}

func (op *Operation) Logger() *logger.Logger {
	return op.log
}

// Finish logs the result with its latency and returns it unchanged.
func (op *Operation) Finish(result apperrors.Result) apperrors.Result {
	latency := time.Since(op.started)
	outcome := outcomeOK
	if !result.Success {
		outcome = result.Code
	}
	op.metrics.RecordOperation(op.Name, outcome, latency)

	fields := map[string]interface{}{
		"outcome":    outcome,
		"latency_ms": latency.Milliseconds(),
		"latency":    latency.String(),
	}

	msg := "Operation completed"
	switch {
	case result.Success:
		op.log.Info(msg, fields)
	case result.Code == apperrors.InternalDatabase:
		op.log.Error(msg, nil, fields)
	default:
		fields["messages"] = result.Messages
		op.log.Warn(msg, fields)
	}
	return result
}
