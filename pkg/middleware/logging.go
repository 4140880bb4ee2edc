package middleware

import (
	"context"
	"time"

	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/logging"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// LoggingMiddleware logs node execution start and completion.
// It records execution time and logs errors if execution fails.
type LoggingMiddleware struct {
	logger *logging.Logger
}

// NewLoggingMiddleware creates a new logging middleware.
func NewLoggingMiddleware(logger *logging.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

// Process logs node execution.
func (m *LoggingMiddleware) Process(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail, next Handler) error {
	nodeLogger := m.logger.WithNodeID(node.ID).WithNodeType(node.Type)

	nodeLogger.Debug("node execution started")
	startTime := time.Now()

	err := next(ctx, ectx, node, detail)

	duration := time.Since(startTime)

	if err != nil {
		nodeLogger.
			WithError(err).
			WithField("duration_ms", duration.Milliseconds()).
			Error("node execution failed")
	} else {
		nodeLogger.
			WithField("duration_ms", duration.Milliseconds()).
			Debug("node execution completed")
	}

	return err
}

// Name returns the middleware name.
func (m *LoggingMiddleware) Name() string {
	return "Logging"
}
