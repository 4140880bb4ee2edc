// Package logging provides structured logging capabilities for the workflow engine.
//
// # Overview
//
// Logger wraps a log/slog logger. It writes JSON or text records to any
// io.Writer and carries workflow, execution and node identifiers as fields.
//
// # Features
//
//   - Structured logging: JSON (default) or text output through slog handlers
//   - Log levels: debug, info, warn, error
//   - Field helpers: WithWorkflowID, WithExecutionID, WithNodeID,
//     WithNodeType, WithField, WithFields, WithError
//   - Context storage: WithContext stores the logger in a context and
//     FromContext retrieves it
//   - Thread-safe: Safe for concurrent use
//   - Flexible output: Write to any io.Writer
//
// # Log Levels
//
// Config.Level is a string: "debug", "info", "warn" (or "warning") or
// "error". Any other value, including "", selects info.
//
// # Basic Usage
//
//	import "github.com/cogniflow/orchestrator/pkg/logging"
//
//	// Create logger
//	logger := logging.New(logging.Config{
//	    Level:  "info",
//	    Output: os.Stdout,
//	})
//
//	// Log messages with fields
//	logger.WithWorkflowID("wf-123").
//	    WithField("node_count", 42).
//	    Info("Workflow started")
//
//	logger.WithNodeID("node-5").WithError(err).Error("Execution failed")
//
// # Context Integration
//
// A logger travels through a context; fields are not read from the context:
//
//	ctx = logger.WithExecutionID("exec-456").WithContext(ctx)
//	logging.FromContext(ctx).Info("Node executing")
//
// FromContext returns a logger built from DefaultConfig when ctx holds none.
//
// # Output Formats
//
// JSON (Pretty false), as written by slog.JSONHandler:
//
//	{"time":"2024-01-15T10:30:00Z","level":"INFO","msg":"Workflow started","workflow_id":"wf-123"}
//
// Text (Pretty true), as written by slog.TextHandler:
//
//	time=2024-01-15T10:30:00.000Z level=INFO msg="Workflow started" workflow_id=wf-123
//
// # Configuration
//
// Logger configuration options:
//
//	config := logging.Config{
//	    Level:         "debug",   // Minimum level to log
//	    Output:        os.Stdout, // Where to write logs (nil means os.Stdout)
//	    Pretty:        true,      // Text output instead of JSON
//	    IncludeCaller: true,      // Include source file:line
//	}
//
// # Best Practices
//
//   - Use structured fields instead of string formatting
//   - Include execution context (workflow_id, node_id, etc.)
//   - Log at appropriate levels (avoid debug in production)
//   - Add timing information for performance analysis
//   - Include error context (not just error message)
//   - Use consistent field names across the codebase
//
// # Thread Safety
//
// All logger operations are thread-safe and can be used concurrently
// from multiple goroutines without additional synchronization.
//
// # Testing
//
// For testing, use a logger with a buffer:
//
//	buf := &bytes.Buffer{}
//	logger := logging.New(logging.Config{
//	    Output: buf,
//	})
//
//	// Execute code, then check the JSON records in buf
//	if !strings.Contains(buf.String(), "expected message") {
//	    t.Error("message not logged")
//	}
package logging
