// Package observer provides an event-driven observer pattern for workflow execution.
//
// # Overview
//
// An Observer receives Event values through its single OnEvent method. A
// Manager holds a list of observers and passes each event to all of them.
//
// # Observer Interface
//
//	type Observer interface {
//	    OnEvent(ctx context.Context, event Event)
//	}
//
// An Event carries its Type and Status, timestamps and elapsed time, the
// execution, workflow and node identifiers, the node type, and an optional
// Result, Error and Metadata map.
//
// # Event Types
//
//   - EventWorkflowStart, EventWorkflowEnd
//   - EventNodeStart, EventNodeEnd, EventNodeSuccess, EventNodeFailure
//
// engine.Engine emits only EventNodeEnd, once per executed node, with
// StatusSuccess or StatusFailure, the workflow and node ids, timing and the
// node's error; it leaves ExecutionID and NodeType empty. The other event
// types are emitted only by callers that send their own events.
//
// # Basic Usage
//
//	import "github.com/cogniflow/orchestrator/pkg/observer"
//
//	mgr := observer.NewManager()
//	mgr.Register(observer.NewConsoleObserver())
//
//	// Attach to an engine
//	eng := engine.New(processors, nodePool, engine.WithObservers(mgr))
//
// # Custom Observer Example
//
//	type FailureCounter struct {
//	    mu       sync.Mutex
//	    failures int
//	}
//
//	func (o *FailureCounter) OnEvent(ctx context.Context, event observer.Event) {
//	    if event.Status == observer.StatusFailure {
//	        o.mu.Lock()
//	        o.failures++
//	        o.mu.Unlock()
//	    }
//	}
//
// # Built-in Observers
//
// NoOpObserver ignores every event.
//
// ConsoleObserver writes each event through a Logger (DefaultLogger, on the
// standard log package, unless NewConsoleObserverWithLogger supplies one):
// workflow start at info, workflow end at info or, with an error, at error,
// node start, success and end at debug, and node failure at warn.
//
// # Dispatch
//
// Manager.Notify calls each observer in its own goroutine and returns
// without waiting, so events reach observers in no guaranteed order. A
// panic in an observer is recovered and discarded; the other observers and
// the caller are not affected. Register is not synchronized with Notify.
//
// # Use Cases
//
//   - Logging and auditing
//   - Metrics collection and monitoring
//   - Real-time dashboards
//   - Debugging and troubleshooting
//   - Performance profiling
//   - Event streaming to external systems
//   - Workflow analytics
//   - Alerting and notifications
//
// # Testing
//
// For testing, use a mock observer that collects events on a channel, and
// wait on the channel, since Notify returns before observers run:
//
//	type MockObserver struct {
//	    events chan observer.Event
//	}
//
//	func (o *MockObserver) OnEvent(ctx context.Context, event observer.Event) {
//	    o.events <- event
//	}
//
// # Best Practices
//
//   - Keep observer logic simple and fast
//   - Use async processing for expensive operations
//   - Don't modify workflow or node state
//   - Handle errors gracefully (don't panic)
//   - Use structured logging for consistency
//   - Consider observer overhead in production
//
// # Thread Safety
//
// OnEvent may be called concurrently from multiple goroutines.
// Implementations must be thread-safe using appropriate synchronization.
package observer
