// Package graph provides graph algorithms over a workflow's node and edge lists.
//
// # Overview
//
// A Graph wraps a workflow's []types.WorkflowNode and []types.WorkflowEdge.
// It offers a topological sort, cycle detection built on that sort, node and
// edge lookups, and terminal-node discovery. It does not compute transitive
// dependencies, execution levels or cycle paths.
//
// # Key Algorithms
//
// Topological Sort:
//   - Implements Kahn's algorithm for topological ordering
//   - Orders nodes so every edge's source precedes its target
//   - Fails when the edges contain a cycle
//   - Starts from the zero in-degree nodes sorted by id, so the order is deterministic
//
// Cycle Detection:
//   - DetectCycles runs the topological sort and returns its error
//   - The error does not name the nodes of the cycle
//
// # Graph Representation
//
// Workflows are represented as directed graphs where:
//
//   - Nodes represent workflow operations
//   - Edges represent data dependencies
//   - Direction indicates data flow (source → target)
//   - Multiple edges can connect the same nodes
//
// # Topological Sort Usage
//
//	import "github.com/cogniflow/orchestrator/pkg/graph"
//
//	g := graph.New(nodes, edges) // or graph.FromMetamodel(workflow)
//
//	// Perform topological sort
//	sorted, err := g.TopologicalSort()
//	if err != nil {
//	    // Handle cycle
//	}
//
//	// Execute in sorted order
//	for _, nodeID := range sorted {
//	    execute(nodeID)
//	}
//
// # Cycle Detection
//
//	if err := g.DetectCycles(); err != nil {
//	    fmt.Printf("Cycle detected: %v\n", err)
//	}
//
// # Performance Characteristics
//
//   - Topological sort: O(V + E) where V=nodes, E=edges, plus sorting the zero in-degree nodes
//   - Cycle detection: same as the topological sort
//   - GetNode, GetNodeInputEdges, GetNodeOutputEdges: linear scans
//
// # Error Handling
//
// TopologicalSort and DetectCycles return a plain error (not one of the
// sentinels in errors.go) when the edges contain a cycle. An empty graph
// yields an empty order and no error.
//
// # Algorithm Details
//
// Kahn's Algorithm (Topological Sort):
//  1. Calculate in-degree for all nodes
//  2. Add zero in-degree nodes to queue
//  3. Process queue: remove node, decrement neighbor in-degrees
//  4. Add newly zero in-degree nodes to queue
//  5. If processed count != node count, cycle exists
//
// # Use Cases
//
//   - Workflow execution ordering
//   - Dependency resolution
//   - Build systems
//   - Task scheduling
//   - Data pipeline orchestration
//
// # Design Principles
//
//   - Efficiency: Optimized for large graphs
//   - Clarity: Clear, well-documented algorithms
//   - Correctness: Extensively tested edge cases
//   - Flexibility: Generic graph operations
//
// # Thread Safety
//
// Graph algorithms are stateless and safe for concurrent use.
// Multiple goroutines can analyze the same graph simultaneously.
package graph
