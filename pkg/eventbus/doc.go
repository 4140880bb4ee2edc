// Package eventbus carries metamodel-updated notifications from the
// catalog services to the instance pools (§4.3), keeping the operational
// layer's live instances in sync with the knowledge layer's catalog.
//
// Unlike pkg/observer's async, fire-and-forget dispatch (used for
// execution observability, where ordering across subscribers doesn't
// matter), Publish here is synchronous and calls subscribers in
// registration order, satisfying §4.3's "metamodel-updated events are
// delivered in publisher order" guarantee.
package eventbus
