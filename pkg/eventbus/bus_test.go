package eventbus

import "testing"

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	bus := New()
	var order []int
	bus.Subscribe(func(Event) { order = append(order, 1) })
	bus.Subscribe(func(Event) { order = append(order, 2) })

	bus.Publish(Event{Kind: NodeMetamodelUpdated, MetamodelID: "n1"})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("got %v, want [1 2]", order)
	}
}

func TestPublishIsSynchronous(t *testing.T) {
	bus := New()
	done := false
	bus.Subscribe(func(Event) { done = true })
	bus.Publish(Event{Kind: WorkflowMetamodelUpdated})
	if !done {
		t.Error("expected handler to have run synchronously before Publish returned")
	}
}
