package events_test

import (
	"encoding/json"
	"errors"
	"testing"

	"snatch/internal/events"
	"snatch/internal/jobs"
)

type recordingSubscriber struct {
	name     string
	events   []events.Event
	failWith error
	order    *[]string
}

func (r *recordingSubscriber) Send(evt events.Event) error {
	if r.order != nil {
		*r.order = append(*r.order, r.name)
	}
	if r.failWith != nil {
		return r.failWith
	}
	r.events = append(r.events, evt)
	return nil
}

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	hub := events.NewHub()
	var order []string
	first := &recordingSubscriber{name: "first", order: &order}
	second := &recordingSubscriber{name: "second", order: &order}
	hub.Subscribe(first)
	hub.Subscribe(second)

	hub.Publish(events.JobCompleted("job-1"))

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected delivery order: %v", order)
	}
	if len(first.events) != 1 || first.events[0].JobID != "job-1" {
		t.Fatalf("unexpected events on first subscriber: %+v", first.events)
	}
}

func TestPublishSkipsFailingSubscriber(t *testing.T) {
	hub := events.NewHub()
	broken := &recordingSubscriber{name: "broken", failWith: errors.New("transport closed")}
	healthy := &recordingSubscriber{name: "healthy"}
	hub.Subscribe(broken)
	hub.Subscribe(healthy)

	hub.Publish(events.JobFailed("job-2", "rate limited"))

	if len(healthy.events) != 1 {
		t.Fatal("expected delivery to continue past the failing subscriber")
	}
	if healthy.events[0].Error != "rate limited" {
		t.Fatalf("unexpected payload: %+v", healthy.events[0])
	}
}

func TestSubscribeIsIdempotentAndUnsubscribeRemoves(t *testing.T) {
	hub := events.NewHub()
	sub := &recordingSubscriber{name: "only"}
	hub.Subscribe(sub)
	hub.Subscribe(sub)
	if hub.Len() != 1 {
		t.Fatalf("expected one subscriber, got %d", hub.Len())
	}

	hub.Publish(events.JobProgress("job-3", jobs.StatusDownloading, 25))
	if len(sub.events) != 1 {
		t.Fatalf("expected one delivery, got %d", len(sub.events))
	}

	hub.Unsubscribe(sub)
	hub.Publish(events.JobProgress("job-3", jobs.StatusDownloading, 50))
	if len(sub.events) != 1 {
		t.Fatal("expected no delivery after unsubscribe")
	}
}

func TestBatchStartedCarriesItems(t *testing.T) {
	store := jobs.NewStore()
	created := []*jobs.Job{
		store.Create("https://youtu.be/a"),
		store.Create("https://youtu.be/b"),
	}

	hub := events.NewHub()
	sub := &recordingSubscriber{name: "batch"}
	hub.Subscribe(sub)
	hub.Publish(events.BatchStarted(created))

	if len(sub.events) != 1 {
		t.Fatalf("expected one event, got %d", len(sub.events))
	}
	evt := sub.events[0]
	if evt.Type != events.TypeBatchStarted || len(evt.Items) != 2 {
		t.Fatalf("unexpected batch event: %+v", evt)
	}
}

func TestBatchStartedMarshalsAPIShape(t *testing.T) {
	store := jobs.NewStore()
	created := []*jobs.Job{store.Create("https://youtu.be/a")}

	payload, err := json.Marshal(events.BatchStarted(created))
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}

	var decoded struct {
		Type  string                       `json:"type"`
		Items []map[string]json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if decoded.Type != "batch_started" || len(decoded.Items) != 1 {
		t.Fatalf("unexpected payload: %s", payload)
	}

	item := decoded.Items[0]
	for _, key := range []string{"id", "url", "status", "progress", "createdAt", "updatedAt"} {
		if _, ok := item[key]; !ok {
			t.Fatalf("missing key %q in %s", key, payload)
		}
	}
	// Struct-cased keys would mean the raw record leaked past the DTO
	// layer; empty optional fields must be omitted entirely.
	for _, key := range []string{"ID", "URL", "CreatedAt", "title", "size", "error"} {
		if _, ok := item[key]; ok {
			t.Fatalf("unexpected key %q in %s", key, payload)
		}
	}
}
