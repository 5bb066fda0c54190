package memory

import (
	"testing"

	"github.com/vladislavdragonenkov/houseit/internal/domain"
)

func TestOutboxRepository_EnqueuePull(t *testing.T) {
	repo := NewOutboxRepository()

	msg, err := repo.Enqueue(domain.OutboxMessage{
		AggregateType: "booking",
		AggregateID:   "req-1",
		EventType:     "BookingRequestCreated",
		Payload:       []byte(`{"total_minor":11000}`),
	})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if msg.ID == "" {
		t.Fatal("expected assigned message id")
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending message, got %d", len(pending))
	}
}

func TestOutboxRepository_MarkSent(t *testing.T) {
	repo := NewOutboxRepository()

	msg, err := repo.Enqueue(domain.OutboxMessage{EventType: "BookingRequestCreated"})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	if err := repo.MarkSent(msg.ID); err != nil {
		t.Fatalf("mark sent failed: %v", err)
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending after MarkSent, got %d", len(pending))
	}
}

func TestOutboxRepository_MarkUnknown(t *testing.T) {
	repo := NewOutboxRepository()

	if err := repo.MarkSent("missing"); err == nil {
		t.Fatal("expected error for unknown message id")
	}
	if err := repo.MarkFailed("missing"); err == nil {
		t.Fatal("expected error for unknown message id")
	}
}

func TestOutboxRepository_Stats(t *testing.T) {
	repo := NewOutboxRepository()

	if _, err := repo.Enqueue(domain.OutboxMessage{EventType: "BookingRequestCreated"}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	stats, err := repo.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.PendingCount != 1 {
		t.Fatalf("expected 1 pending, got %d", stats.PendingCount)
	}
	if stats.OldestPendingAt.IsZero() {
		t.Fatal("expected oldest pending timestamp")
	}
}
