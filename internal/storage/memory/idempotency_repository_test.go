package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/houseit/internal/domain"
	"github.com/vladislavdragonenkov/houseit/internal/storage/memory"
)

func TestIdempotencyRepository_CreateProcessing(t *testing.T) {
	repo := memory.NewIdempotencyRepository()

	record, err := repo.CreateProcessing("key-1", "hash-1", time.Time{})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if record.Status != domain.IdempotencyStatusProcessing {
		t.Fatalf("expected processing status, got %s", record.Status)
	}
	if record.TTLAt.IsZero() {
		t.Fatal("expected default TTL to be assigned")
	}
}

func TestIdempotencyRepository_DuplicateKey(t *testing.T) {
	repo := memory.NewIdempotencyRepository()

	if _, err := repo.CreateProcessing("key-1", "hash-1", time.Time{}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err := repo.CreateProcessing("key-1", "hash-1", time.Time{})
	if !errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists) {
		t.Fatalf("expected ErrIdempotencyKeyAlreadyExists, got %v", err)
	}

	_, err = repo.CreateProcessing("key-1", "hash-2", time.Time{})
	if !errors.Is(err, domain.ErrIdempotencyHashMismatch) {
		t.Fatalf("expected ErrIdempotencyHashMismatch, got %v", err)
	}
}

func TestIdempotencyRepository_MarkDoneReplay(t *testing.T) {
	repo := memory.NewIdempotencyRepository()

	if _, err := repo.CreateProcessing("key-1", "hash-1", time.Time{}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.MarkDone("key-1", []byte(`{"request_id":"r-1"}`), 201); err != nil {
		t.Fatalf("mark done failed: %v", err)
	}

	record, err := repo.Get("key-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if record.Status != domain.IdempotencyStatusDone {
		t.Fatalf("expected done status, got %s", record.Status)
	}
	if record.HTTPStatus != 201 {
		t.Fatalf("expected cached status 201, got %d", record.HTTPStatus)
	}
	if string(record.ResponseBody) != `{"request_id":"r-1"}` {
		t.Fatalf("unexpected cached body %q", record.ResponseBody)
	}
}

func TestIdempotencyRepository_DeleteExpired(t *testing.T) {
	repo := memory.NewIdempotencyRepository()
	now := time.Now().UTC()

	if _, err := repo.CreateProcessing("old", "hash", now.Add(-time.Hour)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := repo.CreateProcessing("fresh", "hash", now.Add(time.Hour)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	removed, err := repo.DeleteExpired(now, 0)
	if err != nil {
		t.Fatalf("delete expired failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	if _, err := repo.Get("old"); !errors.Is(err, domain.ErrIdempotencyKeyNotFound) {
		t.Fatalf("expected old record removed, got %v", err)
	}
	if _, err := repo.Get("fresh"); err != nil {
		t.Fatalf("expected fresh record kept, got %v", err)
	}
}

func TestIdempotencyRepository_EmptyKey(t *testing.T) {
	repo := memory.NewIdempotencyRepository()

	if _, err := repo.CreateProcessing("  ", "hash", time.Time{}); !errors.Is(err, domain.ErrIdempotencyKeyRequired) {
		t.Fatalf("expected ErrIdempotencyKeyRequired, got %v", err)
	}
	if _, err := repo.CreateProcessing("key", "", time.Time{}); !errors.Is(err, domain.ErrIdempotencyRequestHashRequired) {
		t.Fatalf("expected ErrIdempotencyRequestHashRequired, got %v", err)
	}
}
