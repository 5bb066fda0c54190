package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/houseit/internal/domain"
	"github.com/vladislavdragonenkov/houseit/internal/storage/memory"
)

func newLine(itemID int64, qty int) domain.CartLine {
	return domain.CartLine{
		ItemID:     itemID,
		Name:       "Outlet Installation",
		PriceMinor: 4500,
		Quantity:   qty,
	}
}

func TestCartStore_UpsertList(t *testing.T) {
	store := memory.NewCartStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, "user-1", newLine(1, 1)); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := store.Upsert(ctx, "user-1", newLine(2, 3)); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := store.Upsert(ctx, "user-2", newLine(1, 1)); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	lines, err := store.ListAll(ctx, "user-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].ItemID != 1 || lines[1].ItemID != 2 {
		t.Fatalf("expected lines ordered by item id, got %+v", lines)
	}
	if lines[0].UpdatedAt.IsZero() {
		t.Fatal("expected server-assigned UpdatedAt")
	}
}

func TestCartStore_UpsertOverwrites(t *testing.T) {
	store := memory.NewCartStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, "user-1", newLine(1, 1)); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := store.Upsert(ctx, "user-1", newLine(1, 2)); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	lines, err := store.ListAll(ctx, "user-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected single line, got %d", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Fatalf("expected quantity 2 after overwrite, got %d", lines[0].Quantity)
	}
}

func TestCartStore_Delete(t *testing.T) {
	store := memory.NewCartStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, "user-1", newLine(1, 1)); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := store.Delete(ctx, "user-1", 1); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	// Повторное удаление отсутствующей строки не ошибка.
	if err := store.Delete(ctx, "user-1", 1); err != nil {
		t.Fatalf("delete of absent line failed: %v", err)
	}

	lines, err := store.ListAll(ctx, "user-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(lines))
	}
}

func TestCartStore_DeleteAll(t *testing.T) {
	store := memory.NewCartStore()
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		if err := store.Upsert(ctx, "user-1", newLine(i, 1)); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}
	if err := store.Upsert(ctx, "user-2", newLine(1, 1)); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	if err := store.DeleteAll(ctx, "user-1"); err != nil {
		t.Fatalf("delete all failed: %v", err)
	}

	lines, _ := store.ListAll(ctx, "user-1")
	if len(lines) != 0 {
		t.Fatalf("expected cleared cart, got %d lines", len(lines))
	}
	other, _ := store.ListAll(ctx, "user-2")
	if len(other) != 1 {
		t.Fatalf("expected other user's cart untouched, got %d lines", len(other))
	}
}

func TestCartStore_FailNext(t *testing.T) {
	store := memory.NewCartStore()
	ctx := context.Background()
	boom := errors.New("store unavailable")

	store.FailNext(boom)
	if err := store.Upsert(ctx, "user-1", newLine(1, 1)); !errors.Is(err, boom) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	// Следующая операция снова проходит.
	if err := store.Upsert(ctx, "user-1", newLine(1, 1)); err != nil {
		t.Fatalf("upsert after failure: %v", err)
	}
}

func TestRequestStore_CreateAssignsFields(t *testing.T) {
	store := memory.NewRequestStore()
	ctx := context.Background()

	id, err := store.Create(ctx, "user-1", domain.BookingRequest{
		CategoryKey:  "electrician",
		ProviderID:   1,
		ProviderName: "Lightning Electric Co.",
		Lines:        []domain.CartLine{newLine(1, 1)},
		TotalMinor:   4500,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	stored, err := store.Get(ctx, "user-1", id)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Status != domain.BookingStatusPending {
		t.Fatalf("expected pending status, got %s", stored.Status)
	}
	if stored.CreatedAt.IsZero() {
		t.Fatal("expected server-assigned CreatedAt")
	}
}

func TestRequestStore_ListAllSortedDescending(t *testing.T) {
	store := memory.NewRequestStore()
	ctx := context.Background()

	first, err := store.Create(ctx, "user-1", domain.BookingRequest{Lines: []domain.CartLine{newLine(1, 1)}, TotalMinor: 4500})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := store.Create(ctx, "user-1", domain.BookingRequest{Lines: []domain.CartLine{newLine(2, 1)}, TotalMinor: 4500})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	requests, err := store.ListAll(ctx, "user-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(requests))
	}
	// Последняя заявка первой в выдаче.
	if requests[0].ID == first && requests[1].ID == second &&
		requests[0].CreatedAt.Before(requests[1].CreatedAt) {
		t.Fatalf("expected descending order, got %+v", requests)
	}
}

func TestRequestStore_GetMissing(t *testing.T) {
	store := memory.NewRequestStore()

	_, err := store.Get(context.Background(), "user-1", "missing")
	if !errors.Is(err, domain.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestRequestStore_CreateWithoutUser(t *testing.T) {
	store := memory.NewRequestStore()

	_, err := store.Create(context.Background(), "", domain.BookingRequest{})
	if !errors.Is(err, domain.ErrUserIDRequired) {
		t.Fatalf("expected ErrUserIDRequired, got %v", err)
	}
}
