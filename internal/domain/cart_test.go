package domain

import (
	"errors"
	"testing"
)

func TestCart_TotalMinor(t *testing.T) {
	cart := Cart{
		Lines: []CartLine{
			{ItemID: 1, Name: "Outlet Installation", PriceMinor: 4500, Quantity: 1},
			{ItemID: 2, Name: "Light Fixture Installation", PriceMinor: 6500, Quantity: 2},
		},
	}

	if got := cart.TotalMinor(); got != 4500+2*6500 {
		t.Fatalf("expected total %d, got %d", 4500+2*6500, got)
	}
}

func TestCart_TotalMinor_Empty(t *testing.T) {
	var cart Cart
	if got := cart.TotalMinor(); got != 0 {
		t.Fatalf("expected zero total for empty cart, got %d", got)
	}
}

func TestCart_Line(t *testing.T) {
	cart := Cart{Lines: []CartLine{{ItemID: 3, Quantity: 1}}}

	if _, ok := cart.Line(3); !ok {
		t.Fatal("expected to find line for item 3")
	}
	if _, ok := cart.Line(99); ok {
		t.Fatal("did not expect line for unknown item")
	}
}

func TestCart_ValidateInvariants(t *testing.T) {
	cart := Cart{
		Lines: []CartLine{
			{ItemID: 1, PriceMinor: 100, Quantity: 0},
			{ItemID: 1, PriceMinor: -5, Quantity: 1},
		},
	}

	errs := cart.ValidateInvariants()
	if len(errs) != 3 {
		t.Fatalf("expected 3 violations, got %d: %v", len(errs), errs)
	}

	var qty, price, dup bool
	for _, err := range errs {
		switch {
		case errors.Is(err, ErrLineQtyInvalid):
			qty = true
		case errors.Is(err, ErrLinePriceInvalid):
			price = true
		case errors.Is(err, ErrLineDuplicate):
			dup = true
		}
	}
	if !qty || !price || !dup {
		t.Fatalf("missing expected violations: qty=%v price=%v dup=%v", qty, price, dup)
	}
}

func TestBookingRequest_ValidateInvariants(t *testing.T) {
	req := BookingRequest{
		UserID:     "user-1",
		TotalMinor: 11000,
		Lines: []CartLine{
			{ItemID: 1, PriceMinor: 4500, Quantity: 1},
			{ItemID: 2, PriceMinor: 6500, Quantity: 1},
		},
	}

	if errs := req.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no violations, got %v", errs)
	}

	req.TotalMinor = 10000
	errs := req.ValidateInvariants()
	if len(errs) != 1 || !errors.Is(errs[0], ErrTotalMismatch) {
		t.Fatalf("expected total mismatch, got %v", errs)
	}
}

func TestBookingRequest_ValidateInvariants_Empty(t *testing.T) {
	var req BookingRequest
	errs := req.ValidateInvariants()

	var user, lines bool
	for _, err := range errs {
		if errors.Is(err, ErrUserIDRequired) {
			user = true
		}
		if errors.Is(err, ErrLinesRequired) {
			lines = true
		}
	}
	if !user || !lines {
		t.Fatalf("expected user and lines violations, got %v", errs)
	}
}

func TestRequireIdentity(t *testing.T) {
	if _, err := RequireIdentity(IdentityState{}); !errors.Is(err, ErrAuthenticationRequired) {
		t.Fatalf("expected ErrAuthenticationRequired, got %v", err)
	}

	resolving := IdentityState{User: &Identity{UserID: "u1"}, Resolving: true}
	if _, err := RequireIdentity(resolving); !errors.Is(err, ErrAuthenticationRequired) {
		t.Fatalf("expected ErrAuthenticationRequired while resolving, got %v", err)
	}

	incomplete := IdentityState{User: &Identity{Email: "a@b.c"}}
	if _, err := RequireIdentity(incomplete); !errors.Is(err, ErrIdentityIncomplete) {
		t.Fatalf("expected ErrIdentityIncomplete, got %v", err)
	}

	ok := IdentityState{User: &Identity{UserID: "u1"}}
	id, err := RequireIdentity(ok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.UserID != "u1" {
		t.Fatalf("expected user u1, got %q", id.UserID)
	}
}

func TestBookingStatus_Valid(t *testing.T) {
	for _, s := range []BookingStatus{BookingStatusPending, BookingStatusAccepted, BookingStatusCompleted, BookingStatusCanceled} {
		if !s.Valid() {
			t.Fatalf("expected %s to be valid", s)
		}
	}
	if BookingStatus("shipped").Valid() {
		t.Fatal("unexpected valid status")
	}
}
