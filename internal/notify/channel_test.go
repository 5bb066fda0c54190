package notify_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/houseit/internal/domain"
	"github.com/vladislavdragonenkov/houseit/internal/notify"
)

func TestChannel_ShowHide(t *testing.T) {
	ch := notify.NewChannel()

	if _, visible := ch.Current(); visible {
		t.Fatal("expected idle channel")
	}

	ch.Show(domain.Alert{Title: "Booking Confirmed!", Kind: domain.AlertKindSuccess})

	alert, visible := ch.Current()
	if !visible {
		t.Fatal("expected visible alert")
	}
	if alert.Title != "Booking Confirmed!" {
		t.Fatalf("unexpected alert title %q", alert.Title)
	}

	ch.Hide()
	if _, visible := ch.Current(); visible {
		t.Fatal("expected idle channel after hide")
	}
}

func TestChannel_AtMostOneVisible(t *testing.T) {
	ch := notify.NewChannel()

	ch.Show(domain.Alert{Title: "first"})
	ch.Show(domain.Alert{Title: "second"})

	alert, visible := ch.Current()
	if !visible {
		t.Fatal("expected visible alert")
	}
	if alert.Title != "second" {
		t.Fatalf("expected replacement alert, got %q", alert.Title)
	}
}

func TestChannel_PressRunsActionAfterDismiss(t *testing.T) {
	ch := notify.NewChannel()

	var dismissedBeforeAction bool
	ch.Show(domain.Alert{
		Title: "Booking Confirmed!",
		Buttons: []domain.AlertButton{{
			Text: "OK",
			Action: func() {
				_, visible := ch.Current()
				dismissedBeforeAction = !visible
			},
		}},
	})

	ch.Press("OK")

	if !dismissedBeforeAction {
		t.Fatal("expected action to run after dismissal completed")
	}
	if _, visible := ch.Current(); visible {
		t.Fatal("expected idle channel after press")
	}
}

func TestChannel_PressUnknownButton(t *testing.T) {
	ch := notify.NewChannel()

	ch.Show(domain.Alert{Title: "oops", Buttons: []domain.AlertButton{{Text: "OK"}}})
	ch.Press("Cancel")

	// Неизвестная кнопка всё равно закрывает алерт, как нажатие мимо.
	if _, visible := ch.Current(); visible {
		t.Fatal("expected alert dismissed")
	}
}

func TestChannel_PressWhileIdle(t *testing.T) {
	ch := notify.NewChannel()
	ch.Press("OK") // не должно паниковать
}

func TestChannel_SettleDelay(t *testing.T) {
	const delay = 30 * time.Millisecond
	ch := notify.NewChannel(notify.WithSettleDelay(delay))

	ch.Show(domain.Alert{Title: "first"})
	ch.Hide()

	start := time.Now()
	ch.Show(domain.Alert{Title: "second"})
	if elapsed := time.Since(start); elapsed < delay/2 {
		t.Fatalf("expected settle delay before re-show, elapsed %v", elapsed)
	}

	if alert, visible := ch.Current(); !visible || alert.Title != "second" {
		t.Fatalf("expected second alert visible, got %v %v", alert, visible)
	}
}
