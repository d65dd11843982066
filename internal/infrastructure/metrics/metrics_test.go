package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lakowalski/luxmedhunter/internal/domain/entity"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCycle_CountsByOutcome(t *testing.T) {
	m := New()
	started := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	booked := &entity.HuntCycleResult{
		UserID:         "jan",
		CycleStartedAt: started,
		SlotsSeen:      3,
		BookingRecord:  &entity.BookingRecord{Status: entity.BookingStatusConfirmed},
	}
	conflict := &entity.HuntCycleResult{UserID: "jan", CycleStartedAt: started, SlotsSeen: 1, Error: entity.ErrorKindBookingConflict}
	idle := &entity.HuntCycleResult{UserID: "ola", CycleStartedAt: started}

	m.ObserveCycle(booked, time.Second)
	m.ObserveCycle(conflict, time.Second)
	m.ObserveCycle(idle, 2*time.Second)

	if got := testutil.ToFloat64(m.cycles.WithLabelValues(OutcomeBooked)); got != 1 {
		t.Fatalf("booked = %v; want 1", got)
	}
	if got := testutil.ToFloat64(m.cycles.WithLabelValues(string(entity.ErrorKindBookingConflict))); got != 1 {
		t.Fatalf("conflict = %v; want 1", got)
	}
	if got := testutil.ToFloat64(m.cycles.WithLabelValues(OutcomeNoAvailability)); got != 1 {
		t.Fatalf("no availability = %v; want 1", got)
	}
	if got := testutil.ToFloat64(m.slotsSeen); got != 4 {
		t.Fatalf("slots seen = %v; want 4", got)
	}
	if got := testutil.ToFloat64(m.lastCycle.WithLabelValues("ola")); got != float64(started.Add(2*time.Second).Unix()) {
		t.Fatalf("last cycle = %v", got)
	}
}

func TestObserveNotification(t *testing.T) {
	m := New()
	m.ObserveNotification("SMTP", true)
	m.ObserveNotification("SMTP", false)
	m.ObserveNotification("SMTP", false)

	if got := testutil.ToFloat64(m.notifications.WithLabelValues("SMTP", "failure")); got != 2 {
		t.Fatalf("failures = %v; want 2", got)
	}
}

func TestHandler_ServesRegistry(t *testing.T) {
	m := New()
	m.ObserveNotification("SES", true)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `luxmedhunter_notifications_total{provider="SES",status="success"} 1`) {
		t.Fatalf("metric missing from exposition:\n%s", body)
	}
}
