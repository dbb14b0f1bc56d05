package usage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestConsumeTracksKindsSeparately(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	u, err := svc.Consume(ctx, "u1", KindAnalysis, 1)
	if err != nil {
		t.Fatal(err)
	}
	if u.Analyses.Used != 1 || u.Enhancements.Used != 0 {
		t.Fatalf("unexpected meters: %+v", u)
	}

	u, err = svc.Consume(ctx, "u1", KindEnhancement, 1)
	if err != nil {
		t.Fatal(err)
	}
	if u.Analyses.Used != 1 || u.Enhancements.Used != 1 {
		t.Fatalf("unexpected meters: %+v", u)
	}
}

func TestConsumeRejectsOverLimit(t *testing.T) {
	svc := NewService()
	ctx := context.Background()
	limit := planLimits[PlanFree].enhancements

	for i := 0; i < limit; i++ {
		if _, err := svc.Consume(ctx, "u1", KindEnhancement, 1); err != nil {
			t.Fatalf("consume %d: %v", i, err)
		}
	}
	if _, err := svc.Consume(ctx, "u1", KindEnhancement, 1); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}

	// Analyses meter is unaffected by an exhausted enhancement meter.
	ok, _, err := svc.CanConsume(ctx, "u1", KindAnalysis, 1)
	if err != nil || !ok {
		t.Fatalf("expected analysis budget to remain, ok=%v err=%v", ok, err)
	}
}

func TestPeriodRollsOver(t *testing.T) {
	store := newMemoryStore()
	svc := NewPostgresService(store)
	ctx := context.Background()

	if _, err := svc.Consume(ctx, "u1", KindAnalysis, 3); err != nil {
		t.Fatal(err)
	}
	store.mu.Lock()
	u := store.data["u1"]
	u.ResetsAt = time.Now().UTC().Add(-time.Minute)
	store.data["u1"] = u
	store.mu.Unlock()

	got, err := svc.EnsurePeriod(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Analyses.Used != 0 || got.Enhancements.Used != 0 {
		t.Fatalf("expected reset meters, got %+v", got)
	}
	if !got.ResetsAt.After(time.Now().UTC()) {
		t.Fatalf("expected future reset time, got %v", got.ResetsAt)
	}
}

func TestSetPlanKeepsConsumption(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	if _, err := svc.Consume(ctx, "u1", KindAnalysis, 2); err != nil {
		t.Fatal(err)
	}
	u, err := svc.SetPlan(ctx, "u1", PlanPro)
	if err != nil {
		t.Fatal(err)
	}
	if u.Plan != PlanPro {
		t.Fatalf("expected Pro plan, got %q", u.Plan)
	}
	if u.Analyses.Used != 2 {
		t.Fatalf("consumption lost on plan change: %+v", u)
	}
	if u.Analyses.Limit != planLimits[PlanPro].analyses {
		t.Fatalf("limit not upgraded: %+v", u)
	}
}

func TestMeterRemaining(t *testing.T) {
	m := Meter{Limit: 5, Used: 7}
	if m.Remaining() != 0 {
		t.Fatalf("expected clamped remaining, got %d", m.Remaining())
	}
	m = Meter{Limit: 5, Used: 2}
	if m.Remaining() != 3 {
		t.Fatalf("expected 3, got %d", m.Remaining())
	}
}
