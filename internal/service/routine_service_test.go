package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/maxton76/stall-bokning-sub008/internal/dto"
)

func setupRoutineFixture(t *testing.T) (RoutineService, *mockRoutineSlotRepo) {
	t.Helper()
	repo, _, _, _, slots, _, _ := newTestRepository()
	return NewRoutineService(repo, zap.NewNop()), slots
}

func TestRoutineService_Create_Success(t *testing.T) {
	svc, _ := setupRoutineFixture(t)

	resp, err := svc.Create(context.Background(), "stable-1", &dto.CreateRoutineSlotRequest{
		Title:    "Evening feed",
		StartsAt: dto.FlexTime{Time: utc("2026-03-03T17:00:00Z")},
		EndsAt:   dto.FlexTime{Time: utc("2026-03-03T18:00:00Z")},
	}, "admin-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.Title != "Evening feed" {
		t.Errorf("unexpected title %s", resp.Title)
	}
	if resp.AssigneeID != nil {
		t.Error("new slot should be unassigned")
	}
	if resp.StartsAt != "2026-03-03T17:00:00Z" {
		t.Errorf("unexpected starts_at %s", resp.StartsAt)
	}
}

func TestRoutineService_Create_RejectsInvertedTimes(t *testing.T) {
	svc, _ := setupRoutineFixture(t)

	_, err := svc.Create(context.Background(), "stable-1", &dto.CreateRoutineSlotRequest{
		Title:    "Backwards",
		StartsAt: dto.FlexTime{Time: utc("2026-03-03T18:00:00Z")},
		EndsAt:   dto.FlexTime{Time: utc("2026-03-03T17:00:00Z")},
	}, "admin-1")
	if !errors.Is(err, ErrSlotTimesInvalid) {
		t.Errorf("expected ErrSlotTimesInvalid, got %v", err)
	}
}

func TestRoutineService_ListInRange_FiltersWindow(t *testing.T) {
	svc, _ := setupRoutineFixture(t)
	ctx := context.Background()

	for _, tc := range []struct{ title, starts, ends string }{
		{"Inside", "2026-03-03T07:00:00Z", "2026-03-03T08:00:00Z"},
		{"Before", "2026-02-20T07:00:00Z", "2026-02-20T08:00:00Z"},
		{"After", "2026-04-01T07:00:00Z", "2026-04-01T08:00:00Z"},
	} {
		if _, err := svc.Create(ctx, "stable-1", &dto.CreateRoutineSlotRequest{
			Title:    tc.title,
			StartsAt: dto.FlexTime{Time: utc(tc.starts)},
			EndsAt:   dto.FlexTime{Time: utc(tc.ends)},
		}, "admin-1"); err != nil {
			t.Fatalf("seed slot: %v", err)
		}
	}

	slots, err := svc.ListInRange(ctx, "stable-1", &dto.RoutineSlotListRequest{
		From: "2026-03-01",
		To:   "2026-03-07",
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(slots) != 1 || slots[0].Title != "Inside" {
		t.Errorf("expected only the in-window slot, got %v", slots)
	}
}

func TestRoutineService_ListInRange_InclusiveEndDate(t *testing.T) {
	svc, _ := setupRoutineFixture(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "stable-1", &dto.CreateRoutineSlotRequest{
		Title:    "Last day",
		StartsAt: dto.FlexTime{Time: utc("2026-03-07T21:00:00Z")},
		EndsAt:   dto.FlexTime{Time: utc("2026-03-07T22:00:00Z")},
	}, "admin-1"); err != nil {
		t.Fatalf("seed slot: %v", err)
	}

	slots, err := svc.ListInRange(ctx, "stable-1", &dto.RoutineSlotListRequest{
		From: "2026-03-01",
		To:   "2026-03-07",
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(slots) != 1 {
		t.Errorf("a slot on the last day must be included, got %d", len(slots))
	}
}

func TestRoutineService_Update_RejectsInvertedTimes(t *testing.T) {
	svc, _ := setupRoutineFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "stable-1", &dto.CreateRoutineSlotRequest{
		Title:    "Morning feed",
		StartsAt: dto.FlexTime{Time: utc("2026-03-03T07:00:00Z")},
		EndsAt:   dto.FlexTime{Time: utc("2026-03-03T08:00:00Z")},
	}, "admin-1")
	if err != nil {
		t.Fatalf("seed slot: %v", err)
	}

	badStart := dto.FlexTime{Time: utc("2026-03-03T09:00:00Z")}
	_, err = svc.Update(ctx, created.ID, &dto.UpdateRoutineSlotRequest{StartsAt: &badStart}, "admin-1")
	if !errors.Is(err, ErrSlotTimesInvalid) {
		t.Errorf("expected ErrSlotTimesInvalid, got %v", err)
	}
}

func TestRoutineService_Delete_RejectsAssigned(t *testing.T) {
	svc, slots := setupRoutineFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "stable-1", &dto.CreateRoutineSlotRequest{
		Title:    "Claimed",
		StartsAt: dto.FlexTime{Time: utc("2026-03-03T07:00:00Z")},
		EndsAt:   dto.FlexTime{Time: utc("2026-03-03T08:00:00Z")},
	}, "admin-1")
	if err != nil {
		t.Fatalf("seed slot: %v", err)
	}
	assignee := "anna"
	slots.slots[created.ID].AssigneeID = &assignee

	err = svc.Delete(ctx, created.ID, "admin-1")
	if !errors.Is(err, ErrSlotAssigned) {
		t.Errorf("expected ErrSlotAssigned, got %v", err)
	}
}

func TestRoutineService_Delete_NotFound(t *testing.T) {
	svc, _ := setupRoutineFixture(t)

	err := svc.Delete(context.Background(), "ghost", "admin-1")
	if !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("expected ErrSlotNotFound, got %v", err)
	}
}
