package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/maxton76/stall-bokning-sub008/config"
	"github.com/maxton76/stall-bokning-sub008/internal/model"
)

func setupContextFixture(t *testing.T) (ContextService, *mockStableRepo, *mockFeatureToggleRepo) {
	t.Helper()
	repo, users, stables, facilities, _, _, toggles := newTestRepository()
	ctx := context.Background()

	if err := users.Create(ctx, &model.User{UserID: "anna", Name: "Anna", Email: "anna@example.com"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := stables.Create(ctx, &model.Stable{StableID: "stable-1", Name: "Ekgården", Timezone: "Europe/Stockholm"}); err != nil {
		t.Fatalf("seed stable: %v", err)
	}
	if err := stables.AddMember(ctx, &model.StableMember{
		StableID: "stable-1",
		UserID:   "anna",
		Role:     model.RoleMember,
		User:     users.users["anna"],
	}); err != nil {
		t.Fatalf("seed member: %v", err)
	}
	if err := facilities.Create(ctx, &model.Facility{
		FacilityID: "facility-1",
		StableID:   "stable-1",
		Name:       "Ridhus A",
		Kind:       model.FacilityKindArena,
		Capacity:   1,
	}); err != nil {
		t.Fatalf("seed facility: %v", err)
	}

	logger := zap.NewNop()
	facilitySvc := NewFacilityService(repo, logger)
	svc := NewContextService(&config.Config{}, repo, nil, facilitySvc, logger)
	return svc, stables, toggles
}

func TestContextService_GetStableContext_AllBranches(t *testing.T) {
	svc, _, toggles := setupContextFixture(t)
	stableScope := "stable-1"
	toggles.toggles = []model.FeatureToggle{
		{Key: "selection", Enabled: false},
		{StableID: &stableScope, Key: "selection", Enabled: true},
		{Key: "exports", Enabled: true},
	}

	resp, err := svc.GetStableContext(context.Background(), "stable-1", "anna")
	if err != nil {
		t.Fatalf("context: %v", err)
	}

	if resp.Stable == nil || resp.Stable.Name != "Ekgården" {
		t.Errorf("expected stable branch, got %+v", resp.Stable)
	}
	if resp.Membership == nil || resp.Membership.Role != model.RoleMember {
		t.Errorf("expected membership branch, got %+v", resp.Membership)
	}
	if len(resp.Facilities) != 1 {
		t.Errorf("expected 1 facility, got %d", len(resp.Facilities))
	}
	if len(resp.Degraded) != 0 {
		t.Errorf("nothing should degrade, got %v", resp.Degraded)
	}

	// stable override wins over the global default
	if !resp.Toggles["selection"] {
		t.Error("stable override for selection should win")
	}
	if !resp.Toggles["exports"] {
		t.Error("global exports toggle should apply")
	}
}

func TestContextService_GetStableContext_NonMemberRejected(t *testing.T) {
	svc, _, _ := setupContextFixture(t)

	_, err := svc.GetStableContext(context.Background(), "stable-1", "stranger")
	if !errors.Is(err, ErrNotAMember) {
		t.Errorf("expected ErrNotAMember, got %v", err)
	}
}

func TestContextService_GetStableContext_BranchFailureDegrades(t *testing.T) {
	svc, _, toggles := setupContextFixture(t)
	toggles.listErr = errors.New("db gone")

	resp, err := svc.GetStableContext(context.Background(), "stable-1", "anna")
	if err != nil {
		t.Fatalf("a branch failure must not fail the call: %v", err)
	}
	if resp.Toggles != nil {
		t.Error("failed branch should leave toggles empty")
	}
	if len(resp.Degraded) != 1 || resp.Degraded[0] != "toggles" {
		t.Errorf("expected degraded [toggles], got %v", resp.Degraded)
	}
	if resp.Stable == nil || len(resp.Facilities) != 1 {
		t.Error("healthy branches should still be populated")
	}
}

func TestContextService_SetToggle_UpsertsStableScope(t *testing.T) {
	svc, _, toggles := setupContextFixture(t)
	stableScope := "stable-1"

	if err := svc.SetToggle(context.Background(), &stableScope, "selection", true); err != nil {
		t.Fatalf("set toggle: %v", err)
	}
	if err := svc.SetToggle(context.Background(), &stableScope, "selection", false); err != nil {
		t.Fatalf("set toggle again: %v", err)
	}

	if len(toggles.toggles) != 1 {
		t.Fatalf("expected a single upserted row, got %d", len(toggles.toggles))
	}
	if toggles.toggles[0].Enabled {
		t.Error("second write should have disabled the toggle")
	}
}
