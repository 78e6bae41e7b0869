package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/maxton76/stall-bokning-sub008/internal/model"
	"github.com/maxton76/stall-bokning-sub008/internal/repository"
	pkgerrors "github.com/maxton76/stall-bokning-sub008/pkg/errors"
)

func newTestRepository() (*repository.Repository, *mockUserRepo, *mockStableRepo, *mockFacilityRepo, *mockRoutineSlotRepo, *mockSelectionRepo, *mockFeatureToggleRepo) {
	users := newMockUserRepo()
	stables := newMockStableRepo()
	facilities := newMockFacilityRepo()
	slots := newMockRoutineSlotRepo(facilities)
	selections := newMockSelectionRepo()
	toggles := newMockFeatureToggleRepo()

	repo := &repository.Repository{
		User:          users,
		Stable:        stables,
		Facility:      facilities,
		RoutineSlot:   slots,
		Selection:     selections,
		FeatureToggle: toggles,
	}
	return repo, users, stables, facilities, slots, selections, toggles
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

// ── Mock StableRepository ──

type mockStableRepo struct {
	stables map[string]*model.Stable
	members map[string]*model.StableMember // "stableID:userID"
	invites map[string]*model.InviteCode   // by code

	memberErr error // forced error for GetMember
}

func newMockStableRepo() *mockStableRepo {
	return &mockStableRepo{
		stables: make(map[string]*model.Stable),
		members: make(map[string]*model.StableMember),
		invites: make(map[string]*model.InviteCode),
	}
}

func (m *mockStableRepo) Create(_ context.Context, stable *model.Stable) error {
	if stable.StableID == "" {
		stable.StableID = "stable-" + stable.Name
	}
	m.stables[stable.StableID] = stable
	return nil
}

func (m *mockStableRepo) GetByID(_ context.Context, id string) (*model.Stable, error) {
	if s, ok := m.stables[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStableRepo) Update(_ context.Context, stable *model.Stable) error {
	m.stables[stable.StableID] = stable
	return nil
}

func (m *mockStableRepo) AddMember(_ context.Context, member *model.StableMember) error {
	if member.MemberID == "" {
		member.MemberID = fmt.Sprintf("member-%d", len(m.members)+1)
	}
	m.members[member.StableID+":"+member.UserID] = member
	return nil
}

func (m *mockStableRepo) GetMember(_ context.Context, stableID, userID string) (*model.StableMember, error) {
	if m.memberErr != nil {
		return nil, m.memberErr
	}
	if mem, ok := m.members[stableID+":"+userID]; ok {
		return mem, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStableRepo) ListMembers(_ context.Context, stableID string) ([]model.StableMember, error) {
	var result []model.StableMember
	for _, mem := range m.members {
		if mem.StableID == stableID {
			result = append(result, *mem)
		}
	}
	return result, nil
}

func (m *mockStableRepo) ListMembershipsForUser(_ context.Context, userID string) ([]model.StableMember, error) {
	var result []model.StableMember
	for _, mem := range m.members {
		if mem.UserID == userID {
			result = append(result, *mem)
		}
	}
	return result, nil
}

func (m *mockStableRepo) CreateInvite(_ context.Context, invite *model.InviteCode) error {
	if invite.InviteCodeID == "" {
		invite.InviteCodeID = "invite-" + invite.Code
	}
	m.invites[invite.Code] = invite
	return nil
}

func (m *mockStableRepo) GetInviteByCode(_ context.Context, code string) (*model.InviteCode, error) {
	if inv, ok := m.invites[code]; ok {
		return inv, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStableRepo) MarkInviteUsed(_ context.Context, inviteID, userID string) error {
	now := time.Now()
	for _, inv := range m.invites {
		if inv.InviteCodeID == inviteID {
			inv.UsedAt = &now
			inv.UsedBy = &userID
		}
	}
	return nil
}

// ── Mock FacilityRepository ──

type mockFacilityRepo struct {
	facilities map[string]*model.Facility
}

func newMockFacilityRepo() *mockFacilityRepo {
	return &mockFacilityRepo{facilities: make(map[string]*model.Facility)}
}

func (m *mockFacilityRepo) Create(_ context.Context, facility *model.Facility) error {
	if facility.FacilityID == "" {
		facility.FacilityID = "facility-" + facility.Name
	}
	m.facilities[facility.FacilityID] = facility
	return nil
}

func (m *mockFacilityRepo) GetByID(_ context.Context, id string) (*model.Facility, error) {
	if f, ok := m.facilities[id]; ok {
		return f, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFacilityRepo) ListByStable(_ context.Context, stableID string) ([]model.Facility, error) {
	var result []model.Facility
	for _, f := range m.facilities {
		if f.StableID == stableID {
			result = append(result, *f)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockFacilityRepo) Update(_ context.Context, facility *model.Facility) error {
	m.facilities[facility.FacilityID] = facility
	return nil
}

func (m *mockFacilityRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.facilities, id)
	return nil
}

// ── Mock RoutineSlotRepository ──

type mockRoutineSlotRepo struct {
	// mu serializes every method, mirroring the claim transaction so
	// concurrency tests stay race-free.
	mu    sync.Mutex
	slots map[string]*model.RoutineSlot

	// facilities backs the capacity lookup inside AssignWithCapacity.
	facilities *mockFacilityRepo

	// getCalls counts GetByID so tests can assert slot data was never
	// read on an out-of-turn claim.
	getCalls int

	// assignErr forces the next claim to fail, simulating a lost
	// conditional-update race.
	assignErr error
}

func newMockRoutineSlotRepo(facilities *mockFacilityRepo) *mockRoutineSlotRepo {
	return &mockRoutineSlotRepo{
		slots:      make(map[string]*model.RoutineSlot),
		facilities: facilities,
	}
}

func (m *mockRoutineSlotRepo) Create(_ context.Context, slot *model.RoutineSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if slot.SlotID == "" {
		slot.SlotID = "slot-" + slot.Title
	}
	m.slots[slot.SlotID] = slot
	return nil
}

func (m *mockRoutineSlotRepo) GetByID(_ context.Context, id string) (*model.RoutineSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if s, ok := m.slots[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoutineSlotRepo) ListInRange(_ context.Context, stableID string, from, to time.Time, unassignedOnly bool) ([]model.RoutineSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.RoutineSlot
	for _, s := range m.slots {
		if s.StableID != stableID {
			continue
		}
		if s.StartsAt.Before(from) || !s.StartsAt.Before(to) {
			continue
		}
		if unassignedOnly && s.AssigneeID != nil {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartsAt.Before(result[j].StartsAt) })
	return result, nil
}

func (m *mockRoutineSlotRepo) ListByAssignee(_ context.Context, stableID, userID string) ([]model.RoutineSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.RoutineSlot
	for _, s := range m.slots {
		if s.StableID == stableID && s.AssigneeID != nil && *s.AssigneeID == userID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartsAt.Before(result[j].StartsAt) })
	return result, nil
}

func (m *mockRoutineSlotRepo) Update(_ context.Context, slot *model.RoutineSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot.SlotID] = slot
	return nil
}

func (m *mockRoutineSlotRepo) Assign(_ context.Context, slot *model.RoutineSlot, processID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assignLocked(slot, processID, userID)
}

func (m *mockRoutineSlotRepo) AssignWithCapacity(_ context.Context, slot *model.RoutineSlot, processID, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.assignErr != nil {
		return 0, m.assignErr
	}

	facility, ok := m.facilities.facilities[*slot.FacilityID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	occupied := m.countOverlapLocked(*slot.FacilityID, slot.StartsAt, slot.EndsAt, slot.SlotID)
	if occupied >= int64(facility.Capacity) {
		return occupied, pkgerrors.ErrCapacityFull
	}
	return occupied, m.assignLocked(slot, processID, userID)
}

func (m *mockRoutineSlotRepo) assignLocked(slot *model.RoutineSlot, processID, userID string) error {
	if m.assignErr != nil {
		return m.assignErr
	}
	stored, ok := m.slots[slot.SlotID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.AssigneeID != nil {
		return pkgerrors.ErrOptimisticLock
	}
	stored.AssigneeID = &userID
	stored.SelectionProcessID = &processID
	stored.UpdatedBy = &userID
	if stored != slot {
		slot.AssigneeID = &userID
		slot.SelectionProcessID = &processID
		slot.UpdatedBy = &userID
	}
	return nil
}

func (m *mockRoutineSlotRepo) Delete(_ context.Context, id string, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, id)
	return nil
}

func (m *mockRoutineSlotRepo) CountOverlappingAssigned(_ context.Context, facilityID string, start, end time.Time, excludeSlotID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countOverlapLocked(facilityID, start, end, excludeSlotID), nil
}

func (m *mockRoutineSlotRepo) countOverlapLocked(facilityID string, start, end time.Time, excludeSlotID string) int64 {
	var count int64
	for _, s := range m.slots {
		if s.SlotID == excludeSlotID || s.AssigneeID == nil {
			continue
		}
		if s.FacilityID == nil || *s.FacilityID != facilityID {
			continue
		}
		if s.StartsAt.Before(end) && s.EndsAt.After(start) {
			count++
		}
	}
	return count
}

// ── Mock SelectionRepository ──

type mockSelectionRepo struct {
	processes map[string]*model.SelectionProcess

	updateFieldsCalls int
}

func newMockSelectionRepo() *mockSelectionRepo {
	return &mockSelectionRepo{processes: make(map[string]*model.SelectionProcess)}
}

func (m *mockSelectionRepo) Create(_ context.Context, process *model.SelectionProcess) error {
	if process.ProcessID == "" {
		process.ProcessID = "process-" + process.Name
	}
	for i := range process.Turns {
		t := &process.Turns[i]
		t.ProcessID = process.ProcessID
		if t.TurnID == "" {
			t.TurnID = fmt.Sprintf("turn-%s-%d", process.ProcessID, t.Order)
		}
	}
	m.processes[process.ProcessID] = process
	return nil
}

func (m *mockSelectionRepo) GetByID(_ context.Context, id string) (*model.SelectionProcess, error) {
	if p, ok := m.processes[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSelectionRepo) ListByStable(_ context.Context, stableID string) ([]model.SelectionProcess, error) {
	var result []model.SelectionProcess
	for _, p := range m.processes {
		if p.StableID == stableID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockSelectionRepo) Update(_ context.Context, process *model.SelectionProcess) error {
	m.processes[process.ProcessID] = process
	return nil
}

func (m *mockSelectionRepo) UpdateFields(_ context.Context, id string, fields map[string]interface{}) error {
	m.updateFieldsCalls++
	p, ok := m.processes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["selection_start_date"]; ok {
		p.SelectionStartDate = v.(time.Time)
	}
	if v, ok := fields["selection_end_date"]; ok {
		p.SelectionEndDate = v.(time.Time)
	}
	return nil
}

func (m *mockSelectionRepo) UpdateTurn(_ context.Context, turn *model.SelectionTurn) error {
	p, ok := m.processes[turn.ProcessID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range p.Turns {
		if p.Turns[i].TurnID == turn.TurnID {
			p.Turns[i] = *turn
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockSelectionRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.processes, id)
	return nil
}

// ── Mock FeatureToggleRepository ──

type mockFeatureToggleRepo struct {
	toggles []model.FeatureToggle

	listErr error
}

func newMockFeatureToggleRepo() *mockFeatureToggleRepo {
	return &mockFeatureToggleRepo{}
}

func (m *mockFeatureToggleRepo) ListForStable(_ context.Context, stableID string) ([]model.FeatureToggle, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.FeatureToggle
	// globals first so stable overrides land last
	for _, t := range m.toggles {
		if t.StableID == nil {
			result = append(result, t)
		}
	}
	for _, t := range m.toggles {
		if t.StableID != nil && *t.StableID == stableID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *mockFeatureToggleRepo) Upsert(_ context.Context, toggle *model.FeatureToggle) error {
	for i := range m.toggles {
		same := (m.toggles[i].StableID == nil) == (toggle.StableID == nil)
		if same && toggle.StableID != nil {
			same = *m.toggles[i].StableID == *toggle.StableID
		}
		if same && m.toggles[i].Key == toggle.Key {
			m.toggles[i].Enabled = toggle.Enabled
			return nil
		}
	}
	m.toggles = append(m.toggles, *toggle)
	return nil
}
