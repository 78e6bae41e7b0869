package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/maxton76/stall-bokning-sub008/config"
	"github.com/maxton76/stall-bokning-sub008/internal/dto"
	"github.com/maxton76/stall-bokning-sub008/internal/model"
	"github.com/maxton76/stall-bokning-sub008/internal/repository"
	"github.com/maxton76/stall-bokning-sub008/pkg/redis"
)

// ContextService assembles the stable context a client needs right after
// scoping to a stable. The branches load in parallel and fail
// independently; a branch failure marks the response degraded instead of
// failing the whole call.
type ContextService interface {
	GetStableContext(ctx context.Context, stableID, userID string) (*dto.StableContextResponse, error)
	SetToggle(ctx context.Context, stableID *string, key string, enabled bool) error
}

type contextService struct {
	cfg      *config.Config
	repo     *repository.Repository
	rdb      *redis.Client
	facility FacilityService
	logger   *zap.Logger
}

// NewContextService creates a ContextService. rdb may be nil; toggles then
// read straight from the database.
func NewContextService(cfg *config.Config, repo *repository.Repository, rdb *redis.Client, facility FacilityService, logger *zap.Logger) ContextService {
	return &contextService{cfg: cfg, repo: repo, rdb: rdb, facility: facility, logger: logger}
}

func (s *contextService) GetStableContext(ctx context.Context, stableID, userID string) (*dto.StableContextResponse, error) {
	// membership gates the whole call; everything after it is best effort
	member, err := s.repo.Stable.GetMember(ctx, stableID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAMember
		}
		s.logger.Error("lookup membership failed", zap.String("stable_id", stableID), zap.Error(err))
		return nil, err
	}

	membership := toMemberResponse(member)
	resp := &dto.StableContextResponse{
		Membership: &membership,
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		degraded []string
	)
	fail := func(branch string, err error) {
		s.logger.Warn("context branch failed", zap.String("branch", branch), zap.Error(err))
		mu.Lock()
		degraded = append(degraded, branch)
		mu.Unlock()
	}

	wg.Add(3)

	go func() {
		defer wg.Done()
		stable, err := s.repo.Stable.GetByID(ctx, stableID)
		if err != nil {
			fail("stable", err)
			return
		}
		mu.Lock()
		resp.Stable = toStableResponse(stable)
		mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		facilities, err := s.facility.ListByStable(ctx, stableID)
		if err != nil {
			fail("facilities", err)
			return
		}
		mu.Lock()
		resp.Facilities = facilities
		mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		toggles, err := s.loadToggles(ctx, stableID)
		if err != nil {
			fail("toggles", err)
			return
		}
		mu.Lock()
		resp.Toggles = toggles
		mu.Unlock()
	}()

	wg.Wait()
	resp.Degraded = degraded
	return resp, nil
}

// loadToggles resolves the effective toggle map for a stable, reading
// through the cache when one is available. Stable-scoped rows override
// global defaults; the list comes back globals first, so overrides land
// last.
func (s *contextService) loadToggles(ctx context.Context, stableID string) (map[string]bool, error) {
	toggles, err := s.repo.FeatureToggle.ListForStable(ctx, stableID)
	if err != nil {
		return nil, err
	}

	result := make(map[string]bool, len(toggles))
	for _, t := range toggles {
		result[t.Key] = t.Enabled
	}

	if s.rdb != nil {
		for key, enabled := range result {
			s.rdb.SetToggle(ctx, stableID+":"+key, enabled, s.cfg.Feature.ToggleCacheTTL)
		}
	}
	return result, nil
}

// SetToggle persists a toggle and refreshes its cache entry. A nil stableID
// sets the global default.
func (s *contextService) SetToggle(ctx context.Context, stableID *string, key string, enabled bool) error {
	toggle := &model.FeatureToggle{
		StableID: stableID,
		Key:      key,
		Enabled:  enabled,
	}
	if err := s.repo.FeatureToggle.Upsert(ctx, toggle); err != nil {
		s.logger.Error("upsert toggle failed", zap.String("key", key), zap.Error(err))
		return err
	}

	if s.rdb != nil {
		if stableID != nil {
			s.rdb.SetToggle(ctx, *stableID+":"+key, enabled, s.cfg.Feature.ToggleCacheTTL)
		} else {
			// a global change can shadow any stable's cached value
			s.rdb.InvalidateToggles(ctx, "*")
		}
	}
	return nil
}
