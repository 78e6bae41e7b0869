package service

import (
	"go.uber.org/zap"

	"github.com/maxton76/stall-bokning-sub008/config"
	"github.com/maxton76/stall-bokning-sub008/internal/repository"
	"github.com/maxton76/stall-bokning-sub008/pkg/jwt"
	"github.com/maxton76/stall-bokning-sub008/pkg/redis"
)

// Service aggregates all services.
type Service struct {
	Auth      AuthService
	Stable    StableService
	Facility  FacilityService
	Routine   RoutineService
	Selection SelectionService
	Context   ContextService
	Export    ExportService
}

// NewService creates the service aggregate. rdb may be nil; redis-backed
// features degrade per the middleware/cache policies.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	facility := NewFacilityService(repo, logger)
	return &Service{
		Auth:      NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Stable:    NewStableService(repo, logger),
		Facility:  facility,
		Routine:   NewRoutineService(repo, logger),
		Selection: NewSelectionService(repo, logger),
		Context:   NewContextService(cfg, repo, rdb, facility, logger),
		Export:    NewExportService(repo, logger),
	}
}
