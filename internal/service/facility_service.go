package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/maxton76/stall-bokning-sub008/internal/availability"
	"github.com/maxton76/stall-bokning-sub008/internal/dto"
	"github.com/maxton76/stall-bokning-sub008/internal/model"
	"github.com/maxton76/stall-bokning-sub008/internal/repository"
)

// ── facility module errors ──

var (
	ErrFacilityNotFound = errors.New("facility not found")
	ErrInvalidDate      = errors.New("date must be YYYY-MM-DD")
	ErrNoAvailability   = errors.New("facility has no availability schedule")
)

// FacilityService is the facility business interface. Schedule updates are
// validated with the availability package; findings come back as a list so
// the UI can render every problem at once, and are not errors.
type FacilityService interface {
	Create(ctx context.Context, stableID string, req *dto.CreateFacilityRequest, callerID string) (*dto.FacilityResponse, error)
	GetByID(ctx context.Context, id string) (*dto.FacilityResponse, error)
	ListByStable(ctx context.Context, stableID string) ([]dto.FacilityResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateFacilityRequest, callerID string) (*dto.FacilityResponse, error)
	Delete(ctx context.Context, id string, callerID string) error

	UpdateAvailability(ctx context.Context, id string, req *dto.UpdateAvailabilityRequest, callerID string) ([]availability.Issue, *dto.FacilityResponse, error)
	MigrateAvailability(ctx context.Context, id string, req *dto.MigrateAvailabilityRequest, callerID string) ([]availability.Issue, *dto.FacilityResponse, error)
	EffectiveBlocks(ctx context.Context, id string, date string) (*dto.EffectiveBlocksResponse, error)
	CheckRange(ctx context.Context, id string, date, from, to string) (*dto.RangeCheckResponse, error)
}

type facilityService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewFacilityService creates a FacilityService.
func NewFacilityService(repo *repository.Repository, logger *zap.Logger) FacilityService {
	return &facilityService{repo: repo, logger: logger}
}

func (s *facilityService) Create(ctx context.Context, stableID string, req *dto.CreateFacilityRequest, callerID string) (*dto.FacilityResponse, error) {
	facility := &model.Facility{
		StableID: stableID,
		Name:     req.Name,
		Kind:     model.FacilityKindArena,
		Capacity: 1,
	}
	if req.Kind != "" {
		facility.Kind = req.Kind
	}
	if req.Capacity > 0 {
		facility.Capacity = req.Capacity
	}
	facility.CreatedBy = &callerID
	facility.UpdatedBy = &callerID

	if err := s.repo.Facility.Create(ctx, facility); err != nil {
		s.logger.Error("create facility failed", zap.Error(err))
		return nil, err
	}

	return s.toFacilityResponse(facility), nil
}

func (s *facilityService) GetByID(ctx context.Context, id string) (*dto.FacilityResponse, error) {
	facility, err := s.getFacility(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toFacilityResponse(facility), nil
}

func (s *facilityService) ListByStable(ctx context.Context, stableID string) ([]dto.FacilityResponse, error) {
	facilities, err := s.repo.Facility.ListByStable(ctx, stableID)
	if err != nil {
		s.logger.Error("list facilities failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.FacilityResponse, 0, len(facilities))
	for i := range facilities {
		result = append(result, *s.toFacilityResponse(&facilities[i]))
	}
	return result, nil
}

func (s *facilityService) Update(ctx context.Context, id string, req *dto.UpdateFacilityRequest, callerID string) (*dto.FacilityResponse, error) {
	facility, err := s.getFacility(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		facility.Name = *req.Name
	}
	if req.Kind != nil {
		facility.Kind = *req.Kind
	}
	if req.Capacity != nil {
		facility.Capacity = *req.Capacity
	}
	facility.UpdatedBy = &callerID

	if err := s.repo.Facility.Update(ctx, facility); err != nil {
		s.logger.Error("update facility failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toFacilityResponse(facility), nil
}

func (s *facilityService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.getFacility(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Facility.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("delete facility failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── availability ──────────────────────

func (s *facilityService) UpdateAvailability(ctx context.Context, id string, req *dto.UpdateAvailabilityRequest, callerID string) ([]availability.Issue, *dto.FacilityResponse, error) {
	facility, err := s.getFacility(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	schedule := availability.Schedule{
		WeeklySchedule: req.WeeklySchedule,
		Exceptions:     req.Exceptions,
	}
	if issues := availability.ValidateSchedule(schedule); len(issues) > 0 {
		return issues, nil, nil
	}

	stored := model.AvailabilityJSON(schedule)
	facility.Availability = &stored
	facility.UpdatedBy = &callerID

	if err := s.repo.Facility.Update(ctx, facility); err != nil {
		s.logger.Error("update availability failed", zap.String("id", id), zap.Error(err))
		return nil, nil, err
	}

	return nil, s.toFacilityResponse(facility), nil
}

func (s *facilityService) MigrateAvailability(ctx context.Context, id string, req *dto.MigrateAvailabilityRequest, callerID string) ([]availability.Issue, *dto.FacilityResponse, error) {
	facility, err := s.getFacility(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	schedule := availability.MigrateLegacy(availability.LegacyAvailability{
		AvailableFrom: req.AvailableFrom,
		AvailableTo:   req.AvailableTo,
		DaysAvailable: req.DaysAvailable,
	})
	// a malformed legacy range surfaces here rather than at resolve time
	if issues := availability.ValidateSchedule(schedule); len(issues) > 0 {
		return issues, nil, nil
	}

	stored := model.AvailabilityJSON(schedule)
	facility.Availability = &stored
	facility.UpdatedBy = &callerID

	if err := s.repo.Facility.Update(ctx, facility); err != nil {
		s.logger.Error("migrate availability failed", zap.String("id", id), zap.Error(err))
		return nil, nil, err
	}

	return nil, s.toFacilityResponse(facility), nil
}

func (s *facilityService) EffectiveBlocks(ctx context.Context, id string, date string) (*dto.EffectiveBlocksResponse, error) {
	facility, schedule, err := s.getSchedule(ctx, id)
	if err != nil {
		return nil, err
	}

	day, err := s.parseLocalDate(ctx, facility, date)
	if err != nil {
		return nil, err
	}

	blocks := availability.EffectiveTimeBlocks(schedule, day)
	if blocks == nil {
		blocks = []availability.TimeBlock{}
	}
	return &dto.EffectiveBlocksResponse{Date: date, TimeBlocks: blocks}, nil
}

func (s *facilityService) CheckRange(ctx context.Context, id string, date, from, to string) (*dto.RangeCheckResponse, error) {
	facility, schedule, err := s.getSchedule(ctx, id)
	if err != nil {
		return nil, err
	}

	day, err := s.parseLocalDate(ctx, facility, date)
	if err != nil {
		return nil, err
	}

	blocks := availability.EffectiveTimeBlocks(schedule, day)
	return &dto.RangeCheckResponse{
		Available: availability.IsTimeRangeAvailable(blocks, from, to),
	}, nil
}

// ── helpers ──

func (s *facilityService) getFacility(ctx context.Context, id string) (*model.Facility, error) {
	facility, err := s.repo.Facility.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFacilityNotFound
		}
		s.logger.Error("lookup facility failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return facility, nil
}

func (s *facilityService) getSchedule(ctx context.Context, id string) (*model.Facility, availability.Schedule, error) {
	facility, err := s.getFacility(ctx, id)
	if err != nil {
		return nil, availability.Schedule{}, err
	}
	if facility.Availability == nil {
		return nil, availability.Schedule{}, ErrNoAvailability
	}
	return facility, availability.Schedule(*facility.Availability), nil
}

// parseLocalDate anchors the date at midnight in the stable's timezone, so
// weekday resolution cannot drift across timezones.
func (s *facilityService) parseLocalDate(ctx context.Context, facility *model.Facility, date string) (time.Time, error) {
	loc := time.Local
	if stable, err := s.repo.Stable.GetByID(ctx, facility.StableID); err == nil {
		if parsed, err := time.LoadLocation(stable.Timezone); err == nil {
			loc = parsed
		}
	}

	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return day, nil
}

func (s *facilityService) toFacilityResponse(facility *model.Facility) *dto.FacilityResponse {
	resp := &dto.FacilityResponse{
		ID:        facility.FacilityID,
		StableID:  facility.StableID,
		Name:      facility.Name,
		Kind:      facility.Kind,
		Capacity:  facility.Capacity,
		CreatedAt: dto.FormatTimestamp(facility.CreatedAt),
		UpdatedAt: dto.FormatTimestamp(facility.UpdatedAt),
	}
	if facility.Availability != nil {
		schedule := availability.Schedule(*facility.Availability)
		resp.Availability = &schedule
	}
	return resp
}
