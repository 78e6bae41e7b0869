package repository

import "gorm.io/gorm"

// Repository aggregates all repositories.
type Repository struct {
	User          UserRepository
	Stable        StableRepository
	Facility      FacilityRepository
	RoutineSlot   RoutineSlotRepository
	Selection     SelectionRepository
	FeatureToggle FeatureToggleRepository
}

// NewRepository creates the repository aggregate.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:          NewUserRepo(db),
		Stable:        NewStableRepo(db),
		Facility:      NewFacilityRepo(db),
		RoutineSlot:   NewRoutineSlotRepo(db),
		Selection:     NewSelectionRepo(db),
		FeatureToggle: NewFeatureToggleRepo(db),
	}
}
