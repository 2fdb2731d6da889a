package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/uni-adm/assignment-api/internal/models"
	appErrors "github.com/uni-adm/assignment-api/pkg/errors"
)

type regimeRepository interface {
	FindActive(ctx context.Context, modality, dedication string) (*models.WorkloadRegime, error)
	List(ctx context.Context) ([]models.WorkloadRegime, error)
	Activate(ctx context.Context, regime *models.WorkloadRegime) error
	Deactivate(ctx context.Context, id string) error
}

// ActivateRegimeRequest describes a new regime activation.
type ActivateRegimeRequest struct {
	Modality       string `json:"modality" validate:"required"`
	Dedication     string `json:"dedication" validate:"required"`
	MinWeeklyHours int    `json:"min_weekly_hours" validate:"gte=0"`
	MaxWeeklyHours int    `json:"max_weekly_hours" validate:"gte=0"`
	MinAnnualHours int    `json:"min_annual_hours" validate:"gte=0"`
	MaxAnnualHours int    `json:"max_annual_hours" validate:"gte=0"`
}

// RegimeService resolves and administers workload regimes. Resolution is a
// hard dependency of assignment validation: no active regime for the pair
// rejects the write.
type RegimeService struct {
	regimes   regimeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegimeService creates a service instance.
func NewRegimeService(regimes regimeRepository, validate *validator.Validate, logger *zap.Logger) *RegimeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegimeService{regimes: regimes, validator: validate, logger: logger}
}

// Resolve returns the active regime for the pair or ErrRegimeNotFound.
func (s *RegimeService) Resolve(ctx context.Context, modality, dedication string) (*models.WorkloadRegime, error) {
	if modality == "" {
		return nil, appErrors.ErrMissingModality
	}
	if dedication == "" {
		return nil, appErrors.ErrMissingDedication
	}
	regime, err := s.regimes.FindActive(ctx, modality, dedication)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrRegimeNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve regime")
	}
	return regime, nil
}

// List returns every regime, active first.
func (s *RegimeService) List(ctx context.Context) ([]models.WorkloadRegime, error) {
	regimes, err := s.regimes.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list regimes")
	}
	return regimes, nil
}

// Activate installs a new active regime for the pair, replacing any prior
// active one. MaxConcurrent is derived from the dedication.
func (s *RegimeService) Activate(ctx context.Context, req ActivateRegimeRequest) (*models.WorkloadRegime, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid regime payload")
	}
	if req.MinWeeklyHours > req.MaxWeeklyHours {
		return nil, appErrors.Clone(appErrors.ErrValidation, "min weekly hours exceed max weekly hours")
	}
	if req.MinAnnualHours > req.MaxAnnualHours {
		return nil, appErrors.Clone(appErrors.ErrValidation, "min annual hours exceed max annual hours")
	}

	regime := &models.WorkloadRegime{
		Modality:       req.Modality,
		Dedication:     req.Dedication,
		MinWeeklyHours: req.MinWeeklyHours,
		MaxWeeklyHours: req.MaxWeeklyHours,
		MinAnnualHours: req.MinAnnualHours,
		MaxAnnualHours: req.MaxAnnualHours,
		MaxConcurrent:  models.MaxConcurrentFor(req.Dedication),
	}
	if err := s.regimes.Activate(ctx, regime); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate regime")
	}
	s.logger.Info("regime activated",
		zap.String("regime_id", regime.ID),
		zap.String("modality", regime.Modality),
		zap.String("dedication", regime.Dedication))
	return regime, nil
}

// Deactivate disables a regime without installing a replacement.
func (s *RegimeService) Deactivate(ctx context.Context, id string) error {
	if err := s.regimes.Deactivate(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "regime not found or already inactive")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate regime")
	}
	return nil
}
