package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/drivelane/fi-decision-api/internal/dto"
	"github.com/drivelane/fi-decision-api/internal/models"
	appErrors "github.com/drivelane/fi-decision-api/pkg/errors"
)

type clientRepository interface {
	Create(ctx context.Context, client *models.FIClient) error
	FindByID(ctx context.Context, tenantID, id string) (*models.FIClient, error)
	Update(ctx context.Context, client *models.FIClient) error
	List(ctx context.Context, tenantID string, filter models.FIClientFilter) ([]models.FIClient, int, error)
}

// ClientService manages the client records financing requests refer to.
// Clients are never auto-deleted; updates are always explicit.
type ClientService struct {
	repo      clientRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClientService constructs the service.
func NewClientService(repo clientRepository, validate *validator.Validate, logger *zap.Logger) *ClientService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{repo: repo, validator: validate, logger: logger}
}

// Create registers a client.
func (s *ClientService) Create(ctx context.Context, tenantID, actor string, req dto.CreateFIClientRequest) (*models.FIClient, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid client payload")
	}
	client := &models.FIClient{
		TenantID:     tenantID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		VehiclePrice: req.VehiclePrice,
		DownPayment:  req.DownPayment,
		TradeInValue: req.TradeInValue,
		CreatedBy:    actor,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create client")
	}
	return client, nil
}

// Get loads one client.
func (s *ClientService) Get(ctx context.Context, tenantID, id string) (*models.FIClient, error) {
	client, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}
	return client, nil
}

// List returns clients matching the filter plus the total count.
func (s *ClientService) List(ctx context.Context, tenantID string, filter models.FIClientFilter) ([]models.FIClient, int, error) {
	clients, total, err := s.repo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list clients")
	}
	return clients, total, nil
}

// Update applies an explicit client update.
func (s *ClientService) Update(ctx context.Context, tenantID, id string, req dto.UpdateFIClientRequest) (*models.FIClient, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid client payload")
	}
	client, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.FirstName != nil {
		client.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		client.LastName = *req.LastName
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.VehiclePrice != nil {
		client.VehiclePrice = req.VehiclePrice
	}
	if req.DownPayment != nil {
		client.DownPayment = req.DownPayment
	}
	if req.TradeInValue != nil {
		client.TradeInValue = req.TradeInValue
	}
	if err := s.repo.Update(ctx, client); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update client")
	}
	return client, nil
}
