package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "dealerhub-gin/internal/errors"
	"dealerhub-gin/internal/gateway"
	"dealerhub-gin/internal/models"
	"dealerhub-gin/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ===========================================================================
// Instance Service
// Onboarding and lifecycle of WhatsApp lines: registers the instance at
// the gateway, points its webhook at us and mirrors the connection state
// locally. The webhook pipeline keeps the mirror fresh afterwards.
// ===========================================================================

// webhookPath is where the gateway must deliver events for every instance
const webhookPath = "/api/v1/webhook/whatsapp"

// InstanceService manages WhatsApp instances
type InstanceService interface {
	// List returns all registered instances
	List(ctx context.Context) ([]models.WhatsAppInstance, error)

	// Get returns one instance by id
	Get(ctx context.Context, id uuid.UUID) (*models.WhatsAppInstance, error)

	// Create registers the instance at the gateway, subscribes our webhook
	// and persists the local mirror row
	Create(ctx context.Context, name string, userID *uuid.UUID) (*models.WhatsAppInstance, error)

	// GetQR asks the gateway for a pairing QR and stores it with its expiry
	GetQR(ctx context.Context, id uuid.UUID) (*models.WhatsAppInstance, error)

	// RefreshState polls the gateway for the line's state and mirrors it
	RefreshState(ctx context.Context, id uuid.UUID) (*models.WhatsAppInstance, error)

	// Logout terminates the session but keeps the instance registered
	Logout(ctx context.Context, id uuid.UUID) error

	// Delete removes the instance at the gateway and locally
	Delete(ctx context.Context, id uuid.UUID) error
}

// instanceService implements InstanceService
type instanceService struct {
	instanceRepo repositories.InstanceRepository
	client       *gateway.Client
	webhookBase  string
	logger       *zap.Logger
}

// NewInstanceService creates an InstanceService
func NewInstanceService(instanceRepo repositories.InstanceRepository, client *gateway.Client, webhookBase string, logger *zap.Logger) InstanceService {
	return &instanceService{
		instanceRepo: instanceRepo,
		client:       client,
		webhookBase:  webhookBase,
		logger:       logger,
	}
}

// List returns all registered instances
func (s *instanceService) List(ctx context.Context) ([]models.WhatsAppInstance, error) {
	return s.instanceRepo.FindAll(ctx)
}

// Get returns one instance by id
func (s *instanceService) Get(ctx context.Context, id uuid.UUID) (*models.WhatsAppInstance, error) {
	instance, err := s.instanceRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "instance not found")
		}
		return nil, err
	}
	return instance, nil
}

// Create registers a new instance at the gateway and mirrors it locally
func (s *instanceService) Create(ctx context.Context, name string, userID *uuid.UUID) (*models.WhatsAppInstance, error) {
	if name == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "instance name is required")
	}

	if _, err := s.instanceRepo.FindByName(ctx, name); err == nil {
		return nil, apperrors.Wrap(apperrors.ErrDuplicateEntry, "instance name already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	info, err := s.client.CreateInstance(ctx, name)
	if err != nil {
		return nil, err
	}

	webhookURL := s.webhookBase + webhookPath
	if err := s.client.SetWebhook(ctx, name, webhookURL); err != nil {
		// The instance exists at the gateway but will never call us back.
		// Surface the error so the operator retries instead of waiting on
		// a silent line.
		return nil, fmt.Errorf("register webhook: %w", err)
	}

	instance := &models.WhatsAppInstance{
		InstanceName: name,
		UserID:       userID,
		Status:       models.InstanceDisconnected,
		WebhookURL:   &webhookURL,
	}
	if info.InstanceID != "" {
		externalID := info.InstanceID
		instance.ExternalID = &externalID
	}

	if err := s.instanceRepo.Create(ctx, instance); err != nil {
		return nil, err
	}

	s.logger.Info("instance onboarded",
		zap.String("instance", name),
		zap.String("webhook_url", webhookURL),
	)
	return instance, nil
}

// GetQR fetches a fresh pairing QR from the gateway
func (s *instanceService) GetQR(ctx context.Context, id uuid.UUID) (*models.WhatsAppInstance, error) {
	instance, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	qr, err := s.client.Connect(ctx, instance.InstanceName)
	if err != nil {
		return nil, err
	}

	payload := qr.Base64
	if payload == "" {
		payload = qr.Code
	}
	if payload == "" {
		// already paired, nothing to scan
		return instance, nil
	}

	if err := s.instanceRepo.StoreQR(ctx, instance.InstanceName, payload, time.Now().Add(qrTTL)); err != nil {
		return nil, err
	}
	instance.SetQR(payload, qrTTL)
	return instance, nil
}

// RefreshState polls the gateway and mirrors the connection state
func (s *instanceService) RefreshState(ctx context.Context, id uuid.UUID) (*models.WhatsAppInstance, error) {
	instance, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	state, err := s.client.ConnectionState(ctx, instance.InstanceName)
	if err != nil {
		return nil, err
	}

	status := gateway.MapConnectionState(state)
	if status == "" || status == instance.Status {
		return instance, nil
	}

	if err := s.instanceRepo.UpdateConnection(ctx, instance.InstanceName, status, ""); err != nil {
		return nil, err
	}
	instance.Status = status
	return instance, nil
}

// Logout terminates the session but keeps the instance
func (s *instanceService) Logout(ctx context.Context, id uuid.UUID) error {
	instance, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.client.Logout(ctx, instance.InstanceName); err != nil {
		return err
	}
	return s.instanceRepo.UpdateConnection(ctx, instance.InstanceName, models.InstanceDisconnected, "")
}

// Delete removes the instance at the gateway and locally
func (s *instanceService) Delete(ctx context.Context, id uuid.UUID) error {
	instance, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.client.DeleteInstance(ctx, instance.InstanceName); err != nil {
		// Gateway-side delete failing should not strand the local row
		// forever; log and proceed with the local removal.
		s.logger.Warn("gateway delete failed, removing local row anyway",
			zap.String("instance", instance.InstanceName), zap.Error(err))
	}
	return s.instanceRepo.Delete(ctx, instance.ID)
}
