package services

import (
	"context"
	"errors"

	apperrors "dealerhub-gin/internal/errors"
	"dealerhub-gin/internal/models"
	"dealerhub-gin/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ===========================================================================
// Chat Service
// Read side of the CRM inbox: conversations, message history, leads and
// notifications. Everything here is query-only except the unread reset
// when a salesperson opens a conversation.
// ===========================================================================

// ChatService exposes the CRM inbox queries
type ChatService interface {
	// ListContacts returns the inbox ordered by latest activity
	ListContacts(ctx context.Context, opts repositories.FindOptions) ([]models.Contact, int64, error)

	// GetMessages returns a contact's history, marking the conversation
	// read when markRead is set
	GetMessages(ctx context.Context, contactID uuid.UUID, opts repositories.FindOptions, markRead bool) ([]models.Message, int64, error)

	// ListLeads returns leads for the pipeline board
	ListLeads(ctx context.Context, opts repositories.FindOptions) ([]models.Lead, int64, error)

	// GetLead returns one lead by id
	GetLead(ctx context.Context, id uuid.UUID) (*models.Lead, error)

	// ListNotifications returns a user's notifications, newest first
	ListNotifications(ctx context.Context, userID uuid.UUID, opts repositories.FindOptions) ([]models.Notification, int64, error)
}

// chatService implements ChatService
type chatService struct {
	contactRepo      repositories.ContactRepository
	messageRepo      repositories.MessageRepository
	leadRepo         repositories.LeadRepository
	notificationRepo repositories.NotificationRepository
	logger           *zap.Logger
}

// NewChatService creates a ChatService
func NewChatService(
	contactRepo repositories.ContactRepository,
	messageRepo repositories.MessageRepository,
	leadRepo repositories.LeadRepository,
	notificationRepo repositories.NotificationRepository,
	logger *zap.Logger,
) ChatService {
	return &chatService{
		contactRepo:      contactRepo,
		messageRepo:      messageRepo,
		leadRepo:         leadRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// ListContacts returns the inbox ordered by latest activity
func (s *chatService) ListContacts(ctx context.Context, opts repositories.FindOptions) ([]models.Contact, int64, error) {
	return s.contactRepo.FindAll(ctx, opts)
}

// GetMessages returns a contact's history
func (s *chatService) GetMessages(ctx context.Context, contactID uuid.UUID, opts repositories.FindOptions, markRead bool) ([]models.Message, int64, error) {
	if _, err := s.contactRepo.FindByID(ctx, contactID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperrors.Wrap(apperrors.ErrNotFound, "contact not found")
		}
		return nil, 0, err
	}

	messages, total, err := s.messageRepo.FindByContact(ctx, contactID, opts)
	if err != nil {
		return nil, 0, err
	}

	if markRead {
		if err := s.contactRepo.ResetUnread(ctx, contactID); err != nil {
			s.logger.Warn("failed to mark conversation read",
				zap.String("contact_id", contactID.String()), zap.Error(err))
		}
	}
	return messages, total, nil
}

// ListLeads returns leads for the pipeline board
func (s *chatService) ListLeads(ctx context.Context, opts repositories.FindOptions) ([]models.Lead, int64, error) {
	return s.leadRepo.FindAll(ctx, opts)
}

// GetLead returns one lead by id
func (s *chatService) GetLead(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	lead, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "lead not found")
		}
		return nil, err
	}
	return lead, nil
}

// ListNotifications returns a user's notifications, newest first
func (s *chatService) ListNotifications(ctx context.Context, userID uuid.UUID, opts repositories.FindOptions) ([]models.Notification, int64, error) {
	return s.notificationRepo.FindByUser(ctx, userID, opts)
}
