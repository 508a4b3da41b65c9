package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"dealerhub-gin/internal/assign"
	"dealerhub-gin/internal/gateway"
	"dealerhub-gin/internal/models"
	"dealerhub-gin/internal/realtime"
	"dealerhub-gin/internal/repositories"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// qrTTL how long a stored QR code stays scannable before the front-end
// must request a fresh one
const qrTTL = 60 * time.Second

// dedupTTL in-memory window for duplicate webhook deliveries. The unique
// index on (instance_id, message_id) is the real guarantee; the cache just
// saves the database round trip on immediate redeliveries.
const dedupTTL = 10 * time.Minute

// processor implements Processor
type processor struct {
	instanceRepo    repositories.InstanceRepository
	contactRepo     repositories.ContactRepository
	leadRepo        repositories.LeadRepository
	messageRepo     repositories.MessageRepository
	negotiationRepo repositories.NegotiationRepository
	assignmentRepo  repositories.LeadAssignmentRepository
	notificationRepo repositories.NotificationRepository
	interactionRepo repositories.InteractionLogRepository
	distributor     assign.Distributor
	publisher       realtime.Publisher
	dedup           *cache.Cache
	defaultCC       string
	logger          *zap.Logger
}

// NewProcessor creates the webhook event processor
func NewProcessor(
	instanceRepo repositories.InstanceRepository,
	contactRepo repositories.ContactRepository,
	leadRepo repositories.LeadRepository,
	messageRepo repositories.MessageRepository,
	negotiationRepo repositories.NegotiationRepository,
	assignmentRepo repositories.LeadAssignmentRepository,
	notificationRepo repositories.NotificationRepository,
	interactionRepo repositories.InteractionLogRepository,
	distributor assign.Distributor,
	publisher realtime.Publisher,
	defaultCC string,
	logger *zap.Logger,
) Processor {
	return &processor{
		instanceRepo:     instanceRepo,
		contactRepo:      contactRepo,
		leadRepo:         leadRepo,
		messageRepo:      messageRepo,
		negotiationRepo:  negotiationRepo,
		assignmentRepo:   assignmentRepo,
		notificationRepo: notificationRepo,
		interactionRepo:  interactionRepo,
		distributor:      distributor,
		publisher:        publisher,
		dedup:            cache.New(dedupTTL, 2*dedupTTL),
		defaultCC:        defaultCC,
		logger:           logger,
	}
}

// HandleEvent processes one webhook envelope
func (p *processor) HandleEvent(ctx context.Context, event *gateway.WebhookEvent) (*HandleResult, error) {
	kind := gateway.ClassifyEvent(event.Event)

	switch kind {
	case gateway.EventNewMessage:
		return p.handleMessage(ctx, event)
	case gateway.EventMessageStatus:
		return p.handleStatus(ctx, event)
	case gateway.EventConnectionChange:
		return p.handleConnection(ctx, event)
	case gateway.EventQRUpdate:
		return p.handleQR(ctx, event)
	default:
		p.logger.Debug("ignoring unhandled webhook event",
			zap.String("event", event.Event),
			zap.String("instance", event.Instance),
		)
		return &HandleResult{Kind: kind}, nil
	}
}

// ===========================================================================
// messages.upsert
// ===========================================================================

func (p *processor) handleMessage(ctx context.Context, event *gateway.WebhookEvent) (*HandleResult, error) {
	result := &HandleResult{Kind: gateway.EventNewMessage}

	key := event.Data.Key
	if key == nil || key.ID == "" {
		p.logger.Warn("message event without a key, dropping",
			zap.String("instance", event.Instance))
		return result, nil
	}

	dedupKey := event.Instance + "|" + key.ID
	if _, seen := p.dedup.Get(dedupKey); seen {
		result.Handled = true
		result.Duplicate = true
		return result, nil
	}

	instance, err := p.instanceRepo.FindByName(ctx, event.Instance)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p.logger.Warn("message for unknown instance, dropping",
				zap.String("instance", event.Instance))
			return result, nil
		}
		return nil, err
	}

	if _, err := p.messageRepo.FindByExternalID(ctx, instance.ID, key.ID); err == nil {
		p.dedup.Set(dedupKey, struct{}{}, cache.DefaultExpiration)
		result.Handled = true
		result.Duplicate = true
		return result, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	identity := gateway.ResolveIdentity(key, event.Sender, p.defaultCC)
	ts := time.Now()
	if event.Data.MessageTimestamp > 0 {
		ts = time.Unix(event.Data.MessageTimestamp, 0)
	}

	if key.FromMe {
		return p.handleOutboundEcho(ctx, event, instance, identity, ts, result)
	}
	return p.handleInbound(ctx, event, instance, identity, ts, result)
}

// handleInbound runs the full resolution pipeline for a customer message:
// contact and lead lookup, lead creation with round-robin assignment,
// message persistence and the CRM side effects.
func (p *processor) handleInbound(ctx context.Context, event *gateway.WebhookEvent, instance *models.WhatsAppInstance, identity gateway.Identity, ts time.Time, result *HandleResult) (*HandleResult, error) {
	contact, err := p.lookupContact(ctx, identity)
	if err != nil {
		return nil, err
	}

	lead, err := p.lookupLead(ctx, identity, contact)
	if err != nil {
		return nil, err
	}

	// A contact created before its phone resolved can miss both phone
	// lookups while its lead still matches a variant. Reuse that contact
	// instead of minting a second one for the same person.
	if contact == nil && lead != nil {
		contact, err = p.contactByLead(ctx, lead.ID)
		if err != nil {
			return nil, err
		}
	}

	// Unresolvable sender: no phone and nothing on file. Storing it would
	// mint a junk contact keyed by an opaque id, so drop instead.
	if identity.Phone == "" && lead == nil && contact == nil {
		p.logger.Warn("inbound message with unresolvable identity, dropping",
			zap.String("instance", event.Instance),
			zap.String("remote_jid", identity.RemoteJID),
			zap.String("message_id", event.Data.Key.ID),
		)
		return result, nil
	}

	if lead == nil && identity.Phone != "" {
		lead, err = p.createLead(ctx, identity.Phone, event.Data.PushName)
		if err != nil {
			return nil, err
		}
		result.LeadCreated = true
		result.AssignedTo = lead.AssignedTo
	}

	if contact == nil {
		contact = p.buildContact(identity, event.Data.PushName, lead, ts)
		if err := p.contactRepo.Create(ctx, contact); err != nil {
			return nil, err
		}
	} else {
		if lead != nil && contact.LeadID == nil {
			if err := p.contactRepo.LinkLead(ctx, contact.ID, lead.ID); err != nil {
				p.logger.Warn("failed to backfill contact lead link", zap.Error(err))
			}
		}
		if err := p.contactRepo.RecordInbound(ctx, contact.ID, ts); err != nil {
			p.logger.Warn("failed to bump unread counter", zap.Error(err))
		}
	}

	msg, duplicate, err := p.storeMessage(ctx, event, instance, contact, lead, identity, models.DirectionIn, models.StatusDelivered, ts)
	if err != nil {
		return nil, err
	}
	result.Handled = true
	result.Duplicate = duplicate
	result.ContactID = &contact.ID
	if lead != nil {
		result.LeadID = &lead.ID
	}
	if duplicate {
		return result, nil
	}

	p.recordSideEffects(ctx, contact, lead, result.LeadCreated, event.Data.Text())
	p.publishMessage(msg, contact)
	if result.LeadCreated {
		go p.publisher.PublishNewLead(&realtime.LeadEvent{
			LeadID:     lead.ID,
			Phone:      lead.Phone,
			Name:       lead.Name,
			AssignedTo: lead.AssignedTo,
		})
	}

	return result, nil
}

// handleOutboundEcho stores the echo of a message our side sent. Echoes
// never create or assign leads; they only land the message and clear the
// contact's unread counter.
func (p *processor) handleOutboundEcho(ctx context.Context, event *gateway.WebhookEvent, instance *models.WhatsAppInstance, identity gateway.Identity, ts time.Time, result *HandleResult) (*HandleResult, error) {
	contact, err := p.lookupContact(ctx, identity)
	if err != nil {
		return nil, err
	}

	if contact == nil {
		// Salesperson opened the conversation from the phone itself
		contact = p.buildContact(identity, "", nil, ts)
		contact.UnreadCount = 0
		if err := p.contactRepo.Create(ctx, contact); err != nil {
			return nil, err
		}
	}

	var lead *models.Lead
	if contact.LeadID != nil {
		lead, err = p.leadRepo.FindByID(ctx, *contact.LeadID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	msg, duplicate, err := p.storeMessage(ctx, event, instance, contact, lead, identity, models.DirectionOut, models.StatusSent, ts)
	if err != nil {
		return nil, err
	}
	result.Handled = true
	result.Duplicate = duplicate
	result.ContactID = &contact.ID
	if lead != nil {
		result.LeadID = &lead.ID
	}
	if duplicate {
		return result, nil
	}

	if err := p.contactRepo.RecordOutbound(ctx, contact.ID, ts); err != nil {
		p.logger.Warn("failed to reset unread counter", zap.Error(err))
	}
	p.publishMessage(msg, contact)

	return result, nil
}

// lookupContact finds the contact for an identity: canonical phone first,
// then the raw channel-id digits for contacts stored before their phone
// resolved. Not finding one is not an error.
func (p *processor) lookupContact(ctx context.Context, identity gateway.Identity) (*models.Contact, error) {
	if identity.Phone != "" {
		contact, err := p.contactRepo.FindByPhone(ctx, identity.Phone)
		if err == nil {
			return contact, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if digits := gateway.ChannelDigits(identity.RemoteJID); digits != "" {
		contact, err := p.contactRepo.FindByPhone(ctx, digits)
		if err == nil {
			return contact, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return nil, nil
}

// contactByLead finds the contact already linked to a lead. Not finding
// one is not an error.
func (p *processor) contactByLead(ctx context.Context, leadID uuid.UUID) (*models.Contact, error) {
	contact, err := p.contactRepo.FindByLeadID(ctx, leadID)
	if err == nil {
		return contact, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return nil, nil
}

// lookupLead finds the lead for an identity: by phone variants first, then
// through the contact's existing link.
func (p *processor) lookupLead(ctx context.Context, identity gateway.Identity, contact *models.Contact) (*models.Lead, error) {
	if identity.Phone != "" {
		lead, err := p.leadRepo.FindByAnyPhone(ctx, gateway.PhoneVariants(identity.Phone, p.defaultCC))
		if err == nil {
			return lead, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if contact != nil && contact.LeadID != nil {
		lead, err := p.leadRepo.FindByID(ctx, *contact.LeadID)
		if err == nil {
			return lead, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return nil, nil
}

// createLead creates a lead for a first-contact phone, routes it through
// the round-robin pool and opens its negotiation. An assigner failure
// leaves the lead unassigned instead of losing it.
func (p *processor) createLead(ctx context.Context, phone, pushName string) (*models.Lead, error) {
	assignedTo, err := p.distributor.Assign(ctx)
	if err != nil {
		p.logger.Error("round-robin assignment failed, creating lead unassigned", zap.Error(err))
		assignedTo = nil
	}

	name := pushName
	if name == "" {
		name = phone
	}

	lead := &models.Lead{
		Phone:      phone,
		Name:       name,
		Source:     models.SourceWhatsApp,
		Status:     models.LeadNovo,
		AssignedTo: assignedTo,
	}
	if err := p.leadRepo.Create(ctx, lead); err != nil {
		return nil, err
	}

	negotiation := &models.Negotiation{
		LeadID:        lead.ID,
		SalespersonID: assignedTo,
		Status:        models.NegotiationAberta,
	}
	if err := p.negotiationRepo.Create(ctx, negotiation); err != nil {
		p.logger.Warn("failed to open negotiation for new lead",
			zap.String("lead_id", lead.ID.String()), zap.Error(err))
	}

	if assignedTo != nil {
		audit := &models.LeadAssignment{
			LeadID:         lead.ID,
			UserID:         *assignedTo,
			AssignmentType: models.AssignmentAuto,
			Reason:         "round-robin",
			AssignedAt:     time.Now(),
			IsActive:       true,
		}
		if err := p.assignmentRepo.Create(ctx, audit); err != nil {
			p.logger.Warn("failed to record assignment audit",
				zap.String("lead_id", lead.ID.String()), zap.Error(err))
		}
	}

	p.logger.Info("lead created from inbound message",
		zap.String("lead_id", lead.ID.String()),
		zap.String("phone", phone),
		zap.Bool("assigned", assignedTo != nil),
	)
	return lead, nil
}

// buildContact assembles a new contact from the resolved identity
func (p *processor) buildContact(identity gateway.Identity, pushName string, lead *models.Lead, ts time.Time) *models.Contact {
	contact := &models.Contact{
		RemoteJID:     identity.RemoteJID,
		LastMessageAt: &ts,
		UnreadCount:   1,
	}
	if identity.Phone != "" {
		phone := identity.Phone
		contact.Phone = &phone
	} else if digits := gateway.ChannelDigits(identity.RemoteJID); digits != "" {
		contact.Phone = &digits
	}
	if pushName != "" {
		name := pushName
		contact.Name = &name
	}
	if lead != nil {
		contact.LeadID = &lead.ID
	}
	return contact
}

// storeMessage inserts the message row. A duplicate (instance, message id)
// pair from a concurrent redelivery is treated as already processed.
func (p *processor) storeMessage(ctx context.Context, event *gateway.WebhookEvent, instance *models.WhatsAppInstance, contact *models.Contact, lead *models.Lead, identity gateway.Identity, direction models.MessageDirection, status models.MessageStatus, ts time.Time) (*models.Message, bool, error) {
	msg := &models.Message{
		InstanceID: instance.ID,
		ContactID:  contact.ID,
		RemoteJID:  identity.RemoteJID,
		MessageID:  event.Data.Key.ID,
		Direction:  direction,
		Status:     status,
		Timestamp:  ts,
	}
	if text := event.Data.Text(); text != "" {
		msg.Content = &text
	}
	if lead != nil {
		msg.LeadID = &lead.ID
	}

	err := p.messageRepo.Create(ctx, msg)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		p.logger.Debug("duplicate message delivery, already stored",
			zap.String("message_id", msg.MessageID))
		p.dedup.Set(event.Instance+"|"+msg.MessageID, struct{}{}, cache.DefaultExpiration)
		return msg, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	p.dedup.Set(event.Instance+"|"+msg.MessageID, struct{}{}, cache.DefaultExpiration)
	return msg, false, nil
}

// recordSideEffects writes the CRM timeline entry and the salesperson
// notification. Failures here are logged, never fatal: the message is
// already persisted.
func (p *processor) recordSideEffects(ctx context.Context, contact *models.Contact, lead *models.Lead, leadCreated bool, text string) {
	entry := &models.InteractionLog{
		ContactID:   contact.ID,
		Kind:        models.InteractionMessageIn,
		Description: truncate(text, 500),
	}
	if lead != nil {
		entry.LeadID = &lead.ID
	}
	if err := p.interactionRepo.Create(ctx, entry); err != nil {
		p.logger.Warn("failed to write interaction log", zap.Error(err))
	}

	if lead == nil || lead.AssignedTo == nil {
		return
	}

	notification := &models.Notification{
		UserID: *lead.AssignedTo,
		LeadID: &lead.ID,
	}
	if leadCreated {
		notification.Type = models.NotificationNewLead
		notification.Title = "Novo lead"
		notification.Body = fmt.Sprintf("%s chegou pelo WhatsApp", lead.Name)
	} else {
		notification.Type = models.NotificationNewMessage
		notification.Title = "Nova mensagem"
		notification.Body = fmt.Sprintf("%s enviou uma mensagem", lead.Name)
	}
	if err := p.notificationRepo.Create(ctx, notification); err != nil {
		p.logger.Warn("failed to create notification", zap.Error(err))
	}
}

// publishMessage fans the stored message out to the realtime layer
func (p *processor) publishMessage(msg *models.Message, contact *models.Contact) {
	event := &realtime.MessageEvent{
		MessageID: msg.ID,
		ContactID: contact.ID,
		Direction: string(msg.Direction),
		CreatedAt: msg.Timestamp,
	}
	if msg.Content != nil {
		event.Content = *msg.Content
	}
	if contact.Name != nil {
		event.ContactName = *contact.Name
	}
	go p.publisher.PublishNewMessage(event)
}

// ===========================================================================
// messages.update
// ===========================================================================

func (p *processor) handleStatus(ctx context.Context, event *gateway.WebhookEvent) (*HandleResult, error) {
	result := &HandleResult{Kind: gateway.EventMessageStatus}

	key := event.Data.Key
	if key == nil || key.ID == "" {
		p.logger.Debug("status event without a key, dropping")
		return result, nil
	}

	status := gateway.MapMessageStatus(event.Data.Status)
	if status == "" {
		// provider-internal states we do not track
		result.Handled = true
		return result, nil
	}

	// Receipts can arrive out of order; the guard set makes a stale
	// "delivered" after "read" a no-op instead of a downgrade.
	rows, err := p.messageRepo.AdvanceStatus(ctx, key.ID, status, models.StatusesBelow(status))
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		p.logger.Debug("status receipt was stale or message unknown",
			zap.String("message_id", key.ID),
			zap.String("status", string(status)),
		)
	}

	result.Handled = true
	return result, nil
}

// ===========================================================================
// connection.update
// ===========================================================================

func (p *processor) handleConnection(ctx context.Context, event *gateway.WebhookEvent) (*HandleResult, error) {
	result := &HandleResult{Kind: gateway.EventConnectionChange}

	status := gateway.MapConnectionState(event.Data.State)
	if status == "" {
		p.logger.Debug("unmapped connection state, dropping",
			zap.String("state", event.Data.State))
		return result, nil
	}

	phone := ""
	if event.Data.WUID != "" {
		phone = gateway.NormalizePhone(event.Data.WUID, p.defaultCC)
	}

	if err := p.instanceRepo.UpdateConnection(ctx, event.Instance, status, phone); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p.logger.Warn("connection update for unknown instance",
				zap.String("instance", event.Instance))
			return result, nil
		}
		return nil, err
	}

	p.logger.Info("instance connection changed",
		zap.String("instance", event.Instance),
		zap.String("status", string(status)),
	)

	go p.publisher.PublishConnectionUpdate(&realtime.ConnectionEvent{
		InstanceName: event.Instance,
		Status:       string(status),
	})

	result.Handled = true
	return result, nil
}

// ===========================================================================
// qrcode.updated
// ===========================================================================

func (p *processor) handleQR(ctx context.Context, event *gateway.WebhookEvent) (*HandleResult, error) {
	result := &HandleResult{Kind: gateway.EventQRUpdate}

	if event.Data.QRCode == nil {
		p.logger.Debug("qr event without payload, dropping",
			zap.String("instance", event.Instance))
		return result, nil
	}
	qr := event.Data.QRCode.Base64
	if qr == "" {
		qr = event.Data.QRCode.Code
	}
	if qr == "" {
		return result, nil
	}

	if err := p.instanceRepo.StoreQR(ctx, event.Instance, qr, time.Now().Add(qrTTL)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p.logger.Warn("qr update for unknown instance",
				zap.String("instance", event.Instance))
			return result, nil
		}
		return nil, err
	}

	go p.publisher.PublishConnectionUpdate(&realtime.ConnectionEvent{
		InstanceName: event.Instance,
		Status:       string(models.InstanceQRPending),
	})

	result.Handled = true
	return result, nil
}

// truncate limits s to max bytes for bounded columns, backing up so a
// multi-byte rune is never split mid-sequence
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
