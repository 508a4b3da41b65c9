package services

import (
	"context"
	"testing"
	"time"
	"unicode/utf8"

	"dealerhub-gin/internal/gateway"
	"dealerhub-gin/internal/models"
	"dealerhub-gin/internal/realtime"
	"dealerhub-gin/internal/repositories"
	"dealerhub-gin/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ===========================================================================
// In-memory fakes
// The pipeline is exercised against map-backed repositories so the tests
// cover the orchestration, not GORM.
// ===========================================================================

type fakeInstanceRepo struct {
	byName map[string]*models.WhatsAppInstance
}

func newFakeInstanceRepo() *fakeInstanceRepo {
	return &fakeInstanceRepo{byName: make(map[string]*models.WhatsAppInstance)}
}

func (f *fakeInstanceRepo) add(name string) *models.WhatsAppInstance {
	inst := &models.WhatsAppInstance{InstanceName: name, Status: models.InstanceConnected}
	inst.ID = uuid.New()
	f.byName[name] = inst
	return inst
}

func (f *fakeInstanceRepo) FindByID(_ context.Context, id uuid.UUID) (*models.WhatsAppInstance, error) {
	for _, inst := range f.byName {
		if inst.ID == id {
			return inst, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeInstanceRepo) FindByName(_ context.Context, name string) (*models.WhatsAppInstance, error) {
	if inst, ok := f.byName[name]; ok {
		return inst, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeInstanceRepo) FindAll(_ context.Context) ([]models.WhatsAppInstance, error) {
	return nil, nil
}

func (f *fakeInstanceRepo) Create(_ context.Context, inst *models.WhatsAppInstance) error {
	inst.ID = uuid.New()
	f.byName[inst.InstanceName] = inst
	return nil
}

func (f *fakeInstanceRepo) Update(_ context.Context, inst *models.WhatsAppInstance) error {
	f.byName[inst.InstanceName] = inst
	return nil
}

func (f *fakeInstanceRepo) Delete(_ context.Context, id uuid.UUID) error { return nil }

func (f *fakeInstanceRepo) UpdateConnection(_ context.Context, name string, status models.InstanceStatus, phone string) error {
	inst, ok := f.byName[name]
	if !ok {
		return nil
	}
	inst.Status = status
	if phone != "" {
		inst.PhoneNumber = &phone
	}
	if status == models.InstanceConnected || status == models.InstanceDisconnected {
		inst.ClearQR()
	}
	return nil
}

func (f *fakeInstanceRepo) StoreQR(_ context.Context, name, qr string, expiresAt time.Time) error {
	inst, ok := f.byName[name]
	if !ok {
		return nil
	}
	inst.QRCode = &qr
	inst.QRExpiresAt = &expiresAt
	inst.Status = models.InstanceQRPending
	return nil
}

type fakeContactRepo struct {
	contacts []*models.Contact
}

func (f *fakeContactRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Contact, error) {
	for _, c := range f.contacts {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeContactRepo) FindByPhone(_ context.Context, phone string) (*models.Contact, error) {
	for _, c := range f.contacts {
		if c.Phone != nil && *c.Phone == phone {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeContactRepo) FindByLeadID(_ context.Context, leadID uuid.UUID) (*models.Contact, error) {
	for _, c := range f.contacts {
		if c.LeadID != nil && *c.LeadID == leadID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeContactRepo) FindAll(_ context.Context, _ repositories.FindOptions) ([]models.Contact, int64, error) {
	return nil, 0, nil
}

func (f *fakeContactRepo) Create(_ context.Context, c *models.Contact) error {
	c.ID = uuid.New()
	f.contacts = append(f.contacts, c)
	return nil
}

func (f *fakeContactRepo) Update(_ context.Context, c *models.Contact) error { return nil }

func (f *fakeContactRepo) RecordInbound(_ context.Context, id uuid.UUID, at time.Time) error {
	for _, c := range f.contacts {
		if c.ID == id {
			c.UnreadCount++
			c.LastMessageAt = &at
		}
	}
	return nil
}

func (f *fakeContactRepo) LinkLead(_ context.Context, id, leadID uuid.UUID) error {
	for _, c := range f.contacts {
		if c.ID == id && c.LeadID == nil {
			c.LeadID = &leadID
		}
	}
	return nil
}

func (f *fakeContactRepo) RecordOutbound(_ context.Context, id uuid.UUID, at time.Time) error {
	for _, c := range f.contacts {
		if c.ID == id {
			c.UnreadCount = 0
			c.LastMessageAt = &at
		}
	}
	return nil
}

func (f *fakeContactRepo) ResetUnread(_ context.Context, id uuid.UUID) error {
	for _, c := range f.contacts {
		if c.ID == id {
			c.UnreadCount = 0
		}
	}
	return nil
}

type fakeLeadRepo struct {
	leads []*models.Lead
}

func (f *fakeLeadRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Lead, error) {
	for _, l := range f.leads {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeadRepo) FindByAnyPhone(_ context.Context, variants []string) (*models.Lead, error) {
	for _, phone := range variants {
		for _, l := range f.leads {
			if l.Phone == phone {
				return l, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeadRepo) FindAll(_ context.Context, _ repositories.FindOptions) ([]models.Lead, int64, error) {
	return nil, 0, nil
}

func (f *fakeLeadRepo) Create(_ context.Context, l *models.Lead) error {
	l.ID = uuid.New()
	f.leads = append(f.leads, l)
	return nil
}

func (f *fakeLeadRepo) Update(_ context.Context, l *models.Lead) error { return nil }

type fakeMessageRepo struct {
	messages []*models.Message
}

func (f *fakeMessageRepo) FindByExternalID(_ context.Context, instanceID uuid.UUID, messageID string) (*models.Message, error) {
	for _, m := range f.messages {
		if m.InstanceID == instanceID && m.MessageID == messageID {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMessageRepo) FindByContact(_ context.Context, _ uuid.UUID, _ repositories.FindOptions) ([]models.Message, int64, error) {
	return nil, 0, nil
}

func (f *fakeMessageRepo) Create(_ context.Context, m *models.Message) error {
	for _, existing := range f.messages {
		if existing.InstanceID == m.InstanceID && existing.MessageID == m.MessageID {
			return gorm.ErrDuplicatedKey
		}
	}
	m.ID = uuid.New()
	f.messages = append(f.messages, m)
	return nil
}

func (f *fakeMessageRepo) AdvanceStatus(_ context.Context, messageID string, status models.MessageStatus, allowedCurrent []models.MessageStatus) (int64, error) {
	var rows int64
	for _, m := range f.messages {
		if m.MessageID != messageID {
			continue
		}
		for _, allowed := range allowedCurrent {
			if m.Status == allowed {
				m.Status = status
				rows++
				break
			}
		}
	}
	return rows, nil
}

type fakeNegotiationRepo struct{ created []*models.Negotiation }

func (f *fakeNegotiationRepo) Create(_ context.Context, n *models.Negotiation) error {
	n.ID = uuid.New()
	f.created = append(f.created, n)
	return nil
}

type fakeAssignmentRepo struct{ created []*models.LeadAssignment }

func (f *fakeAssignmentRepo) Create(_ context.Context, a *models.LeadAssignment) error {
	a.ID = uuid.New()
	f.created = append(f.created, a)
	return nil
}

type fakeNotificationRepo struct{ created []*models.Notification }

func (f *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	n.ID = uuid.New()
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationRepo) FindByUser(_ context.Context, _ uuid.UUID, _ repositories.FindOptions) ([]models.Notification, int64, error) {
	return nil, 0, nil
}

type fakeInteractionRepo struct{ created []*models.InteractionLog }

func (f *fakeInteractionRepo) Create(_ context.Context, entry *models.InteractionLog) error {
	entry.ID = uuid.New()
	f.created = append(f.created, entry)
	return nil
}

// fakeDistributor hands out a fixed salesperson and counts calls
type fakeDistributor struct {
	salesperson *uuid.UUID
	calls       int
}

func (f *fakeDistributor) Assign(_ context.Context) (*uuid.UUID, error) {
	f.calls++
	return f.salesperson, nil
}

// ===========================================================================
// Fixture
// ===========================================================================

type fixture struct {
	processor     Processor
	instances     *fakeInstanceRepo
	contacts      *fakeContactRepo
	leads         *fakeLeadRepo
	messages      *fakeMessageRepo
	negotiations  *fakeNegotiationRepo
	assignments   *fakeAssignmentRepo
	notifications *fakeNotificationRepo
	interactions  *fakeInteractionRepo
	distributor   *fakeDistributor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	salesperson := uuid.New()
	f := &fixture{
		instances:     newFakeInstanceRepo(),
		contacts:      &fakeContactRepo{},
		leads:         &fakeLeadRepo{},
		messages:      &fakeMessageRepo{},
		negotiations:  &fakeNegotiationRepo{},
		assignments:   &fakeAssignmentRepo{},
		notifications: &fakeNotificationRepo{},
		interactions:  &fakeInteractionRepo{},
		distributor:   &fakeDistributor{salesperson: &salesperson},
	}
	f.instances.add("dev-line")

	f.processor = NewProcessor(
		f.instances,
		f.contacts,
		f.leads,
		f.messages,
		f.negotiations,
		f.assignments,
		f.notifications,
		f.interactions,
		f.distributor,
		realtime.NewNoopPublisher(),
		"55",
		logger.NewNop(),
	)
	return f
}

func inboundEvent(messageID, remoteJid, text string) *gateway.WebhookEvent {
	return &gateway.WebhookEvent{
		Event:    "messages.upsert",
		Instance: "dev-line",
		Data: gateway.EventData{
			Key:              &gateway.MessageKey{RemoteJid: remoteJid, ID: messageID},
			PushName:         "Cliente Teste",
			Message:          &gateway.MessageContent{Conversation: text},
			MessageTimestamp: time.Now().Unix(),
		},
	}
}

// ===========================================================================
// messages.upsert
// ===========================================================================

func TestInboundFirstContactCreatesLead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.processor.HandleEvent(ctx, inboundEvent("M1", "5511999887766@s.whatsapp.net", "quero ver o civic"))
	require.NoError(t, err)
	require.True(t, result.Handled)
	assert.False(t, result.Duplicate)
	assert.True(t, result.LeadCreated)
	require.NotNil(t, result.AssignedTo)
	assert.Equal(t, *f.distributor.salesperson, *result.AssignedTo)

	require.Len(t, f.leads.leads, 1)
	lead := f.leads.leads[0]
	assert.Equal(t, "5511999887766", lead.Phone)
	assert.Equal(t, "Cliente Teste", lead.Name)
	assert.Equal(t, models.LeadNovo, lead.Status)
	assert.Equal(t, models.SourceWhatsApp, lead.Source)

	require.Len(t, f.contacts.contacts, 1)
	contact := f.contacts.contacts[0]
	require.NotNil(t, contact.LeadID)
	assert.Equal(t, lead.ID, *contact.LeadID)
	assert.Equal(t, 1, contact.UnreadCount)

	require.Len(t, f.messages.messages, 1)
	msg := f.messages.messages[0]
	assert.Equal(t, models.DirectionIn, msg.Direction)
	require.NotNil(t, msg.Content)
	assert.Equal(t, "quero ver o civic", *msg.Content)

	// lead creation fan-out
	assert.Len(t, f.negotiations.created, 1)
	assert.Len(t, f.assignments.created, 1)
	require.Len(t, f.notifications.created, 1)
	assert.Equal(t, models.NotificationNewLead, f.notifications.created[0].Type)
	assert.Len(t, f.interactions.created, 1)
	assert.Equal(t, 1, f.distributor.calls)
}

func TestInboundDuplicateMessageIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.processor.HandleEvent(ctx, inboundEvent("M1", "5511999887766@s.whatsapp.net", "oi"))
	require.NoError(t, err)
	require.False(t, first.Duplicate)

	second, err := f.processor.HandleEvent(ctx, inboundEvent("M1", "5511999887766@s.whatsapp.net", "oi"))
	require.NoError(t, err)
	assert.True(t, second.Duplicate)

	// redelivery must not double anything
	assert.Len(t, f.messages.messages, 1)
	assert.Len(t, f.leads.leads, 1)
	assert.Equal(t, 1, f.contacts.contacts[0].UnreadCount)
	assert.Equal(t, 1, f.distributor.calls)
}

func TestInboundExistingLeadNoNewLead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.processor.HandleEvent(ctx, inboundEvent("M1", "5511999887766@s.whatsapp.net", "primeira"))
	require.NoError(t, err)

	result, err := f.processor.HandleEvent(ctx, inboundEvent("M2", "5511999887766@s.whatsapp.net", "segunda"))
	require.NoError(t, err)
	require.True(t, result.Handled)
	assert.False(t, result.LeadCreated)

	assert.Len(t, f.leads.leads, 1)
	assert.Len(t, f.contacts.contacts, 1)
	assert.Equal(t, 2, f.contacts.contacts[0].UnreadCount)
	assert.Len(t, f.messages.messages, 2)
	// follow-up message notifies as new_message, not new_lead
	require.Len(t, f.notifications.created, 2)
	assert.Equal(t, models.NotificationNewMessage, f.notifications.created[1].Type)
	assert.Equal(t, 1, f.distributor.calls)
}

func TestInboundLegacyVariantContactReused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// lead and contact on file under the CC-stripped phone of an older import
	lead := &models.Lead{Phone: "11999887766", Name: "Cliente Antigo", Source: models.SourceWhatsApp, Status: models.LeadNovo}
	require.NoError(t, f.leads.Create(ctx, lead))
	legacyPhone := "11999887766"
	contact := &models.Contact{Phone: &legacyPhone, RemoteJID: "11999887766@s.whatsapp.net", LeadID: &lead.ID}
	require.NoError(t, f.contacts.Create(ctx, contact))

	// the gateway now reports the full canonical number, missing both
	// phone lookups; the lead link must route back to the same contact
	result, err := f.processor.HandleEvent(ctx, inboundEvent("M1", "5511999887766@s.whatsapp.net", "voltei"))
	require.NoError(t, err)
	require.True(t, result.Handled)
	assert.False(t, result.LeadCreated)

	assert.Len(t, f.contacts.contacts, 1)
	assert.Len(t, f.leads.leads, 1)
	assert.Equal(t, 1, f.contacts.contacts[0].UnreadCount)
	assert.Zero(t, f.distributor.calls)
	require.NotNil(t, result.ContactID)
	assert.Equal(t, contact.ID, *result.ContactID)
}

func TestInboundLidWithSenderPnResolves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	event := inboundEvent("M1", "123456789012345678@lid", "ola")
	event.Data.Key.SenderPn = "5511988776655@s.whatsapp.net"

	result, err := f.processor.HandleEvent(ctx, event)
	require.NoError(t, err)
	require.True(t, result.Handled)
	assert.True(t, result.LeadCreated)

	require.Len(t, f.leads.leads, 1)
	assert.Equal(t, "5511988776655", f.leads.leads[0].Phone)
	// the opaque id stays the channel identifier
	assert.Equal(t, "123456789012345678@lid", f.contacts.contacts[0].RemoteJID)
}

func TestInboundUnresolvableIdentityDropped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.processor.HandleEvent(ctx, inboundEvent("M1", "123456789012345678@lid", "anon"))
	require.NoError(t, err)
	assert.False(t, result.Handled)

	assert.Empty(t, f.leads.leads)
	assert.Empty(t, f.contacts.contacts)
	assert.Empty(t, f.messages.messages)
	assert.Zero(t, f.distributor.calls)
}

func TestInboundUnknownInstanceDropped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	event := inboundEvent("M1", "5511999887766@s.whatsapp.net", "oi")
	event.Instance = "ghost-line"

	result, err := f.processor.HandleEvent(ctx, event)
	require.NoError(t, err)
	assert.False(t, result.Handled)
	assert.Empty(t, f.messages.messages)
}

func TestOutboundEchoNeverCreatesLead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// customer writes first, unread goes to 1
	_, err := f.processor.HandleEvent(ctx, inboundEvent("M1", "5511999887766@s.whatsapp.net", "oi"))
	require.NoError(t, err)
	require.Equal(t, 1, f.contacts.contacts[0].UnreadCount)

	echo := inboundEvent("M2", "5511999887766@s.whatsapp.net", "bom dia, posso ajudar?")
	echo.Data.Key.FromMe = true

	result, err := f.processor.HandleEvent(ctx, echo)
	require.NoError(t, err)
	require.True(t, result.Handled)
	assert.False(t, result.LeadCreated)

	// reply stored as outbound, unread cleared, still only one lead
	assert.Len(t, f.leads.leads, 1)
	assert.Equal(t, 0, f.contacts.contacts[0].UnreadCount)
	require.Len(t, f.messages.messages, 2)
	assert.Equal(t, models.DirectionOut, f.messages.messages[1].Direction)
	assert.Equal(t, 1, f.distributor.calls)
}

func TestInboundWithoutKeyDropped(t *testing.T) {
	f := newFixture(t)

	event := &gateway.WebhookEvent{Event: "messages.upsert", Instance: "dev-line"}
	result, err := f.processor.HandleEvent(context.Background(), event)
	require.NoError(t, err)
	assert.False(t, result.Handled)
}

// ===========================================================================
// messages.update
// ===========================================================================

func statusEvent(messageID string, status interface{}) *gateway.WebhookEvent {
	return &gateway.WebhookEvent{
		Event:    "messages.update",
		Instance: "dev-line",
		Data: gateway.EventData{
			Key:    &gateway.MessageKey{RemoteJid: "5511999887766@s.whatsapp.net", ID: messageID},
			Status: status,
		},
	}
}

func TestStatusReceiptAdvances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	echo := inboundEvent("M1", "5511999887766@s.whatsapp.net", "ola")
	echo.Data.Key.FromMe = true
	_, err := f.processor.HandleEvent(ctx, echo)
	require.NoError(t, err)
	require.Equal(t, models.StatusSent, f.messages.messages[0].Status)

	result, err := f.processor.HandleEvent(ctx, statusEvent("M1", "READ"))
	require.NoError(t, err)
	assert.True(t, result.Handled)
	assert.Equal(t, models.StatusRead, f.messages.messages[0].Status)
}

func TestStatusReceiptNeverDowngrades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	echo := inboundEvent("M1", "5511999887766@s.whatsapp.net", "ola")
	echo.Data.Key.FromMe = true
	_, err := f.processor.HandleEvent(ctx, echo)
	require.NoError(t, err)

	_, err = f.processor.HandleEvent(ctx, statusEvent("M1", "READ"))
	require.NoError(t, err)

	// a late delivery ack must not undo the read receipt
	_, err = f.processor.HandleEvent(ctx, statusEvent("M1", float64(3)))
	require.NoError(t, err)
	assert.Equal(t, models.StatusRead, f.messages.messages[0].Status)
}

func TestStatusUnmappedIsNoOp(t *testing.T) {
	f := newFixture(t)

	result, err := f.processor.HandleEvent(context.Background(), statusEvent("M1", float64(1)))
	require.NoError(t, err)
	assert.True(t, result.Handled)
}

// ===========================================================================
// connection.update / qrcode.updated
// ===========================================================================

func TestConnectionUpdateMirrorsState(t *testing.T) {
	f := newFixture(t)

	event := &gateway.WebhookEvent{
		Event:    "connection.update",
		Instance: "dev-line",
		Data:     gateway.EventData{State: "close"},
	}
	result, err := f.processor.HandleEvent(context.Background(), event)
	require.NoError(t, err)
	assert.True(t, result.Handled)
	assert.Equal(t, models.InstanceDisconnected, f.instances.byName["dev-line"].Status)
}

func TestConnectionUpdateCapturesWUID(t *testing.T) {
	f := newFixture(t)

	event := &gateway.WebhookEvent{
		Event:    "CONNECTION_UPDATE",
		Instance: "dev-line",
		Data:     gateway.EventData{State: "open", WUID: "5511999887766:5@s.whatsapp.net"},
	}
	_, err := f.processor.HandleEvent(context.Background(), event)
	require.NoError(t, err)

	inst := f.instances.byName["dev-line"]
	require.NotNil(t, inst.PhoneNumber)
	assert.Equal(t, "5511999887766", *inst.PhoneNumber)
}

func TestQRUpdateStoresCodeWithExpiry(t *testing.T) {
	f := newFixture(t)

	event := &gateway.WebhookEvent{
		Event:    "qrcode.updated",
		Instance: "dev-line",
		Data:     gateway.EventData{QRCode: &gateway.QRCodeData{Base64: "data:image/png;base64,AAAA"}},
	}
	result, err := f.processor.HandleEvent(context.Background(), event)
	require.NoError(t, err)
	assert.True(t, result.Handled)

	inst := f.instances.byName["dev-line"]
	require.NotNil(t, inst.QRCode)
	assert.Equal(t, models.InstanceQRPending, inst.Status)
	require.NotNil(t, inst.QRExpiresAt)
	assert.WithinDuration(t, time.Now().Add(qrTTL), *inst.QRExpiresAt, 5*time.Second)
}

func TestUnknownEventIgnored(t *testing.T) {
	f := newFixture(t)

	event := &gateway.WebhookEvent{Event: "contacts.upsert", Instance: "dev-line"}
	result, err := f.processor.HandleEvent(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, gateway.EventUnknown, result.Kind)
	assert.False(t, result.Handled)
}

// ===========================================================================
// Helpers
// ===========================================================================

func TestTruncateKeepsRunesWhole(t *testing.T) {
	// a cut landing inside the two-byte "ã" must back up to the rune boundary
	out := truncate("promoção", 8)
	assert.Equal(t, "promoç", out)
	assert.True(t, utf8.ValidString(out))

	assert.Equal(t, "promoção", truncate("promoção", 50))
}
