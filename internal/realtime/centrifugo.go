package realtime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ===========================================================================
// Centrifugo Client
// Publishes realtime events so the CRM front-end updates without polling.
// ===========================================================================

// Publisher interface for realtime events
type Publisher interface {
	// PublishNewMessage publishes an inbound/outbound message event
	PublishNewMessage(event *MessageEvent) error

	// PublishNewLead publishes a lead-created event to the assigned agent
	PublishNewLead(event *LeadEvent) error

	// PublishConnectionUpdate publishes an instance state change
	PublishConnectionUpdate(event *ConnectionEvent) error
}

// MessageEvent fired for every stored message
type MessageEvent struct {
	Type        string    `json:"type"`
	MessageID   uuid.UUID `json:"message_id"`
	ContactID   uuid.UUID `json:"contact_id"`
	Direction   string    `json:"direction"`
	Content     string    `json:"content"`
	ContactName string    `json:"contact_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// LeadEvent fired when the pipeline creates a lead
type LeadEvent struct {
	Type       string     `json:"type"`
	LeadID     uuid.UUID  `json:"lead_id"`
	Phone      string     `json:"phone"`
	Name       string     `json:"name"`
	AssignedTo *uuid.UUID `json:"assigned_to,omitempty"`
}

// ConnectionEvent fired when an instance changes state
type ConnectionEvent struct {
	Type         string `json:"type"`
	InstanceName string `json:"instance_name"`
	Status       string `json:"status"`
}

// CentrifugoClient implements Publisher
type CentrifugoClient struct {
	url    string
	apiKey string
	client *http.Client
	log    *zap.Logger
}

// NewCentrifugoClient creates a new Centrifugo client
func NewCentrifugoClient(url, apiKey string, log *zap.Logger) *CentrifugoClient {
	return &CentrifugoClient{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log,
	}
}

type publishRequest struct {
	Method string      `json:"method"`
	Params interface{} `json:"params"`
}

type publishParams struct {
	Channel string      `json:"channel"`
	Data    interface{} `json:"data"`
}

func (c *CentrifugoClient) publish(channel string, data interface{}) error {
	req := publishRequest{
		Method: "publish",
		Params: publishParams{
			Channel: channel,
			Data:    data,
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequest("POST", c.url+"/api", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "apikey "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.log.Warn("centrifugo publish failed", zap.Error(err))
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("centrifugo publish bad status",
			zap.Int("status", resp.StatusCode),
			zap.String("channel", channel),
		)
		return fmt.Errorf("bad status: %d", resp.StatusCode)
	}

	return nil
}

// PublishNewMessage publishes a message event on the inbox channel
func (c *CentrifugoClient) PublishNewMessage(event *MessageEvent) error {
	event.Type = "new_message"
	return c.publish("crm:inbox", event)
}

// PublishNewLead publishes a lead-created event
func (c *CentrifugoClient) PublishNewLead(event *LeadEvent) error {
	event.Type = "new_lead"
	channel := "crm:leads"
	if event.AssignedTo != nil {
		channel = fmt.Sprintf("crm:user_%s", event.AssignedTo.String())
	}
	return c.publish(channel, event)
}

// PublishConnectionUpdate publishes an instance state change
func (c *CentrifugoClient) PublishConnectionUpdate(event *ConnectionEvent) error {
	event.Type = "connection_update"
	return c.publish("crm:instances", event)
}

// ===========================================================================
// Noop Publisher (for when Centrifugo is not configured)
// ===========================================================================

// NoopPublisher does nothing (used when realtime is disabled)
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (n *NoopPublisher) PublishNewMessage(event *MessageEvent) error       { return nil }
func (n *NoopPublisher) PublishNewLead(event *LeadEvent) error             { return nil }
func (n *NoopPublisher) PublishConnectionUpdate(event *ConnectionEvent) error { return nil }
