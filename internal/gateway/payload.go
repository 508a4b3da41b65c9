package gateway

// ===========================================================================
// Webhook payload types
// The gateway posts an envelope of {event, instance, data, sender?}; the
// shape of data depends on the event kind, so every field is optional.
// ===========================================================================

// WebhookEvent is the envelope the gateway posts to our webhook
type WebhookEvent struct {
	// Event provider event name, arbitrary casing/separators
	// (e.g. "MESSAGES_UPSERT", "messages.upsert")
	Event string `json:"event"`

	// Instance slug of the line this event belongs to
	Instance string `json:"instance"`

	// Data event-specific payload
	Data EventData `json:"data"`

	// Sender top-level sender jid, present on some message events
	Sender string `json:"sender,omitempty"`
}

// EventData carries the event-specific fields
type EventData struct {
	// Key message key, present on message and status events
	Key *MessageKey `json:"key,omitempty"`

	// PushName display name of the sender
	PushName string `json:"pushName,omitempty"`

	// Message message body container
	Message *MessageContent `json:"message,omitempty"`

	// MessageTimestamp unix seconds
	MessageTimestamp int64 `json:"messageTimestamp,omitempty"`

	// Status delivery status on messages.update; the provider sends either
	// a numeric ack code or a status name, so this stays untyped
	Status interface{} `json:"status,omitempty"`

	// State connection state on connection.update ("open", "close", ...)
	State string `json:"state,omitempty"`

	// QRCode fresh QR payload on qrcode.updated
	QRCode *QRCodeData `json:"qrcode,omitempty"`

	// WUID phone jid of the line itself, sent with connection updates
	WUID string `json:"wuid,omitempty"`
}

// MessageKey identifies one message on the channel
type MessageKey struct {
	// RemoteJid primary remote identifier; may be an opaque "@lid" id
	RemoteJid string `json:"remoteJid"`

	// FromMe true for echoes of messages our side sent
	FromMe bool `json:"fromMe"`

	// ID external message id (idempotency key)
	ID string `json:"id"`

	// SenderPn alternate phone-number jid the provider attaches when
	// RemoteJid is anonymized
	SenderPn string `json:"senderPn,omitempty"`

	// Participant actual sender inside a group chat
	Participant string `json:"participant,omitempty"`
}

// MessageContent is the subset of the message body we care about
type MessageContent struct {
	// Conversation plain text body
	Conversation string `json:"conversation,omitempty"`

	// ExtendedTextMessage quoted/linked text body
	ExtendedTextMessage *ExtendedText `json:"extendedTextMessage,omitempty"`
}

// ExtendedText wraps the text of an extended message
type ExtendedText struct {
	Text string `json:"text"`
}

// QRCodeData is the QR payload on qrcode.updated events
type QRCodeData struct {
	// Base64 rendered QR image
	Base64 string `json:"base64,omitempty"`

	// Code raw pairing code
	Code string `json:"code,omitempty"`
}

// Text returns the message's text body, whichever field carries it
func (d *EventData) Text() string {
	if d.Message == nil {
		return ""
	}
	if d.Message.Conversation != "" {
		return d.Message.Conversation
	}
	if d.Message.ExtendedTextMessage != nil {
		return d.Message.ExtendedTextMessage.Text
	}
	return ""
}
