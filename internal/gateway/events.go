package gateway

import (
	"encoding/json"
	"strings"

	"dealerhub-gin/internal/models"
)

// ===========================================================================
// Event classification
// The provider sends event names in whatever casing and separator style
// its version prefers ("MESSAGES_UPSERT", "messages.upsert"). Everything
// is normalized once here and dispatched over a closed set of kinds, so
// string matching never leaks into the handlers.
// ===========================================================================

// EventKind internal event taxonomy
type EventKind string

const (
	// EventNewMessage a message arrived (inbound or outbound echo)
	EventNewMessage EventKind = "new_message"

	// EventMessageStatus delivery/read receipt for a stored message
	EventMessageStatus EventKind = "message_status"

	// EventConnectionChange the line's connection state changed
	EventConnectionChange EventKind = "connection_change"

	// EventQRUpdate a fresh QR code is available for pairing
	EventQRUpdate EventKind = "qr_update"

	// EventUnknown anything we do not handle; logged and dropped
	EventUnknown EventKind = "unknown"
)

// ClassifyEvent maps a provider event name to an EventKind
func ClassifyEvent(event string) EventKind {
	normalized := strings.ToLower(strings.TrimSpace(event))
	normalized = strings.ReplaceAll(normalized, "_", ".")
	normalized = strings.ReplaceAll(normalized, "-", ".")

	switch normalized {
	case "messages.upsert":
		return EventNewMessage
	case "messages.update", "messages.ack":
		return EventMessageStatus
	case "connection.update":
		return EventConnectionChange
	case "qrcode.updated":
		return EventQRUpdate
	default:
		return EventUnknown
	}
}

// MapMessageStatus translates a provider delivery status into ours.
// The provider speaks two vocabularies depending on version: numeric ack
// codes (0=error, 2=server ack, 3=delivered, 4=read, 5=played) and status
// names ("SERVER_ACK", "DELIVERY_ACK", "READ", ...). Returns "" for
// anything unmapped, which callers treat as a no-op.
func MapMessageStatus(raw interface{}) models.MessageStatus {
	switch v := raw.(type) {
	case float64:
		return statusFromAck(int(v))
	case int:
		return statusFromAck(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return statusFromAck(int(n))
		}
		return ""
	case string:
		switch strings.ToUpper(strings.TrimSpace(v)) {
		case "SERVER_ACK", "SENT":
			return models.StatusSent
		case "DELIVERY_ACK", "DELIVERED":
			return models.StatusDelivered
		case "READ", "PLAYED":
			return models.StatusRead
		case "ERROR", "FAILED":
			return models.StatusFailed
		default:
			return ""
		}
	default:
		return ""
	}
}

// statusFromAck maps the numeric ack scale
func statusFromAck(ack int) models.MessageStatus {
	switch ack {
	case 0:
		return models.StatusFailed
	case 2:
		return models.StatusSent
	case 3:
		return models.StatusDelivered
	case 4, 5:
		return models.StatusRead
	default:
		// 1 is "pending at the provider", not worth storing over ours
		return ""
	}
}

// MapConnectionState translates a provider connection state into an
// instance status. Returns "" for anything unmapped.
func MapConnectionState(state string) models.InstanceStatus {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "open", "connected":
		return models.InstanceConnected
	case "close", "closed", "disconnected":
		return models.InstanceDisconnected
	case "connecting":
		return models.InstanceConnecting
	default:
		return ""
	}
}
