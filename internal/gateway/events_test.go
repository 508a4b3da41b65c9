package gateway

import (
	"encoding/json"
	"testing"

	"dealerhub-gin/internal/models"
)

func TestClassifyEvent(t *testing.T) {
	tests := []struct {
		event string
		want  EventKind
	}{
		{"messages.upsert", EventNewMessage},
		{"MESSAGES_UPSERT", EventNewMessage},
		{"Messages-Upsert", EventNewMessage},
		{"  messages.upsert  ", EventNewMessage},
		{"messages.update", EventMessageStatus},
		{"MESSAGES_UPDATE", EventMessageStatus},
		{"messages.ack", EventMessageStatus},
		{"connection.update", EventConnectionChange},
		{"CONNECTION_UPDATE", EventConnectionChange},
		{"qrcode.updated", EventQRUpdate},
		{"QRCODE_UPDATED", EventQRUpdate},
		{"contacts.upsert", EventUnknown},
		{"", EventUnknown},
	}

	for _, tt := range tests {
		if got := ClassifyEvent(tt.event); got != tt.want {
			t.Errorf("ClassifyEvent(%q) = %v, want %v", tt.event, got, tt.want)
		}
	}
}

func TestMapMessageStatusNumericAcks(t *testing.T) {
	tests := []struct {
		ack  float64
		want models.MessageStatus
	}{
		{0, models.StatusFailed},
		{1, ""}, // provider-side pending, not stored
		{2, models.StatusSent},
		{3, models.StatusDelivered},
		{4, models.StatusRead},
		{5, models.StatusRead},
		{9, ""},
	}

	for _, tt := range tests {
		// json.Unmarshal delivers numbers as float64
		if got := MapMessageStatus(tt.ack); got != tt.want {
			t.Errorf("MapMessageStatus(%v) = %q, want %q", tt.ack, got, tt.want)
		}
	}
}

func TestMapMessageStatusNames(t *testing.T) {
	tests := []struct {
		name string
		want models.MessageStatus
	}{
		{"SERVER_ACK", models.StatusSent},
		{"sent", models.StatusSent},
		{"DELIVERY_ACK", models.StatusDelivered},
		{"delivered", models.StatusDelivered},
		{"READ", models.StatusRead},
		{"PLAYED", models.StatusRead},
		{"ERROR", models.StatusFailed},
		{"failed", models.StatusFailed},
		{"PENDING", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := MapMessageStatus(tt.name); got != tt.want {
			t.Errorf("MapMessageStatus(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestMapMessageStatusJSONNumber(t *testing.T) {
	if got := MapMessageStatus(json.Number("3")); got != models.StatusDelivered {
		t.Fatalf("MapMessageStatus(json.Number(3)) = %q", got)
	}
	if got := MapMessageStatus(nil); got != "" {
		t.Fatalf("MapMessageStatus(nil) = %q, want empty", got)
	}
}

func TestMapConnectionState(t *testing.T) {
	tests := []struct {
		state string
		want  models.InstanceStatus
	}{
		{"open", models.InstanceConnected},
		{"Connected", models.InstanceConnected},
		{"close", models.InstanceDisconnected},
		{"closed", models.InstanceDisconnected},
		{"DISCONNECTED", models.InstanceDisconnected},
		{"connecting", models.InstanceConnecting},
		{"whatever", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := MapConnectionState(tt.state); got != tt.want {
			t.Errorf("MapConnectionState(%q) = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestEventDataText(t *testing.T) {
	plain := &EventData{Message: &MessageContent{Conversation: "hello"}}
	if plain.Text() != "hello" {
		t.Fatalf("Text() = %q", plain.Text())
	}

	extended := &EventData{Message: &MessageContent{
		ExtendedTextMessage: &ExtendedText{Text: "quoted reply"},
	}}
	if extended.Text() != "quoted reply" {
		t.Fatalf("Text() = %q", extended.Text())
	}

	empty := &EventData{}
	if empty.Text() != "" {
		t.Fatalf("Text() on empty data = %q", empty.Text())
	}
}
