package services

import (
	"context"

	"dealerhub-gin/internal/gateway"

	"github.com/google/uuid"
)

// ===========================================================================
// Webhook Event Processor
// Entry point for everything the gateway posts to the webhook. Classifies
// the event and runs the matching pipeline: message persistence with lead
// resolution and round-robin assignment, delivery receipts, connection
// transitions and QR refreshes.
// ===========================================================================

// Processor handles inbound webhook events
type Processor interface {
	// HandleEvent processes one webhook envelope. A nil error means the
	// event was consumed (including drops and duplicates); the handler
	// acknowledges the gateway either way so it never retries forever.
	HandleEvent(ctx context.Context, event *gateway.WebhookEvent) (*HandleResult, error)
}

// HandleResult summarizes what one event did, mostly for logging and tests
type HandleResult struct {
	// Kind classified event kind
	Kind gateway.EventKind

	// Handled false when the event was dropped (unknown kind, missing
	// key, unresolvable identity, unknown instance)
	Handled bool

	// Duplicate true when the message id was already stored
	Duplicate bool

	// ContactID contact the message landed on
	ContactID *uuid.UUID

	// LeadID lead the message resolved to, when any
	LeadID *uuid.UUID

	// LeadCreated true when this event created the lead
	LeadCreated bool

	// AssignedTo salesperson a freshly created lead was routed to
	AssignedTo *uuid.UUID
}
