package events

import (
	"context"
	"time"
)

// EventType names a complaint lifecycle change.
type EventType string

const (
	ComplaintCreated   EventType = "complaint.created"
	ComplaintUpdated   EventType = "complaint.updated"
	ComplaintCommented EventType = "complaint.commented"
)

// ComplaintEvent is the message body published for every complaint change.
type ComplaintEvent struct {
	Type        EventType `json:"type"`
	ComplaintID string    `json:"complaintId"`
	ActorID     string    `json:"actorId"`
	Category    string    `json:"category,omitempty"`
	Priority    string    `json:"priority,omitempty"`
	Status      string    `json:"status,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Publisher delivers complaint events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event ComplaintEvent) error
	Close() error
}

// NopPublisher drops every event. Used when AMQP_URL is unset.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ComplaintEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
