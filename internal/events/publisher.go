// Package events fans out domain events to other services after the
// originating transaction has committed. Delivery is at most once.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TypeLeadStageChanged is emitted after a lead moved between stages
const TypeLeadStageChanged = "lead.stage_changed"

// LeadStageChanged describes a committed lead move
type LeadStageChanged struct {
	LeadID       uuid.UUID  `json:"leadId"`
	PipelineID   uuid.UUID  `json:"pipelineId"`
	FromStageID  *uuid.UUID `json:"fromStageId,omitempty"`
	StageID      uuid.UUID  `json:"stageId"`
	StageName    string     `json:"stageName"`
	StageIsFinal bool       `json:"stageIsFinal"`
	ActorID      string     `json:"actorId,omitempty"`
	OccurredAt   time.Time  `json:"occurredAt"`
}

// Envelope is the wire format shared by all event types
type Envelope struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Data       interface{} `json:"data"`
}

// Publisher delivers events to subscribers
type Publisher interface {
	PublishLeadStageChanged(ctx context.Context, event LeadStageChanged) error
	Close() error
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) PublishLeadStageChanged(context.Context, LeadStageChanged) error { return nil }

func (NopPublisher) Close() error { return nil }
