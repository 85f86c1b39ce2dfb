package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeStagiaireCreated = "stagiaire.created"
	EventTypeStagiaireUpdated = "stagiaire.updated"
	EventTypeStagiaireDeleted = "stagiaire.deleted"

	EventTypeEvaluationCreated  = "evaluation.created"
	EventTypeEvaluationUpdated  = "evaluation.updated"
	EventTypeEvaluationDeleted  = "evaluation.deleted"
	EventTypeEvaluationReviewed = "evaluation.reviewed"

	EventTypeMissionCreated   = "mission.created"
	EventTypeMissionUpdated   = "mission.updated"
	EventTypeMissionDeleted   = "mission.deleted"
	EventTypeMissionCompleted = "mission.completed"

	EventTypeUserCreated = "user.created"
	EventTypeUserUpdated = "user.updated"
	EventTypeUserDeleted = "user.deleted"
)

const (
	EntityStagiaire  = "stagiaire"
	EntityEvaluation = "evaluation"
	EntityMission    = "mission"
	EntityUser       = "user"
)

func AllEventTypes() []string {
	return []string{
		EventTypeStagiaireCreated, EventTypeStagiaireUpdated, EventTypeStagiaireDeleted,
		EventTypeEvaluationCreated, EventTypeEvaluationUpdated, EventTypeEvaluationDeleted, EventTypeEvaluationReviewed,
		EventTypeMissionCreated, EventTypeMissionUpdated, EventTypeMissionDeleted, EventTypeMissionCompleted,
		EventTypeUserCreated, EventTypeUserUpdated, EventTypeUserDeleted,
	}
}

func IsKnownEventType(t string) bool {
	for _, known := range AllEventTypes() {
		if known == t {
			return true
		}
	}
	return false
}

// DomainEvent records a change to one entity made by one user.
type DomainEvent struct {
	BaseEvent
	Entity   string `json:"entity"`
	EntityID int64  `json:"entityId"`
	UserID   int64  `json:"userId"`
	Summary  string `json:"summary"`
}

func NewDomainEvent(eventType, entity string, entityID, userID int64, summary string) *DomainEvent {
	return &DomainEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"entity":    entity,
				"entity_id": entityID,
				"user_id":   userID,
				"summary":   summary,
			},
		},
		Entity:   entity,
		EntityID: entityID,
		UserID:   userID,
		Summary:  summary,
	}
}

func StagiaireEvent(eventType string, id, userID int64, fullName string) *DomainEvent {
	return NewDomainEvent(eventType, EntityStagiaire, id, userID, fmt.Sprintf("%s %s", EntityStagiaire, fullName))
}

func EvaluationEvent(eventType string, id, userID, stagiaireID int64) *DomainEvent {
	return NewDomainEvent(eventType, EntityEvaluation, id, userID, fmt.Sprintf("evaluation of stagiaire #%d", stagiaireID))
}

func MissionEvent(eventType string, id, userID int64, title string) *DomainEvent {
	return NewDomainEvent(eventType, EntityMission, id, userID, fmt.Sprintf("mission %q", title))
}

func UserEvent(eventType string, id, actorID int64, username string) *DomainEvent {
	return NewDomainEvent(eventType, EntityUser, id, actorID, fmt.Sprintf("user %s", username))
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
