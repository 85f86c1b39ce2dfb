package activity

import (
	"time"

	activityDatamodel "github.com/frahmantamala/stagiaire-management/internal/core/datamodel/activity"
	"github.com/frahmantamala/stagiaire-management/internal/core/events"
)

// Activity is one entry of the audit feed, keyed by the id of the event that produced it.
type Activity struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Entity     string    `json:"entity"`
	EntityID   int64     `json:"entityId"`
	UserID     int64     `json:"userId"`
	Summary    string    `json:"summary"`
	OccurredAt time.Time `json:"occurredAt"`
}

// FromEvent maps a bus event to an activity. Events that are not domain events
// keep only their type and timestamp.
func FromEvent(e events.Event) *Activity {
	a := &Activity{
		ID:         e.EventID(),
		Type:       e.EventType(),
		OccurredAt: e.OccurredAt(),
	}
	if de, ok := e.(*events.DomainEvent); ok {
		a.Entity = de.Entity
		a.EntityID = de.EntityID
		a.UserID = de.UserID
		a.Summary = de.Summary
	}
	return a
}

func ToDataModel(a *Activity) *activityDatamodel.Activity {
	return &activityDatamodel.Activity{
		EventID:    a.ID,
		Type:       a.Type,
		Entity:     a.Entity,
		EntityID:   a.EntityID,
		UserID:     a.UserID,
		Summary:    a.Summary,
		OccurredAt: a.OccurredAt,
	}
}

func FromDataModel(row *activityDatamodel.Activity) *Activity {
	return &Activity{
		ID:         row.EventID,
		Type:       row.Type,
		Entity:     row.Entity,
		EntityID:   row.EntityID,
		UserID:     row.UserID,
		Summary:    row.Summary,
		OccurredAt: row.OccurredAt,
	}
}
