package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeGrantChanged            = "identity.grant.changed"
	EventTypeUserStatusChanged       = "identity.user.status_changed"
	EventTypeRoleAssigned            = "identity.role.assigned"
	EventTypeWorkstreamStatusChanged = "identity.workstream.status_changed"
)

// UserAccessChangedEvent is published for any mutation that changes what a
// single user may do: grants, roles and the user's active flag.
type UserAccessChangedEvent struct {
	BaseEvent
	UserID  int64 `json:"user_id"`
	ActorID int64 `json:"actor_id"`
}

func NewUserAccessChangedEvent(eventType string, userID, actorID int64) *UserAccessChangedEvent {
	return &UserAccessChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":  userID,
				"actor_id": actorID,
			},
		},
		UserID:  userID,
		ActorID: actorID,
	}
}

type WorkstreamStatusChangedEvent struct {
	BaseEvent
	WorkstreamID int64 `json:"workstream_id"`
	IsActive     bool  `json:"is_active"`
	ActorID      int64 `json:"actor_id"`
}

func NewWorkstreamStatusChangedEvent(workstreamID int64, isActive bool, actorID int64) *WorkstreamStatusChangedEvent {
	return &WorkstreamStatusChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeWorkstreamStatusChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"workstream_id": workstreamID,
				"is_active":     isActive,
				"actor_id":      actorID,
			},
		},
		WorkstreamID: workstreamID,
		IsActive:     isActive,
		ActorID:      actorID,
	}
}
