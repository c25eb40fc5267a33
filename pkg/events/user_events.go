package events

import "github.com/google/uuid"

// User account event names.
const (
	EventUserCreated       = "user.created"
	EventUserStatusUpdated = "user.status.updated"
	EventUserDeleted       = "user.deleted"
)

// UserCreated signals that a new user account was created.
type UserCreated struct {
	BaseEvent
	UserID uuid.UUID
	Email  string
	Role   string
}

func NewUserCreated(userID uuid.UUID, email, role string) *UserCreated {
	return &UserCreated{
		BaseEvent: NewBase(EventUserCreated),
		UserID:    userID,
		Email:     email,
		Role:      role,
	}
}

// UserStatusUpdated signals that a user's account status changed.
type UserStatusUpdated struct {
	BaseEvent
	UserID    uuid.UUID
	OldStatus string
	NewStatus string
}

func NewUserStatusUpdated(userID uuid.UUID, oldStatus, newStatus string) *UserStatusUpdated {
	return &UserStatusUpdated{
		BaseEvent: NewBase(EventUserStatusUpdated),
		UserID:    userID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}
}

// UserDeleted signals that a user account was removed.
type UserDeleted struct {
	BaseEvent
	UserID uuid.UUID
	Email  string
}

func NewUserDeleted(userID uuid.UUID, email string) *UserDeleted {
	return &UserDeleted{
		BaseEvent: NewBase(EventUserDeleted),
		UserID:    userID,
		Email:     email,
	}
}
