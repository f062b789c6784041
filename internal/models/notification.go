package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType doubles as the severity shown in the inbox
type NotificationType string

const (
	NotificationTypeInfo     NotificationType = "Info"
	NotificationTypeReminder NotificationType = "Reminder"
	NotificationTypeUrgent   NotificationType = "Urgent"
	NotificationTypeCritical NotificationType = "Critical"
)

// Notification is an inbox record for a single user. After creation only the
// read flag changes.
type Notification struct {
	Base
	Title           string           `json:"title" db:"title"`
	Message         string           `json:"message" db:"message"`
	Type            NotificationType `json:"type" db:"type"`
	RecipientID     uuid.UUID        `json:"recipient_id" db:"recipient_id"`
	EntityReference *string          `json:"entity_reference,omitempty" db:"entity_reference"`
	IsRead          bool             `json:"is_read" db:"is_read"`
	ReadAt          *time.Time       `json:"read_at,omitempty" db:"read_at"`
}
