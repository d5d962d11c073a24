package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationInfo      NotificationType = "info"
	NotificationWarning   NotificationType = "warning"
	NotificationImportant NotificationType = "important"
	NotificationUpdate    NotificationType = "update"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInfo, NotificationWarning, NotificationImportant, NotificationUpdate:
		return true
	}
	return false
}

// TargetAll makes a broadcast notification visible to every role.
const TargetAll = "all"

type Notification struct {
	ID          uint                        `json:"id" gorm:"primarykey"`
	Title       string                      `json:"title" gorm:"not null"`
	Message     string                      `json:"message" gorm:"type:text;not null"`
	Type        NotificationType            `json:"type" gorm:"default:'info'"`
	TargetRoles datatypes.JSONSlice[string] `json:"target_roles"`
	RecipientID *uint                       `json:"recipient_id,omitempty" gorm:"index"`
	Link        string                      `json:"link,omitempty"`
	CreatedBy   uint                        `json:"created_by" gorm:"not null"`
	CreatedAt   time.Time                   `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// VisibleTo reports whether a user with the given id and role sees n.
func (n *Notification) VisibleTo(userID uint, role UserRole) bool {
	if n.RecipientID != nil {
		return *n.RecipientID == userID
	}
	for _, target := range n.TargetRoles {
		if target == TargetAll || target == string(role) {
			return true
		}
	}
	return false
}

type NotificationRead struct {
	ID             uint      `gorm:"primarykey"`
	NotificationID uint      `gorm:"not null;uniqueIndex:idx_notification_read"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_notification_read"`
	CreatedAt      time.Time
}

// NotificationRequest is what workflow transitions hand to the notifier.
// Either RecipientID or TargetRoles selects the audience.
type NotificationRequest struct {
	Title       string
	Message     string
	Type        NotificationType
	RecipientID *uint
	TargetRoles []string
	Link        string
	CreatedBy   uint
}

type NotificationView struct {
	ID        uint             `json:"id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Link      string           `json:"link,omitempty"`
	CreatedBy uint             `json:"created_by"`
	CreatedAt time.Time        `json:"created_at"`
	IsRead    bool             `json:"is_read"`
}
