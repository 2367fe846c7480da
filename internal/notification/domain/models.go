package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelEmail    Channel = "email"
)

// ParseChannel returns "" for anything outside the supported channels.
func ParseChannel(raw string) Channel {
	switch c := Channel(strings.ToLower(strings.TrimSpace(raw))); c {
	case ChannelSMS, ChannelWhatsApp, ChannelEmail:
		return c
	}
	return ""
}

type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// Failure reasons stored on failed notifications.
const (
	ReasonMissingDestination    = "missing_destination"
	ReasonProviderNotConfigured = "provider_not_configured"
	ReasonRejected              = "rejected"
	ReasonClientLookupFailed    = "client_lookup_failed"
)

// Notification is one outbound attempt. Rows are written once and never
// updated.
type Notification struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID `gorm:"not null;index" json:"organization_id"`
	OrderID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"order_id"`
	Channel     Channel      `gorm:"type:text;not null" json:"channel"`
	Destination string       `gorm:"type:text;not null" json:"destination"`
	Status      Status       `gorm:"type:text;not null" json:"status"`
	Message     string       `gorm:"type:text;not null" json:"message"`
	Error       *string      `gorm:"type:text" json:"error,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
