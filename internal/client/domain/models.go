package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Client is the recipient of parcels. Orders reference clients and never
// own them.
type Client struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index" json:"organization_id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Phone     string       `gorm:"type:text;not null;index" json:"phone"`
	WhatsApp  string       `gorm:"column:whatsapp;type:text" json:"whatsapp,omitempty"`
	Email     string       `gorm:"type:text" json:"email,omitempty"`
	Address   string       `gorm:"type:text" json:"address,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Client) TableName() string { return "clients" }

// FirstName is the only part of the name shown on public pages.
func (c Client) FirstName() string {
	for i, r := range c.Name {
		if r == ' ' {
			return c.Name[:i]
		}
	}
	return c.Name
}
