package model

import (
	"strings"
	"time"
)

type ConversationType string

const (
	ConversationCall     ConversationType = "call"
	ConversationText     ConversationType = "text"
	ConversationEmail    ConversationType = "email"
	ConversationCoffee   ConversationType = "coffee"
	ConversationDinner   ConversationType = "dinner"
	ConversationHangout  ConversationType = "hangout"
	ConversationMeeting  ConversationType = "meeting"
	ConversationWhatsApp ConversationType = "whatsapp"
	ConversationOther    ConversationType = "other"
)

// ParseConversationType normalizes a stored type tag. Unknown tags become "other".
func ParseConversationType(s string) ConversationType {
	switch t := ConversationType(strings.ToLower(strings.TrimSpace(s))); t {
	case ConversationCall, ConversationText, ConversationEmail, ConversationCoffee,
		ConversationDinner, ConversationHangout, ConversationMeeting, ConversationWhatsApp:
		return t
	default:
		return ConversationOther
	}
}

type Conversation struct {
	ID        string           `json:"id"`
	ContactID string           `json:"contactId"`
	Content   string           `json:"content"`
	Type      ConversationType `json:"type"`
	Timestamp time.Time        `json:"timestamp"` // logical time of the interaction
	CreatedAt time.Time        `json:"createdAt"`
}
