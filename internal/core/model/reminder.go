package model

import "time"

type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "PENDING"
	ReminderSent      ReminderStatus = "SENT"
	ReminderDismissed ReminderStatus = "DISMISSED"
)

type Reminder struct {
	ID             string         `json:"id"`
	ContactID      string         `json:"contactId"`
	ConversationID string         `json:"conversationId,omitempty"`
	RemindAt       time.Time      `json:"remindAt"`
	Status         ReminderStatus `json:"status"`
	Note           string         `json:"note,omitempty"`
}

// IsOverdue reports whether a pending reminder's trigger time has passed.
func (r Reminder) IsOverdue(now time.Time) bool {
	return r.Status == ReminderPending && r.RemindAt.Before(now)
}

// ReminderCounts splits a contact's PENDING reminders into not-yet-due and overdue.
func ReminderCounts(reminders []Reminder, now time.Time) (pending, overdue int) {
	for _, r := range reminders {
		if r.Status != ReminderPending {
			continue
		}
		if r.RemindAt.Before(now) {
			overdue++
		} else {
			pending++
		}
	}
	return pending, overdue
}
