package model

// Snapshot is the read model every ranking function works from.
type Snapshot struct {
	Contacts       []Contact       `json:"contacts"`
	Conversations  []Conversation  `json:"conversations"`
	Reminders      []Reminder      `json:"reminders"`
	ImportantDates []ImportantDate `json:"importantDates"`
}

// LatestConversations returns the most recent conversation per contact ID.
func LatestConversations(conversations []Conversation) map[string]Conversation {
	latest := make(map[string]Conversation, len(conversations))
	for _, c := range conversations {
		prev, ok := latest[c.ContactID]
		if !ok || c.Timestamp.After(prev.Timestamp) {
			latest[c.ContactID] = c
		}
	}
	return latest
}

// RemindersByContact groups reminders by contact ID, preserving input order.
func RemindersByContact(reminders []Reminder) map[string][]Reminder {
	out := make(map[string][]Reminder)
	for _, r := range reminders {
		out[r.ContactID] = append(out[r.ContactID], r)
	}
	return out
}

// ContactIndex maps contact IDs to contacts.
func (s Snapshot) ContactIndex() map[string]Contact {
	idx := make(map[string]Contact, len(s.Contacts))
	for _, c := range s.Contacts {
		idx[c.ID] = c
	}
	return idx
}
