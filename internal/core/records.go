package core

import (
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/rebelchris/recallect/internal/core/model"
)

func decodeContact(rec *neo4j.Record) model.Contact {
	m := rec.AsMap()
	c := model.Contact{
		ID:        str(m["id"]),
		Name:      str(m["name"]),
		LastName:  str(m["last_name"]),
		Frequency: model.ParseCadence(str(m["contact_frequency"])),
		CreatedAt: timestamp(m["created_at"]),
		UpdatedAt: timestamp(m["updated_at"]),
	}
	groups, _ := m["groups"].([]any)
	for _, g := range groups {
		gm, ok := g.(map[string]any)
		if !ok || gm["id"] == nil {
			// OPTIONAL MATCH yields a null group for contacts without any.
			continue
		}
		c.Groups = append(c.Groups, model.Group{ID: str(gm["id"]), Name: str(gm["name"])})
	}
	return c
}

func decodeConversation(rec *neo4j.Record) model.Conversation {
	m := rec.AsMap()
	return model.Conversation{
		ID:        str(m["id"]),
		ContactID: str(m["contact_id"]),
		Content:   str(m["content"]),
		Type:      model.ParseConversationType(str(m["type"])),
		Timestamp: timestamp(m["timestamp"]),
		CreatedAt: timestamp(m["created_at"]),
	}
}

func decodeReminder(rec *neo4j.Record) model.Reminder {
	m := rec.AsMap()
	return model.Reminder{
		ID:             str(m["id"]),
		ContactID:      str(m["contact_id"]),
		ConversationID: str(m["conversation_id"]),
		RemindAt:       timestamp(m["remind_at"]),
		Status:         model.ReminderStatus(strings.ToUpper(str(m["status"]))),
		Note:           str(m["note"]),
	}
}

func decodeImportantDate(rec *neo4j.Record) model.ImportantDate {
	m := rec.AsMap()
	d := model.ImportantDate{
		ID:          str(m["id"]),
		ContactID:   str(m["contact_id"]),
		Label:       model.DateLabel(strings.ToLower(str(m["label"]))),
		CustomLabel: str(m["custom_label"]),
		Date:        str(m["date"]),
	}
	if y, ok := m["year"].(int64); ok && y > 0 {
		year := int(y)
		d.Year = &year
	}
	d.Recurring, _ = m["recurring"].(bool)
	return d
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// timestamp accepts RFC3339 strings and native temporal values.
func timestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case neo4j.LocalDateTime:
		return t.Time()
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
