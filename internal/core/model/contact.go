package model

import (
	"strings"
	"time"
)

// Cadence is a contact's desired contact frequency.
type Cadence string

const (
	CadenceNone      Cadence = ""
	CadenceWeekly    Cadence = "weekly"
	CadenceBiweekly  Cadence = "biweekly"
	CadenceMonthly   Cadence = "monthly"
	CadenceQuarterly Cadence = "quarterly"
	CadenceYearly    Cadence = "yearly"
)

// ParseCadence maps a stored value to a Cadence. Unknown values mean "no goal".
func ParseCadence(s string) Cadence {
	switch c := Cadence(strings.ToLower(strings.TrimSpace(s))); c {
	case CadenceWeekly, CadenceBiweekly, CadenceMonthly, CadenceQuarterly, CadenceYearly:
		return c
	default:
		return CadenceNone
	}
}

// Days returns the canonical day count for the cadence, or 0 when no goal is set.
func (c Cadence) Days() int {
	switch c {
	case CadenceWeekly:
		return 7
	case CadenceBiweekly:
		return 14
	case CadenceMonthly:
		return 30
	case CadenceQuarterly:
		return 90
	case CadenceYearly:
		return 365
	default:
		return 0
	}
}

type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LastName  string    `json:"lastName,omitempty"`
	Frequency Cadence   `json:"contactFrequency,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Groups    []Group   `json:"groups"`
}

// DisplayName joins first and last name.
func (c Contact) DisplayName() string {
	if c.LastName == "" {
		return c.Name
	}
	return c.Name + " " + c.LastName
}

// InGroup reports whether the contact is a member of the group with the given ID.
func (c Contact) InGroup(groupID string) bool {
	for _, g := range c.Groups {
		if g.ID == groupID {
			return true
		}
	}
	return false
}
