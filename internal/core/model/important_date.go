package model

type DateLabel string

const (
	DateBirthday    DateLabel = "birthday"
	DateAnniversary DateLabel = "anniversary"
	DateCustom      DateLabel = "custom"
)

type ImportantDate struct {
	ID          string    `json:"id"`
	ContactID   string    `json:"contactId"`
	Label       DateLabel `json:"label"`
	CustomLabel string    `json:"customLabel,omitempty"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Year        *int      `json:"year,omitempty"`
	Recurring   bool      `json:"recurring"`
}

// Title is the human label for the date.
func (d ImportantDate) Title() string {
	switch d.Label {
	case DateBirthday:
		return "Birthday"
	case DateAnniversary:
		return "Anniversary"
	default:
		if d.CustomLabel != "" {
			return d.CustomLabel
		}
		return "Important date"
	}
}
