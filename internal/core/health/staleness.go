package health

// Staleness is the traffic-light classification of how overdue a contact is.
type Staleness string

const (
	Green  Staleness = "green"
	Yellow Staleness = "yellow"
	Red    Staleness = "red"
)

// Severity orders staleness levels, green lowest.
func (s Staleness) Severity() int {
	switch s {
	case Red:
		return 2
	case Yellow:
		return 1
	default:
		return 0
	}
}

// GetStaleness classifies daysSince against a cadence of frequencyDays.
// Both "approaching goal" (ratio >= 0.8) and "past goal" (ratio >= 1) are yellow;
// only twice the cadence escalates to red.
func GetStaleness(daysSince, frequencyDays int) Staleness {
	if frequencyDays <= 0 {
		return Green
	}
	ratio := float64(daysSince) / float64(frequencyDays)
	switch {
	case ratio >= 2:
		return Red
	case ratio >= 1:
		return Yellow
	case ratio >= 0.8:
		return Yellow
	default:
		return Green
	}
}
