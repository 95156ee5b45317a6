package health

import (
	"math"
	"time"

	"github.com/rebelchris/recallect/internal/core/common"
	"github.com/rebelchris/recallect/internal/core/model"
)

type Status string

const (
	StatusStrong Status = "strong"
	StatusSteady Status = "steady"
	StatusAtRisk Status = "at-risk"
)

// AtRiskThreshold is the score below which a relationship counts as at-risk.
const AtRiskThreshold = 60

const defaultFrequencyDays = 30

// Health is recomputed on every read and never persisted.
type Health struct {
	Score                    int    `json:"score"`
	Status                   Status `json:"status"`
	Freshness                int    `json:"freshness"`
	Consistency              int    `json:"consistency"`
	FollowThrough            int    `json:"followThrough"`
	PendingReminderCount     int    `json:"pendingReminderCount"`
	OverdueReminderCount     int    `json:"overdueReminderCount"`
	DaysSinceLastInteraction *int   `json:"daysSinceLastInteraction"`
}

type Input struct {
	Frequency       model.Cadence
	LastInteraction *time.Time
	// Reminders may contain any status; only PENDING ones are counted.
	Reminders []model.Reminder
	Now       time.Time
}

// Calculate combines freshness, consistency and reminder follow-through into a
// 0-100 score.
func Calculate(in Input) Health {
	frequencyDays := in.Frequency.Days()
	hasCadence := frequencyDays > 0
	if !hasCadence {
		frequencyDays = defaultFrequencyDays
	}

	var daysSince *int
	days := 2 * frequencyDays
	if in.LastInteraction != nil {
		d := common.DaysSince(*in.LastInteraction, in.Now)
		days = d
		daysSince = &d
	}

	ratio := float64(days) / float64(frequencyDays)
	freshness := freshnessScore(ratio)

	var consistency int
	if hasCadence {
		consistency = consistencyScore(ratio)
	} else {
		consistency = consistencyByDays(days)
	}

	pending, overdue := model.ReminderCounts(in.Reminders, in.Now)
	followThrough := followThroughScore(pending, overdue)

	score := int(math.Round(0.45*float64(freshness) + 0.30*float64(consistency) + 0.25*float64(followThrough)))
	score = min(100, max(0, score))

	return Health{
		Score:                    score,
		Status:                   StatusFor(score),
		Freshness:                freshness,
		Consistency:              consistency,
		FollowThrough:            followThrough,
		PendingReminderCount:     pending,
		OverdueReminderCount:     overdue,
		DaysSinceLastInteraction: daysSince,
	}
}

// StatusFor maps a score to its tier.
func StatusFor(score int) Status {
	switch {
	case score >= 80:
		return StatusStrong
	case score >= AtRiskThreshold:
		return StatusSteady
	default:
		return StatusAtRisk
	}
}

func freshnessScore(ratio float64) int {
	switch {
	case ratio <= 0.8:
		return 100
	case ratio <= 1:
		return 90
	case ratio <= 1.5:
		return 70
	case ratio <= 2:
		return 50
	case ratio <= 3:
		return 30
	default:
		return 15
	}
}

// consistencyScore drops sharply once the cadence goal is missed.
func consistencyScore(ratio float64) int {
	switch {
	case ratio <= 0.5:
		return 100
	case ratio <= 0.8:
		return 90
	case ratio <= 1:
		return 75
	case ratio <= 1.5:
		return 20
	case ratio <= 2:
		return 10
	default:
		return 5
	}
}

func consistencyByDays(days int) int {
	switch {
	case days <= 14:
		return 85
	case days <= 30:
		return 70
	case days <= 60:
		return 50
	default:
		return 30
	}
}

func followThroughScore(pending, overdue int) int {
	if pending == 0 && overdue == 0 {
		return 100
	}
	return min(100, max(10, 100-8*pending-18*overdue))
}
