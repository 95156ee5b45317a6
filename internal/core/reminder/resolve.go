package reminder

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rebelchris/recallect/internal/core/model"
	"github.com/rebelchris/recallect/internal/llm"
)

// MaxCandidates caps how many due reminders are checked against one conversation.
const MaxCandidates = 8

type Resolution struct {
	Source      Source   `json:"source"`
	ReminderIDs []string `json:"reminderIds"`
}

var (
	completionCue = regexp.MustCompile(`(?i)\b(done|did it|sent|called|met|confirmed|finished|completed|handled|caught up|spoke|talked|replied|followed up|delivered|booked|paid|returned)\b`)
	deferralCue   = regexp.MustCompile(`(?i)\b(not yet|haven'?t|have not|hasn'?t|didn'?t|did not|don'?t|won'?t|can'?t|cannot|need to|needs to|still need|going to|tomorrow|later|next week|postpone|reschedule|forgot|waiting)\b`)
)

// Candidates returns a contact's due PENDING reminders, oldest first.
func Candidates(reminders []model.Reminder, contactID string, now time.Time) []model.Reminder {
	var out []model.Reminder
	for _, r := range reminders {
		if r.ContactID == contactID && r.Status == model.ReminderPending && !r.RemindAt.After(now) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RemindAt.Before(out[j].RemindAt)
	})
	if len(out) > MaxCandidates {
		out = out[:MaxCandidates]
	}
	return out
}

// RuleResolution closes only the oldest candidate, and only when the text reports
// completion without hedging.
func RuleResolution(content string, candidates []model.Reminder) *Resolution {
	if len(candidates) == 0 {
		return nil
	}
	text := strings.ReplaceAll(content, "’", "'")
	if !completionCue.MatchString(text) || deferralCue.MatchString(text) {
		return nil
	}
	return &Resolution{Source: SourceRules, ReminderIDs: []string{candidates[0].ID}}
}

const defaultResolvePrompt = `You check whether a newly logged conversation closes any open follow-up reminders in a personal CRM.
A reminder is resolved only when the conversation shows the follow-up actually happened.
Be conservative. Plans, intentions and postponements do not resolve anything.
Return a JSON object:
{"resolutions": [{"id": "<reminder id>", "resolved": true|false, "confidence": <0..1>}]}`

type Resolver struct {
	LLM           llm.JSONClient
	MinConfidence float64
	Prompt        string
	Logger        *zap.Logger
}

func NewResolver(client llm.JSONClient, minConfidence float64, logger *zap.Logger) *Resolver {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{LLM: client, MinConfidence: minConfidence, Logger: logger}
}

// Resolve decides which candidates the conversation closes. The rule path only runs
// when the LLM path resolves nothing.
func (r *Resolver) Resolve(ctx context.Context, conv model.Conversation, candidates []model.Reminder) *Resolution {
	if len(candidates) == 0 {
		return nil
	}
	if ids := r.llmResolved(ctx, conv, candidates); len(ids) > 0 {
		r.Logger.Debug("reminders resolved", zap.String("source", string(SourceLLM)), zap.Strings("ids", ids))
		return &Resolution{Source: SourceLLM, ReminderIDs: ids}
	}
	res := RuleResolution(conv.Content, candidates)
	if res != nil {
		r.Logger.Debug("reminders resolved", zap.String("source", string(SourceRules)), zap.Strings("ids", res.ReminderIDs))
	}
	return res
}

func (r *Resolver) llmResolved(ctx context.Context, conv model.Conversation, candidates []model.Reminder) []string {
	if r.LLM == nil {
		return nil
	}
	prompt := r.Prompt
	if prompt == "" {
		prompt = defaultResolvePrompt
	}

	var list strings.Builder
	for _, c := range candidates {
		note := c.Note
		if note == "" {
			note = "(no note)"
		}
		fmt.Fprintf(&list, "- ID: %s, Due: %s, Note: %s\n", c.ID, c.RemindAt.Format(time.DateOnly), note)
	}
	user := fmt.Sprintf("<OPEN REMINDERS>\n%s</OPEN REMINDERS>\n\n<CONVERSATION type=%q date=%s>\n%s\n</CONVERSATION>",
		list.String(), conv.Type, conv.Timestamp.Format(time.DateOnly), strings.TrimSpace(conv.Content))

	raw := r.LLM.CompleteJSON(ctx, []llm.Message{llm.System(prompt), llm.User(user)})
	items, _ := raw["resolutions"].([]any)
	if len(items) == 0 {
		return nil
	}

	accepted := make(map[string]bool)
	for _, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			continue
		}
		id, _ := obj["id"].(string)
		resolved, _ := obj["resolved"].(bool)
		confidence, _ := number(obj["confidence"])
		if id != "" && resolved && confidence >= r.MinConfidence {
			accepted[id] = true
		}
	}

	// Unknown IDs are dropped; output follows candidate order.
	var ids []string
	for _, c := range candidates {
		if accepted[c.ID] {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// Dismiss returns a copy with the listed PENDING reminders moved to DISMISSED.
func Dismiss(reminders []model.Reminder, ids []string) []model.Reminder {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	out := make([]model.Reminder, len(reminders))
	for i, r := range reminders {
		if set[r.ID] && r.Status == model.ReminderPending {
			r.Status = model.ReminderDismissed
		}
		out[i] = r
	}
	return out
}
