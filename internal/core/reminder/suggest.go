package reminder

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rebelchris/recallect/internal/core/common"
	"github.com/rebelchris/recallect/internal/core/model"
	"github.com/rebelchris/recallect/internal/llm"
)

type Source string

const (
	SourceRules Source = "rules"
	SourceLLM   Source = "llm"
)

const (
	DefaultMinConfidence = 0.72

	minDays      = 1
	maxDays      = 180
	reminderHour = 9

	confidenceTimeAndIntent = 0.86
	confidenceTimeOnly      = 0.78
	confidenceIntentOnly    = 0.67

	llmVetoConfidence = 0.75
	ruleFloor         = 0.6
)

type SuggestInput struct {
	Content     string
	Type        model.ConversationType
	Timestamp   time.Time
	ContactName string
	Frequency   model.Cadence
	// Now anchors the reminder when Timestamp is zero.
	Now time.Time
}

// anchor is the moment reminders are scheduled from.
func (in SuggestInput) anchor() time.Time {
	if in.Timestamp.IsZero() {
		return in.Now
	}
	return in.Timestamp
}

type Suggestion struct {
	DaysUntil  int       `json:"daysUntil"`
	RemindAt   time.Time `json:"remindAt"`
	Confidence float64   `json:"confidence"`
	Reason     string    `json:"reason"`
	Source     Source    `json:"source"`
}

var (
	numberWords = `a\s+couple\s+of|couple\s+of|an|a|\d{1,3}|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve`

	relativeCue = regexp.MustCompile(`(?i)\bin\s+(` + numberWords + `)\s+(days?|weeks?|months?)\b`)
	fixedCues   = []struct {
		re   *regexp.Regexp
		days int
	}{
		{regexp.MustCompile(`(?i)\btomorrow\b`), 1},
		{regexp.MustCompile(`(?i)\bnext\s+week\b`), 7},
		{regexp.MustCompile(`(?i)\bnext\s+month\b`), 30},
	}

	intentCue = regexp.MustCompile(`(?i)\b(follow[\s-]?up|check[\s-]?in|remind me|reach out|send|share|get back|circle back|touch base|catch up|ping|let me know|schedule|introduce)\b`)

	wordValues = map[string]int{
		"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
		"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
	}
)

type timeCue struct {
	pos  int
	text string
	days int
}

// findTimeCue returns the explicit time cue that appears first in the text.
func findTimeCue(content string) (timeCue, bool) {
	best := timeCue{pos: -1}

	consider := func(pos int, text string, days int) {
		if best.pos == -1 || pos < best.pos {
			best = timeCue{pos: pos, text: text, days: days}
		}
	}

	for _, cue := range fixedCues {
		if loc := cue.re.FindStringIndex(content); loc != nil {
			consider(loc[0], content[loc[0]:loc[1]], cue.days)
		}
	}
	if m := relativeCue.FindStringSubmatchIndex(content); m != nil {
		n := parseCount(content[m[2]:m[3]])
		unit := strings.ToLower(content[m[4]:m[5]])
		switch {
		case strings.HasPrefix(unit, "week"):
			n *= 7
		case strings.HasPrefix(unit, "month"):
			n *= 30
		}
		consider(m[0], content[m[0]:m[1]], n)
	}

	if best.pos == -1 {
		return timeCue{}, false
	}
	best.days = clampDays(best.days)
	return best, true
}

func parseCount(s string) int {
	s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	if strings.HasSuffix(s, "couple of") {
		return 2
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return wordValues[s]
}

func clampDays(days int) int {
	return min(maxDays, max(minDays, days))
}

// RuleSuggestion looks for time cues and follow-up intent in the conversation text.
// It returns nil when neither is present.
func RuleSuggestion(in SuggestInput) *Suggestion {
	cue, hasTime := findTimeCue(in.Content)
	intent := intentCue.FindString(in.Content)
	hasIntent := intent != ""

	var s Suggestion
	switch {
	case hasTime && hasIntent:
		s = Suggestion{DaysUntil: cue.days, Confidence: confidenceTimeAndIntent,
			Reason: fmt.Sprintf("Follow-up intent with time cue %q", cue.text)}
	case hasTime:
		s = Suggestion{DaysUntil: cue.days, Confidence: confidenceTimeOnly,
			Reason: fmt.Sprintf("Time cue %q", cue.text)}
	case hasIntent:
		s = Suggestion{DaysUntil: defaultDays(in.Frequency), Confidence: confidenceIntentOnly,
			Reason: fmt.Sprintf("Follow-up intent %q", strings.ToLower(intent))}
	default:
		return nil
	}
	s.Source = SourceRules
	s.RemindAt = common.AtHour(in.anchor(), s.DaysUntil, reminderHour)
	return &s
}

func defaultDays(c model.Cadence) int {
	if d := c.Days(); d > 0 {
		return max(2, d/2)
	}
	return 7
}

// Opinion is a validated LLM answer to "should a reminder be created".
type Opinion struct {
	ShouldRemind bool
	DaysUntil    *int
	Confidence   float64
	Reason       string
}

// ParseOpinion validates each field on its own. It returns nil when should_remind is
// missing or not a boolean.
func ParseOpinion(raw map[string]any) *Opinion {
	if raw == nil {
		return nil
	}
	should, ok := raw["should_remind"].(bool)
	if !ok {
		return nil
	}

	op := &Opinion{ShouldRemind: should}
	if n, ok := number(raw["days_until"]); ok {
		d := clampDays(int(math.Round(n)))
		op.DaysUntil = &d
	}
	if c, ok := number(raw["confidence"]); ok {
		op.Confidence = math.Min(1, math.Max(0, c))
	}
	if r, ok := raw["reason"].(string); ok {
		op.Reason = strings.TrimSpace(r)
	}
	return op
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return number(f)
	default:
		return 0, false
	}
}

// Fuse combines the rule and LLM opinions. A confident LLM "no" vetoes everything,
// a confident LLM "yes" with a day count wins, and otherwise the rule suggestion is
// used if it clears a slightly lower bar. The result has no RemindAt set.
func Fuse(rule *Suggestion, op *Opinion, minConfidence float64) *Suggestion {
	if op != nil && !op.ShouldRemind && op.Confidence >= llmVetoConfidence {
		return nil
	}
	if op != nil && op.ShouldRemind && op.DaysUntil != nil && op.Confidence >= minConfidence {
		reason := op.Reason
		if reason == "" {
			reason = "Suggested by assistant"
		}
		return &Suggestion{
			DaysUntil:  *op.DaysUntil,
			Confidence: op.Confidence,
			Reason:     reason,
			Source:     SourceLLM,
		}
	}
	if rule != nil && rule.Confidence >= math.Max(ruleFloor, minConfidence-0.1) {
		out := *rule
		return &out
	}
	return nil
}

const defaultSuggestPrompt = `You decide whether a personal CRM should schedule a follow-up reminder after a logged conversation.
Only say yes when the conversation implies a concrete next step with this person.
Return a JSON object:
{"should_remind": true|false, "days_until": <integer 1-180>, "confidence": <0..1>, "reason": "<short reason>"}`

type Suggester struct {
	LLM           llm.JSONClient
	MinConfidence float64
	Prompt        string
	Logger        *zap.Logger
}

func NewSuggester(client llm.JSONClient, minConfidence float64, logger *zap.Logger) *Suggester {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Suggester{LLM: client, MinConfidence: minConfidence, Logger: logger}
}

// Suggest decides whether a reminder should follow a conversation and when.
func (s *Suggester) Suggest(ctx context.Context, in SuggestInput) *Suggestion {
	rule := RuleSuggestion(in)
	op := s.llmOpinion(ctx, in)

	out := Fuse(rule, op, s.MinConfidence)
	if out == nil {
		s.Logger.Debug("no reminder suggested", zap.Bool("rule_fired", rule != nil), zap.Bool("llm_opinion", op != nil))
		return nil
	}
	out.RemindAt = common.AtHour(in.anchor(), out.DaysUntil, reminderHour)
	s.Logger.Debug("reminder suggested",
		zap.String("source", string(out.Source)),
		zap.Int("days_until", out.DaysUntil),
		zap.Float64("confidence", out.Confidence))
	return out
}

func (s *Suggester) llmOpinion(ctx context.Context, in SuggestInput) *Opinion {
	if s.LLM == nil {
		return nil
	}
	prompt := s.Prompt
	if prompt == "" {
		prompt = defaultSuggestPrompt
	}

	cadence := string(in.Frequency)
	if cadence == "" {
		cadence = "none"
	}
	user := fmt.Sprintf("Contact: %s\nCadence: %s\nType: %s\nDate: %s\n\nConversation:\n%s",
		in.ContactName, cadence, in.Type, in.anchor().Format(time.DateOnly), strings.TrimSpace(in.Content))

	return ParseOpinion(s.LLM.CompleteJSON(ctx, []llm.Message{llm.System(prompt), llm.User(user)}))
}
