package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rebelchris/recallect/internal/config"
	"github.com/rebelchris/recallect/internal/core/dates"
	"github.com/rebelchris/recallect/internal/core/focus"
	"github.com/rebelchris/recallect/internal/core/health"
	"github.com/rebelchris/recallect/internal/core/model"
	"github.com/rebelchris/recallect/internal/core/reminder"
	"github.com/rebelchris/recallect/internal/core/review"
	"github.com/rebelchris/recallect/internal/core/segment"
	"github.com/rebelchris/recallect/internal/core/stale"
	"github.com/rebelchris/recallect/internal/driver"
	"github.com/rebelchris/recallect/internal/llm"
	"github.com/rebelchris/recallect/internal/observability"
)

var (
	ErrContactNotFound = errors.New("contact not found")
	ErrEmptyContent    = errors.New("conversation content is empty")
)

// Engine loads a user's relationship data from the graph and runs the ranking and
// reminder engines over it.
type Engine struct {
	Driver    driver.GraphDriver
	Suggester *reminder.Suggester
	Resolver  *reminder.Resolver
	Config    *config.Config
	Logger    *zap.Logger
	Metrics   *observability.Collector

	Clock         func() time.Time
	UUIDGenerator func() string
}

func NewEngine(d driver.GraphDriver, classifier llm.JSONClient, cfg *config.Config, logger *zap.Logger, metrics *observability.Collector) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	suggester := reminder.NewSuggester(classifier, cfg.Reminders.MinConfidence, logger)
	suggester.Prompt = cfg.Prompts.ReminderSuggestion
	resolver := reminder.NewResolver(classifier, cfg.Reminders.MinConfidence, logger)
	resolver.Prompt = cfg.Prompts.ReminderResolution

	return &Engine{
		Driver:        d,
		Suggester:     suggester,
		Resolver:      resolver,
		Config:        cfg,
		Logger:        logger,
		Metrics:       metrics,
		Clock:         time.Now,
		UUIDGenerator: func() string { return uuid.New().String() },
	}
}

func (e *Engine) BuildIndices(ctx context.Context) error {
	return e.Driver.BuildIndices(ctx)
}

func (e *Engine) segments() []segment.Config {
	if len(e.Config.Segments) > 0 {
		return e.Config.Segments
	}
	return segment.DefaultConfigs
}

// LoadSnapshot reads every row the ranking functions need for one user.
func (e *Engine) LoadSnapshot(ctx context.Context, userID string) (model.Snapshot, error) {
	params := map[string]any{"user_id": userID}
	var snap model.Snapshot

	res, err := e.Driver.ExecuteQuery(ctx, driver.GetContactsQuery, params)
	if err != nil {
		return snap, fmt.Errorf("failed to load contacts: %w", err)
	}
	for _, rec := range res.Records {
		snap.Contacts = append(snap.Contacts, decodeContact(rec))
	}

	res, err = e.Driver.ExecuteQuery(ctx, driver.GetConversationsQuery, params)
	if err != nil {
		return snap, fmt.Errorf("failed to load conversations: %w", err)
	}
	for _, rec := range res.Records {
		snap.Conversations = append(snap.Conversations, decodeConversation(rec))
	}

	res, err = e.Driver.ExecuteQuery(ctx, driver.GetRemindersQuery, params)
	if err != nil {
		return snap, fmt.Errorf("failed to load reminders: %w", err)
	}
	for _, rec := range res.Records {
		snap.Reminders = append(snap.Reminders, decodeReminder(rec))
	}

	res, err = e.Driver.ExecuteQuery(ctx, driver.GetImportantDatesQuery, params)
	if err != nil {
		return snap, fmt.Errorf("failed to load important dates: %w", err)
	}
	for _, rec := range res.Records {
		snap.ImportantDates = append(snap.ImportantDates, decodeImportantDate(rec))
	}

	return snap, nil
}

func (e *Engine) Health(ctx context.Context, userID, contactID string) (health.Health, error) {
	snap, err := e.LoadSnapshot(ctx, userID)
	if err != nil {
		return health.Health{}, err
	}
	contact, ok := snap.ContactIndex()[contactID]
	if !ok {
		return health.Health{}, ErrContactNotFound
	}

	in := health.Input{
		Frequency: contact.Frequency,
		Reminders: model.RemindersByContact(snap.Reminders)[contactID],
		Now:       e.Clock(),
	}
	if conv, ok := model.LatestConversations(snap.Conversations)[contactID]; ok {
		ts := conv.Timestamp
		in.LastInteraction = &ts
	}
	return health.Calculate(in), nil
}

func (e *Engine) StaleContacts(ctx context.Context, userID string) ([]stale.Contact, error) {
	snap, err := e.LoadSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return stale.Scan(snap.Contacts, snap.Conversations, e.Clock()), nil
}

func (e *Engine) UpcomingDates(ctx context.Context, userID string, horizonDays int) ([]dates.Upcoming, error) {
	snap, err := e.LoadSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dates.Resolve(snap.ImportantDates, e.Clock(), horizonDays), nil
}

func (e *Engine) TodayFocus(ctx context.Context, userID string, opts config.RankingConfig) ([]focus.Item, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	snap, err := e.LoadSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return focus.Build(snap, e.Clock(), focus.Options{
		CooldownDays:       opts.CooldownDays,
		IncludeLowPriority: opts.IncludeLowPriority,
		Limit:              opts.FocusLimit,
	}), nil
}

func (e *Engine) SegmentQueues(ctx context.Context, userID string, opts config.RankingConfig) ([]segment.Queue, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	snap, err := e.LoadSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return segment.Build(snap, e.Clock(), e.segments(), segment.Options{
		CooldownDays:       opts.CooldownDays,
		IncludeLowPriority: opts.IncludeLowPriority,
		LimitPerSegment:    opts.SegmentLimit,
	}), nil
}

func (e *Engine) WeeklyReview(ctx context.Context, userID string, windowDays int) (review.Review, error) {
	snap, err := e.LoadSnapshot(ctx, userID)
	if err != nil {
		return review.Review{}, err
	}
	return review.Build(snap, e.Clock(), windowDays, e.segments()), nil
}

type LogInput struct {
	ContactID string    `json:"contactId"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

type LogResult struct {
	Conversation model.Conversation   `json:"conversation"`
	Resolution   *reminder.Resolution `json:"resolution,omitempty"`
	Suggestion   *reminder.Suggestion `json:"suggestion,omitempty"`
	Reminder     *model.Reminder      `json:"reminder,omitempty"`
}

// LogConversation stores a conversation, closes the reminders it settles and
// schedules a follow-up when one is warranted.
func (e *Engine) LogConversation(ctx context.Context, userID string, in LogInput) (*LogResult, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	now := e.Clock()

	contact, err := e.getContact(ctx, userID, in.ContactID)
	if err != nil {
		return nil, err
	}

	conv := model.Conversation{
		ID:        e.UUIDGenerator(),
		ContactID: contact.ID,
		Content:   content,
		Type:      model.ParseConversationType(in.Type),
		Timestamp: in.Timestamp,
		CreatedAt: now,
	}
	if conv.Timestamp.IsZero() {
		conv.Timestamp = now
	}

	_, err = e.Driver.ExecuteQuery(ctx, driver.SaveConversationQuery, map[string]any{
		"id":         conv.ID,
		"contact_id": contact.ID,
		"user_id":    userID,
		"content":    conv.Content,
		"type":       string(conv.Type),
		"timestamp":  conv.Timestamp.UTC().Format(time.RFC3339),
		"created_at": conv.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}

	result := &LogResult{Conversation: conv}

	if e.Config.Reminders.AutoResolve {
		res, err := e.resolveReminders(ctx, userID, conv, now)
		if err != nil {
			return nil, err
		}
		result.Resolution = res
	}

	if e.Config.Reminders.AutoCreate {
		sugg := e.Suggester.Suggest(ctx, reminder.SuggestInput{
			Content:     conv.Content,
			Type:        conv.Type,
			Timestamp:   conv.Timestamp,
			ContactName: contact.DisplayName(),
			Frequency:   contact.Frequency,
			Now:         now,
		})
		if sugg != nil {
			rem, err := e.createReminder(ctx, userID, conv, sugg)
			if err != nil {
				return nil, err
			}
			result.Suggestion = sugg
			result.Reminder = rem
		}
	}

	e.Logger.Info("conversation logged",
		zap.String("user_id", userID),
		zap.String("contact_id", contact.ID),
		zap.Bool("resolved", result.Resolution != nil),
		zap.Bool("reminder_created", result.Reminder != nil))
	return result, nil
}

func (e *Engine) getContact(ctx context.Context, userID, contactID string) (model.Contact, error) {
	res, err := e.Driver.ExecuteQuery(ctx, driver.GetContactQuery, map[string]any{
		"contact_id": contactID,
		"user_id":    userID,
	})
	if err != nil {
		return model.Contact{}, fmt.Errorf("failed to load contact: %w", err)
	}
	if len(res.Records) == 0 {
		return model.Contact{}, ErrContactNotFound
	}
	return decodeContact(res.Records[0]), nil
}

func (e *Engine) resolveReminders(ctx context.Context, userID string, conv model.Conversation, now time.Time) (*reminder.Resolution, error) {
	res, err := e.Driver.ExecuteQuery(ctx, driver.GetContactRemindersQuery, map[string]any{
		"contact_id": conv.ContactID,
		"user_id":    userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load reminders: %w", err)
	}
	var reminders []model.Reminder
	for _, rec := range res.Records {
		reminders = append(reminders, decodeReminder(rec))
	}

	candidates := reminder.Candidates(reminders, conv.ContactID, now)
	resolution := e.Resolver.Resolve(ctx, conv, candidates)
	if resolution == nil {
		return nil, nil
	}

	_, err = e.Driver.ExecuteQuery(ctx, driver.DismissRemindersQuery, map[string]any{
		"contact_id": conv.ContactID,
		"user_id":    userID,
		"ids":        resolution.ReminderIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to dismiss reminders: %w", err)
	}
	e.Metrics.RemindersDismissed(string(resolution.Source), len(resolution.ReminderIDs))
	return resolution, nil
}

func (e *Engine) createReminder(ctx context.Context, userID string, conv model.Conversation, sugg *reminder.Suggestion) (*model.Reminder, error) {
	rem := &model.Reminder{
		ID:             e.UUIDGenerator(),
		ContactID:      conv.ContactID,
		ConversationID: conv.ID,
		RemindAt:       sugg.RemindAt,
		Status:         model.ReminderPending,
		Note:           sugg.Reason,
	}
	_, err := e.Driver.ExecuteQuery(ctx, driver.CreateReminderQuery, map[string]any{
		"id":              rem.ID,
		"contact_id":      rem.ContactID,
		"user_id":         userID,
		"conversation_id": rem.ConversationID,
		"remind_at":       rem.RemindAt.UTC().Format(time.RFC3339),
		"note":            rem.Note,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	e.Metrics.ReminderCreated(string(sugg.Source))
	return rem, nil
}
