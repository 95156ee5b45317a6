package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

type focusItem struct {
	ContactName     string `json:"contactName"`
	Score           int    `json:"score"`
	Priority        string `json:"priority"`
	ActionLabel     string `json:"actionLabel"`
	Reason          string `json:"reason"`
	SecondaryReason string `json:"secondaryReason"`
}

type segmentItem struct {
	ContactName string `json:"contactName"`
	Urgency     int    `json:"urgency"`
	Priority    string `json:"priority"`
	ActionLabel string `json:"actionLabel"`
	Reason      string `json:"reason"`
}

type segmentQueue struct {
	Label     string        `json:"label"`
	GroupName string        `json:"groupName"`
	Items     []segmentItem `json:"items"`
}

type reviewStep struct {
	ContactName string `json:"contactName"`
	ActionLabel string `json:"actionLabel"`
	Reason      string `json:"reason"`
	Priority    string `json:"priority"`
}

type weeklyReview struct {
	WindowDays int `json:"windowDays"`
	Summary    struct {
		Interactions    int `json:"interactions"`
		ContactsReached int `json:"contactsReached"`
		AtRiskContacts  int `json:"atRiskContacts"`
		OpenLoops       int `json:"openLoops"`
		ClosedLoops     int `json:"closedLoops"`
	} `json:"summary"`
	NextSteps []reviewStep `json:"nextSteps"`
}

type logResult struct {
	Conversation struct {
		ID string `json:"id"`
	} `json:"conversation"`
	Resolution *struct {
		Source      string   `json:"source"`
		ReminderIDs []string `json:"reminderIds"`
	} `json:"resolution"`
	Reminder *struct {
		ID       string `json:"id"`
		RemindAt string `json:"remindAt"`
		Note     string `json:"note"`
	} `json:"reminder"`
}

func printJSON(raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(os.Stdout)
	return err
}

func printFocus(w io.Writer, items []focusItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Nothing needs attention today.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", it.Score, it.Priority, it.ContactName, it.ActionLabel, it.Reason)
		if it.SecondaryReason != "" {
			fmt.Fprintf(tw, "\t\t\t\t%s\n", it.SecondaryReason)
		}
	}
	tw.Flush()
}

func printSegments(w io.Writer, queues []segmentQueue) {
	if len(queues) == 0 {
		fmt.Fprintln(w, "No segments matched any group.")
		return
	}
	for i, q := range queues {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%s)\n", q.Label, q.GroupName)
		if len(q.Items) == 0 {
			fmt.Fprintln(w, "  all caught up")
			continue
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, it := range q.Items {
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\n", it.Urgency, it.Priority, it.ContactName, it.ActionLabel, it.Reason)
		}
		tw.Flush()
	}
}

func printReview(w io.Writer, r weeklyReview) {
	s := r.Summary
	fmt.Fprintf(w, "Last %d days: %d interactions with %d contacts\n", r.WindowDays, s.Interactions, s.ContactsReached)
	fmt.Fprintf(w, "At risk: %d  Open loops: %d  Closed loops: %d\n", s.AtRiskContacts, s.OpenLoops, s.ClosedLoops)
	if len(r.NextSteps) == 0 {
		return
	}
	fmt.Fprintln(w, "\nNext steps:")
	for _, st := range r.NextSteps {
		fmt.Fprintf(w, "  [%s] %s %s: %s\n", strings.ToUpper(st.Priority), st.ActionLabel, st.ContactName, st.Reason)
	}
}

func printLogResult(w io.Writer, r logResult) {
	fmt.Fprintf(w, "Logged conversation %s\n", r.Conversation.ID)
	if r.Resolution != nil && len(r.Resolution.ReminderIDs) > 0 {
		fmt.Fprintf(w, "Closed %d reminder(s) (%s)\n", len(r.Resolution.ReminderIDs), r.Resolution.Source)
	}
	if r.Reminder != nil {
		fmt.Fprintf(w, "Reminder set for %s: %s\n", r.Reminder.RemindAt, r.Reminder.Note)
	}
}
