package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	userID  string
	asJSON  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "recallctl",
		Short: "Command line client for the recallect server",
	}

	defaultURL := os.Getenv("RECALLECT_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", defaultURL, "server base URL")
	rootCmd.PersistentFlags().StringVar(&userID, "user", os.Getenv("RECALLECT_USER"), "user ID sent as X-User-ID")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print raw JSON responses")

	rootCmd.AddCommand(focusCmd())
	rootCmd.AddCommand(segmentsCmd())
	rootCmd.AddCommand(reviewCmd())
	rootCmd.AddCommand(staleCmd())
	rootCmd.AddCommand(upcomingCmd())
	rootCmd.AddCommand(healthCmd())
	rootCmd.AddCommand(logCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newClient() (*Client, error) {
	if userID == "" {
		return nil, fmt.Errorf("--user (or RECALLECT_USER) is required")
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), UserID: userID}, nil
}

type rankingFlags struct {
	limit      int
	cooldown   int
	includeLow bool
}

func (f *rankingFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum items (server default when 0)")
	cmd.Flags().IntVar(&f.cooldown, "cooldown", -1, "cooldown days for recently touched contacts (server default when negative)")
	cmd.Flags().BoolVar(&f.includeLow, "include-low", false, "keep low priority items")
}

func (f *rankingFlags) query(cmd *cobra.Command) url.Values {
	q := url.Values{}
	if f.limit > 0 {
		q.Set("limit", strconv.Itoa(f.limit))
	}
	if f.cooldown >= 0 {
		q.Set("cooldown", strconv.Itoa(f.cooldown))
	}
	if cmd.Flags().Changed("include-low") {
		q.Set("include_low", strconv.FormatBool(f.includeLow))
	}
	return q
}

func focusCmd() *cobra.Command {
	var flags rankingFlags
	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Show today's focus queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			var out struct {
				Items []focusItem `json:"items"`
			}
			raw, err := c.Get("/focus", flags.query(cmd), &out)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(raw)
			}
			printFocus(os.Stdout, out.Items)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func segmentsCmd() *cobra.Command {
	var flags rankingFlags
	cmd := &cobra.Command{
		Use:   "segments",
		Short: "Show per-segment outreach queues",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			var out struct {
				Segments []segmentQueue `json:"segments"`
			}
			raw, err := c.Get("/segments", flags.query(cmd), &out)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(raw)
			}
			printSegments(os.Stdout, out.Segments)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func reviewCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Show the weekly review",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			q := url.Values{}
			if days > 0 {
				q.Set("days", strconv.Itoa(days))
			}
			var out weeklyReview
			raw, err := c.Get("/review", q, &out)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(raw)
			}
			printReview(os.Stdout, out)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "window size in days (server default when 0)")
	return cmd
}

func staleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stale",
		Short: "List contacts past their contact cadence",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			raw, err := c.Get("/stale", nil, nil)
			if err != nil {
				return err
			}
			return printJSON(raw)
		},
	}
}

func upcomingCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List upcoming birthdays and other important dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			raw, err := c.Get("/upcoming", url.Values{"days": {strconv.Itoa(days)}}, nil)
			if err != nil {
				return err
			}
			return printJSON(raw)
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "horizon in days")
	return cmd
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health [contact-id]",
		Short: "Show the relationship health of one contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			raw, err := c.Get("/contacts/"+url.PathEscape(args[0])+"/health", nil, nil)
			if err != nil {
				return err
			}
			return printJSON(raw)
		},
	}
}

func logCmd() *cobra.Command {
	var convType string
	cmd := &cobra.Command{
		Use:   "log [contact-id] [content]",
		Short: "Log a conversation with a contact",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			payload := map[string]string{
				"content": strings.Join(args[1:], " "),
				"type":    convType,
			}
			var out logResult
			raw, err := c.Post("/contacts/"+url.PathEscape(args[0])+"/conversations", payload, &out)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(raw)
			}
			printLogResult(os.Stdout, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&convType, "type", "other", "conversation type (call, text, coffee, ...)")
	return cmd
}
