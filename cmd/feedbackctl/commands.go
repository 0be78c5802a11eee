package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tbourn/feedback-hub/internal/client"
	"github.com/tbourn/feedback-hub/internal/domain"
	"github.com/tbourn/feedback-hub/internal/services"
	"github.com/tbourn/feedback-hub/internal/tui"
)

// --- demo ---

func newDemoCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo [on|off|status]",
		Short: "Switch between the API and the built-in sample dataset",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := client.LoadState(opts.statePath)
			if err != nil {
				return err
			}
			action := "status"
			if len(args) == 1 {
				action = strings.ToLower(args[0])
			}
			switch action {
			case "on", "off":
				st.DemoMode = action == "on"
				if err := client.SaveState(opts.statePath, st); err != nil {
					return err
				}
			case "status":
			default:
				return fmt.Errorf("unknown demo action %q (want on, off or status)", action)
			}
			state := "off"
			if st.DemoMode {
				state = "on"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "demo mode: %s\n", state)
			return nil
		},
	}
	return cmd
}

// --- report ---

func newReportCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Interactive feedback report",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.open()
			if err != nil {
				return err
			}
			p := tea.NewProgram(tui.New(cmd.Context(), c, c.Demo()), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
}

// --- feedback ---

func newFeedbackCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Manage feedback entries",
	}

	var in domain.FeedbackInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a manual feedback entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.open()
			if err != nil {
				return err
			}
			fb, err := c.CreateFeedback(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s: %s\n", fb.ID, fb.Title)
			return nil
		},
	}
	add.Flags().StringVar(&in.Title, "title", "", "title (required)")
	add.Flags().StringVar(&in.Description, "description", "", "description")
	add.Flags().StringVar(&in.Priority, "priority", "", "low, medium or high")
	add.Flags().StringSliceVar(&in.Tags, "tag", nil, "tag (repeatable)")
	add.Flags().StringVar(&in.CustomerName, "customer", "", "customer name")
	_ = add.MarkFlagRequired("title")

	latest := &cobra.Command{
		Use:   "latest",
		Short: "Show the most frequent recent feedback titles",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.open()
			if err != nil {
				return err
			}
			items, err := c.LatestItems(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			heading(w, "Latest items", c.Demo())
			for _, it := range items {
				fmt.Fprintf(w, "%4d  %s\n", it.Count, it.Title)
			}
			return nil
		},
	}

	cmd.AddCommand(add, latest)
	return cmd
}

// --- insights ---

func newInsightsCmd(opts *globalOptions) *cobra.Command {
	var (
		limit  int
		window string
	)
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "List active insights",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.open()
			if err != nil {
				return err
			}
			rows, err := c.Insights(cmd.Context(), limit, window)
			if err != nil {
				return err
			}
			heading(cmd.OutOrStdout(), "Insights", c.Demo())
			renderInsights(cmd.OutOrStdout(), rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (0 = all)")
	cmd.Flags().StringVar(&window, "window", services.WindowLastMonth, "lastMonth or all")

	reject := &cobra.Command{
		Use:   "reject <id>",
		Short: "Hide an insight",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.open()
			if err != nil {
				return err
			}
			if err := c.RejectInsight(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rejected %s\n", args[0])
			return nil
		},
	}

	var org domain.OrgRef
	convert := &cobra.Command{
		Use:   "convert <id>",
		Short: "Turn an insight into a backlog opportunity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.open()
			if err != nil {
				return err
			}
			op, err := c.ConvertInsight(cmd.Context(), args[0], org)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "opportunity %s created in %s\n", op.ID, op.Status)
			return nil
		},
	}
	convert.Flags().StringVar(&org.TribeID, "tribe", "", "tribe id")
	convert.Flags().StringVar(&org.SquadID, "squad", "", "squad id (requires --tribe)")

	tags := &cobra.Command{
		Use:   "tags <id> <comma,separated,tags>",
		Short: "Replace an insight's tags",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.open()
			if err != nil {
				return err
			}
			in, err := c.UpdateInsightTags(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", in.ID, strings.Join(in.Tags, ", "))
			return nil
		},
	}

	cmd.AddCommand(reject, convert, tags)
	return cmd
}

// --- board ---

func newBoardCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the roadmap board",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.open()
			if err != nil {
				return err
			}
			b, err := c.Board(cmd.Context())
			if err != nil {
				return err
			}
			heading(cmd.OutOrStdout(), "Roadmap", c.Demo())
			renderBoard(cmd.OutOrStdout(), b)
			return nil
		},
	}

	var in domain.OpportunityInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Add an opportunity to the backlog",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.open()
			if err != nil {
				return err
			}
			op, err := c.CreateOpportunity(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "opportunity %s created in %s\n", op.ID, op.Status)
			return nil
		},
	}
	add.Flags().StringVar(&in.Title, "title", "", "title (required)")
	add.Flags().StringVar(&in.Description, "description", "", "description")
	add.Flags().StringVar(&in.TribeID, "tribe", "", "tribe id")
	add.Flags().StringVar(&in.SquadID, "squad", "", "squad id (requires --tribe)")
	_ = add.MarkFlagRequired("title")

	cmd.AddCommand(add)
	return cmd
}

// --- tribes ---

func newTribesCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tribes",
		Short: "List tribes",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.open()
			if err != nil {
				return err
			}
			rows, err := c.Tribes(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			heading(w, "Tribes", c.Demo())
			for _, t := range rows {
				fmt.Fprintf(w, "%s  %s\n", dimStyle.Render(t.ID), t.Name)
			}
			return nil
		},
	}

	var in domain.TribeInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a tribe",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.open()
			if err != nil {
				return err
			}
			t, err := c.CreateTribe(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tribe %s created\n", t.ID)
			return nil
		},
	}
	add.Flags().StringVar(&in.Name, "name", "", "name (required)")
	add.Flags().StringVar(&in.Description, "description", "", "description")
	_ = add.MarkFlagRequired("name")

	cmd.AddCommand(add)
	return cmd
}

// --- run ---

func newRunCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "run <function>",
		Short:     "Run an aggregation function",
		Long:      "Run one of: generate-latest-items, generate-insights, analyze-topics.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{client.FnGenerateLatestItems, client.FnGenerateInsights, client.FnAnalyzeTopics},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.open()
			if err != nil {
				return err
			}
			res, err := c.RunFunction(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, res.Message)
			switch args[0] {
			case client.FnGenerateLatestItems:
				fmt.Fprintf(w, "items generated: %d\n", res.ItemsGenerated)
			case client.FnGenerateInsights:
				fmt.Fprintf(w, "insights generated: %d\n", res.InsightsGenerated)
			case client.FnAnalyzeTopics:
				fmt.Fprintf(w, "feedbacks analyzed: %d, topics found: %d\n", res.FeedbacksAnalyzed, res.TopicsFound)
			}
			return nil
		},
	}
}
