package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tbourn/feedback-hub/internal/client"
	"github.com/tbourn/feedback-hub/internal/sysutil"
)

type globalOptions struct {
	api       string
	user      string
	statePath string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:          "feedbackctl",
		Short:        "Browse customer feedback, insights and the roadmap",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			sysutil.SetupLogging("feedbackctl", level, true)

			if opts.statePath == "" {
				p, err := client.DefaultStatePath()
				if err != nil {
					return fmt.Errorf("locate state file: %w", err)
				}
				opts.statePath = p
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.api, "api",
		sysutil.FirstNonEmpty(os.Getenv("FEEDBACK_HUB_API"), "http://localhost:8080/api/v1"), "API base URL")
	root.PersistentFlags().StringVar(&opts.user, "user", os.Getenv("FEEDBACK_HUB_USER"), "user id sent as X-User-ID")
	root.PersistentFlags().StringVar(&opts.statePath, "state", "", "state file (default <config dir>/feedback-hub/state.json)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newDemoCmd(opts),
		newReportCmd(opts),
		newFeedbackCmd(opts),
		newInsightsCmd(opts),
		newBoardCmd(opts),
		newTribesCmd(opts),
		newRunCmd(opts),
	)
	return root
}

func (o *globalOptions) open() (*client.Client, error) {
	c, _, err := client.Open(client.Options{
		BaseURL:   o.api,
		UserID:    o.user,
		StatePath: o.statePath,
	})
	return c, err
}
