package app

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"shortcutreport/internal/config"
	"shortcutreport/internal/pipeline"
)

func Main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

// Run executes one CLI invocation and returns the process exit code.
func Run(ctx context.Context, args []string, stdout io.Writer) int {
	root := newRootCmd(stdout, config.LoadConfig)
	root.SetArgs(args)
	root.SetOut(stdout)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, pipeline.ErrNoItems) {
			log.Println("No data fetched from Shortcut.")
		} else {
			log.Printf("error: %v", err)
		}
		return 1
	}
	return 0
}

func newRootCmd(stdout io.Writer, loadConfig func() config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "shortcut-report",
		Short: "Shortcut report generator",
		Long: `Builds Markdown reports from Shortcut stories and epics.

Reports are grouped by team and workflow state, optionally summarised by an
LLM, written to report_output_dir, recorded in the run history and uploaded
to Slack when a bot token and channel are configured.`,
		SilenceErrors: true,
	}

	var r *runner
	prepare := func(cmd *cobra.Command) *runner {
		cmd.SilenceUsage = true
		if r == nil {
			r = newRunner(loadConfig(), stdout)
		}
		return r
	}

	root.AddCommand(dailyCmd(prepare))
	root.AddCommand(weeklyGoCmd(prepare))
	root.AddCommand(weeklyDoneCmd(prepare))
	root.AddCommand(historyCmd(prepare))
	root.AddCommand(scheduleCmd(prepare))
	return root
}

func dailyCmd(prepare func(*cobra.Command) *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "daily <YYYY-MM-DD>",
		Short: "Report stories and epics updated on a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return prepare(cmd).runDaily(cmd.Context(), args[0])
		},
	}
}

func weeklyGoCmd(prepare func(*cobra.Command) *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "weekly-go",
		Short: "Weekly release report of stories that reached Go in the last 7 days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return prepare(cmd).runWeeklyGo(cmd.Context())
		},
	}
}

func weeklyDoneCmd(prepare func(*cobra.Command) *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "weekly-done",
		Short: "Weekly release and dogfooding report since last Friday",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return prepare(cmd).runWeeklyDone(cmd.Context())
		},
	}
}

func historyCmd(prepare func(*cobra.Command) *runner) *cobra.Command {
	var kind string
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded report runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return prepare(cmd).printHistory(kind, limit)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only show runs of this kind (daily, weekly-go, weekly-done)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show")
	return cmd
}

func scheduleCmd(prepare func(*cobra.Command) *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the weekly reports on their cron schedules until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return prepare(cmd).runSchedule(cmd.Context())
		},
	}
}
