package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"shortcutreport/internal/config"
	"shortcutreport/internal/domain"
	"shortcutreport/internal/httpx"
	"shortcutreport/internal/integrations/llm"
	"shortcutreport/internal/integrations/shortcut"
	slackbot "shortcutreport/internal/integrations/slack"
	"shortcutreport/internal/pipeline"
	"shortcutreport/internal/schedule"
	"shortcutreport/internal/storage/sqlite"
)

type runner struct {
	cfg        config.Config
	httpClient *http.Client
	stdout     io.Writer
}

func newRunner(cfg config.Config, stdout io.Writer) *runner {
	appliedHTTPTimeout := httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)
	log.Printf(
		"Config loaded. ShortcutBaseURL=%s PageSize=%d MaxPages=%d LLMProvider=%s OutputDir=%s DBPath=%s Slack=%t ExternalHTTPTimeout=%s",
		cfg.ShortcutBaseURL,
		cfg.ShortcutPageSize,
		cfg.ShortcutMaxPages,
		llm.ResolveProvider(llmSettings(cfg)),
		cfg.ReportOutputDir,
		cfg.DBPath,
		cfg.SlackConfigured(),
		appliedHTTPTimeout,
	)
	return &runner{cfg: cfg, httpClient: httpx.ExternalHTTPClient(), stdout: stdout}
}

func llmSettings(cfg config.Config) llm.Settings {
	s := llm.Settings{
		Provider:          cfg.LLMProvider,
		Model:             cfg.LLMModel,
		RequestDelay:      cfg.RequestDelay(),
		OpenAIAPIKey:      cfg.OpenAIAPIKey,
		OpenAIOrgID:       cfg.OpenAIOrgID,
		OpenAIBaseURL:     cfg.OpenAIBaseURL,
		PortkeyAPIKey:     cfg.PortkeyAPIKey,
		PortkeyVirtualKey: cfg.PortkeyVirtualKey,
		PortkeyBaseURL:    cfg.PortkeyBaseURL,
		AnthropicAPIKey:   cfg.AnthropicAPIKey,
	}
	switch {
	case cfg.LLMTemperature != nil:
		s.Temperature = *cfg.LLMTemperature
	case llm.ResolveProvider(s) == llm.ProviderOpenAI:
		s.Temperature = 0.7
	}
	return s
}

// deps wires the tracker and summarizer for a report run. It fails when the
// tracker token is missing.
func (r *runner) deps() (pipeline.Deps, string, error) {
	if err := r.cfg.RequireTracker(); err != nil {
		return pipeline.Deps{}, "", err
	}
	tracker := shortcut.NewClient(r.cfg.ShortcutBaseURL, r.cfg.ShortcutAPIToken,
		shortcut.WithHTTPClient(r.httpClient),
		shortcut.WithPageSize(r.cfg.ShortcutPageSize),
		shortcut.WithMaxPages(r.cfg.ShortcutMaxPages),
	)
	summarizer, provider := llm.New(llmSettings(r.cfg), r.httpClient)
	return pipeline.Deps{
		Tracker:    tracker,
		Summarizer: summarizer,
		OutputDir:  r.cfg.ReportOutputDir,
		Stdout:     r.stdout,
	}, provider, nil
}

func (r *runner) runDaily(ctx context.Context, date string) error {
	mappings, err := r.cfg.DailyMappings()
	if err != nil {
		return fmt.Errorf("daily report config: %w", err)
	}
	deps, provider, err := r.deps()
	if err != nil {
		return err
	}
	res, err := pipeline.Daily{Deps: deps, Date: date, Mappings: mappings}.Run(ctx)
	return r.finish(ctx, res, provider, err)
}

func (r *runner) runWeeklyGo(ctx context.Context) error {
	mappings, err := r.cfg.GoMappings()
	if err != nil {
		return fmt.Errorf("weekly-go report config: %w", err)
	}
	deps, provider, err := r.deps()
	if err != nil {
		return err
	}
	res, err := pipeline.WeeklyGo{Deps: deps, Mappings: mappings, GoStateID: r.cfg.GoStateID}.Run(ctx)
	return r.finish(ctx, res, provider, err)
}

func (r *runner) runWeeklyDone(ctx context.Context) error {
	mappings, err := r.cfg.DoneMappings()
	if err != nil {
		return fmt.Errorf("weekly-done report config: %w", err)
	}
	deps, provider, err := r.deps()
	if err != nil {
		return err
	}
	res, err := pipeline.WeeklyDone{
		Deps:           deps,
		Mappings:       mappings,
		GoStateID:      r.cfg.GoStateID,
		TargetStateIDs: r.cfg.DoneTargetStates,
		FormURL:        r.cfg.DogfoodingFormURL,
	}.Run(ctx)
	return r.finish(ctx, res, provider, err)
}

// finish prints the run summary, records it and publishes the files. Only
// the pipeline error decides the exit status.
func (r *runner) finish(ctx context.Context, res pipeline.Result, provider string, runErr error) error {
	if runErr != nil {
		return runErr
	}
	printSummary(r.stdout, res)
	r.recordRun(res, provider)
	if r.cfg.SlackConfigured() && len(res.Files) > 0 {
		pub := slackbot.NewPublisher(r.cfg.SlackBotToken, r.cfg.ReportChannelID)
		pub.Publish(ctx, res.Kind, res.Files)
	}
	return nil
}

func (r *runner) recordRun(res pipeline.Result, provider string) {
	db, err := sqlite.InitDB(r.cfg.DBPath)
	if err != nil {
		log.Printf("history init failed path=%s err=%v", r.cfg.DBPath, err)
		return
	}
	defer db.Close()
	id, err := sqlite.InsertRun(db, sqlite.Run{
		Kind:        res.Kind,
		WindowStart: res.Window.Start,
		WindowEnd:   res.Window.End,
		ItemCount:   res.ItemCount(),
		Files:       res.Files,
		Narrative:   res.Narrative,
		LLMProvider: provider,
	})
	if err != nil {
		log.Printf("history insert failed kind=%s err=%v", res.Kind, err)
		return
	}
	log.Printf("history recorded id=%s kind=%s items=%d", id, res.Kind, res.ItemCount())
}

func printSummary(w io.Writer, res pipeline.Result) {
	if res.Grouped == nil {
		return
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle(fmt.Sprintf("%s %s to %s", res.Kind, res.Window.Start.Format("2006-01-02"), res.Window.End.Format("2006-01-02")))
	tw.AppendHeader(table.Row{"Team", "State", "Stories", "Owners"})
	for _, team := range res.Grouped.Teams() {
		for _, state := range team.States {
			tw.AppendRow(table.Row{team.Name, state.Label, len(state.Items), ownerNames(state.Items, res.Owners)})
		}
	}
	tw.AppendFooter(table.Row{"", "Total", res.ItemCount(), ""})
	tw.Render()
}

func ownerNames(items []domain.Item, owners domain.OwnerDirectory) string {
	seen := make(map[string]bool)
	var names []string
	for _, item := range items {
		for _, id := range item.OwnerIDs {
			name := owners.Name(id)
			if seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func (r *runner) printHistory(kind string, limit int) error {
	db, err := sqlite.InitDB(r.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening history %s: %w", r.cfg.DBPath, err)
	}
	defer db.Close()

	runs, err := sqlite.ListRuns(db, kind, limit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(r.stdout, "No report runs recorded.")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(r.stdout)
	tw.AppendHeader(table.Row{"Created", "Kind", "Window", "Items", "Summary", "Files"})
	for _, run := range runs {
		summary := "no"
		if run.Narrative {
			summary = run.LLMProvider
		}
		tw.AppendRow(table.Row{
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			run.Kind,
			run.WindowStart.Format("2006-01-02") + " to " + run.WindowEnd.Format("2006-01-02"),
			run.ItemCount,
			summary,
			strings.Join(run.Files, "\n"),
		})
	}
	tw.Render()
	return nil
}

func (r *runner) runSchedule(ctx context.Context) error {
	if err := r.cfg.RequireTracker(); err != nil {
		return err
	}
	s, err := schedule.New(r.cfg.Location,
		schedule.Job{Name: pipeline.KindWeeklyGo, Spec: r.cfg.ScheduleWeeklyGo, Run: r.runWeeklyGo},
		schedule.Job{Name: pipeline.KindWeeklyDone, Spec: r.cfg.ScheduleWeeklyDone, Run: r.runWeeklyDone},
	)
	if err != nil {
		return err
	}
	log.Printf("Scheduler started jobs=%d timezone=%s", s.Len(), r.cfg.Location)
	if err := s.Run(ctx); err != nil {
		if errors.Is(err, schedule.ErrNoJobs) {
			return fmt.Errorf("%w: set schedule_weekly_go and/or schedule_weekly_done", err)
		}
		return err
	}
	return nil
}
