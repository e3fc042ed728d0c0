package commands

import (
	"context"
	"fmt"
	"maps"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/quantengine/internal/api"
	"github.com/wonny/quantengine/internal/api/handlers"
	"github.com/wonny/quantengine/internal/dataset"
	"github.com/wonny/quantengine/internal/pipeline"
	"github.com/wonny/quantengine/internal/scheduler"
	"github.com/wonny/quantengine/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the rank, scan and audit jobs on their cron schedules",
	Long: `Starts the scheduler daemon or inspects its jobs.

Subcommands:
  start   - start the scheduler and the ops server
  list    - list the jobs and their next run
  run     - run one job now

Example:
  go run ./cmd/quant scheduler start --assets data/assets.csv --prices data/prices.csv
  go run ./cmd/quant scheduler run scan --assets data/assets.csv --prices data/prices.csv`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Schedules every job and serves the ops endpoints until interrupted.

Jobs (schedules come from the engine config, seconds first):
- rank:  drafts and publishes the rankings (default weekdays 18:30)
- scan:  scans for tactical signals (default weekdays 19:00)
- audit: resolves signals past their horizon (default daily 08:00),
         quoting from --prices or QUOTE_API_URL

Ops endpoints (METRICS_ADDR, default :9090):
  GET  /health
  GET  /metrics
  GET  /api/rankings/latest[/{profile}]
  GET  /api/jobs
  POST /api/jobs/{name}/run`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job immediately and wait for it",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

var (
	schedulerAssets string
	schedulerPrices string
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerCmd.PersistentFlags().StringVar(&schedulerAssets, "assets", "", "instrument universe CSV, reloaded on every run")
	schedulerCmd.PersistentFlags().StringVar(&schedulerPrices, "prices", "", "price history CSV, reloaded on every run")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, orchestrator, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	var server *api.Server
	if a.cfg.MetricsEnabled {
		var health handlers.HealthChecker
		if a.db != nil {
			health = a.db
		}
		router := api.NewRouter(api.Handlers{
			Health:   handlers.NewHealthHandler(health, "quant-engine"),
			Rankings: handlers.NewRankingHandler(orchestrator, a.log),
			Jobs:     handlers.NewJobHandler(sched, a.log),
		}, a.registry, a.log)
		server = api.New(a.cfg.MetricsAddr, a.log, router)

		go func() {
			if err := server.Start(); err != nil {
				a.log.WithError(err).Error("Ops server stopped")
				stop()
			}
		}()
	}

	sched.Start()

	out := cmd.OutOrStdout()
	printSuccess(out, "Scheduler started")
	for _, name := range sched.GetAllJobs() {
		next, _ := sched.NextRun(name)
		printKeyValue(out, name, next.Format(time.RFC3339))
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	<-ctx.Done()

	fmt.Fprintln(out, "\nShutting down scheduler...")
	sched.Stop()
	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	printSuccess(out, "Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, _, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	stats := sched.GetJobStats()
	rows := make([][]string, 0, len(stats))
	for _, name := range sched.GetAllJobs() {
		rows = append(rows, []string{name, stats[name].Schedule})
	}
	printTable(cmd.OutOrStdout(), []string{"Job", "Schedule"}, rows)

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, _, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	result, err := sched.RunJob(cmd.Context(), jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	out := cmd.OutOrStdout()
	printKeyValue(out, "Job", result.JobName)
	printKeyValue(out, "Attempts", fmt.Sprint(result.Attempts))
	printKeyValue(out, "Duration", result.Duration.String())
	for _, key := range slices.Sorted(maps.Keys(result.Outcome)) {
		printKeyValue(out, key, fmt.Sprint(result.Outcome[key]))
	}
	if !result.Success {
		return fmt.Errorf("job %s failed: %s", jobName, result.Error)
	}
	printSuccess(out, "Job completed")
	return nil
}

// initScheduler registers the jobs. The rank and scan jobs need --assets.
func initScheduler(a *app) (*scheduler.Scheduler, *pipeline.Orchestrator, error) {
	loc, err := a.engine.Schedule.Location()
	if err != nil {
		return nil, nil, err
	}

	schedCfg := scheduler.DefaultConfig()
	schedCfg.Location = loc
	sched := scheduler.New(schedCfg, a.metrics, a.log)

	source := dataset.Files{AssetsPath: schedulerAssets, PricesPath: schedulerPrices}
	schedule := a.engine.Schedule
	orchestrator := a.orchestrator()

	if schedulerAssets != "" {
		if err := sched.AddJob(jobs.NewRankJob(orchestrator, source, a.engine.Macro, a.engineHash, schedule.Rank, a.log)); err != nil {
			return nil, nil, err
		}
		if err := sched.AddJob(jobs.NewScanJob(a.scanner(), source, schedule.Scan, a.log)); err != nil {
			return nil, nil, err
		}
	} else {
		a.log.Warn("No --assets given, rank and scan jobs are not scheduled")
	}

	if quotes, err := a.quoteSource(schedulerPrices); err == nil {
		if err := sched.AddJob(jobs.NewAuditJob(a.auditor(quotes), schedule.Audit, a.log)); err != nil {
			return nil, nil, err
		}
	} else {
		a.log.WithError(err).Warn("Audit job is not scheduled")
	}

	return sched, orchestrator, nil
}
