package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/b3flow/ibovscan/internal/cleanup"
	"github.com/b3flow/ibovscan/internal/config"
	"github.com/b3flow/ibovscan/internal/convert"
	"github.com/b3flow/ibovscan/internal/export"
	"github.com/b3flow/ibovscan/internal/logger"
	"github.com/b3flow/ibovscan/internal/pipeline"
	"github.com/b3flow/ibovscan/internal/scheduler"
	"github.com/b3flow/ibovscan/internal/shutdown"
	"github.com/b3flow/ibovscan/internal/storage"
	"github.com/b3flow/ibovscan/pkg/scraper"
)

var (
	version = "1.0.0"

	// Global flags
	configFile string
	verbose    bool

	// Scrape flags
	targetURL string
	maxPages  int
	timeout   int
	headless  bool
	outDir    string

	// History flags
	historyCount int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ibovscan",
		Short: "ibovscan - B3 IBOV constituent scraper",
		Long: `ibovscan collects the theoretical portfolio of the IBOV index from the
B3 day page, walking every pagination page with a headless browser, and
ships the results through a CSV -> SQLite -> object storage pipeline.`,
		Version: version,
	}

	scrapeCmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape the constituent table to a CSV file",
		RunE:  runScrape,
	}

	pipelineCmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Run the full pipeline once",
		Long:  "Scrape, convert to SQLite, upload to object storage, and clean up local artifacts.",
		RunE:  runPipeline,
	}

	convertCmd := &cobra.Command{
		Use:   "convert [dir]",
		Short: "Load exported CSV files into the SQLite staging database",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConvert,
	}

	uploadCmd := &cobra.Command{
		Use:   "upload [dir]",
		Short: "Upload local artifacts to object storage",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runUpload,
	}

	cleanupCmd := &cobra.Command{
		Use:   "cleanup [dir]",
		Short: "Remove local run artifacts",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCleanup,
	}

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on weekdays at the configured time",
		RunE:  runSchedule,
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pipeline runs",
		RunE:  runHistory,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Scraper configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	scrapeCmd.Flags().StringVar(&targetURL, "url", "", "Target URL (default: the B3 IBOV day page)")
	scrapeCmd.Flags().IntVar(&maxPages, "max-pages", 50, "Hard ceiling on pages visited")
	scrapeCmd.Flags().IntVarP(&timeout, "timeout", "t", 30, "Render wait timeout in seconds")
	scrapeCmd.Flags().BoolVar(&headless, "headless", true, "Run the browser headless")
	scrapeCmd.Flags().StringVarP(&outDir, "out", "o", "data", "Output directory")

	historyCmd.Flags().IntVarP(&historyCount, "count", "n", 10, "Number of runs to show")

	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(pipelineCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(historyCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(app *config.App) *logger.Logger {
	level := logger.ParseLevel(app.LogLevel)
	if verbose {
		level = logger.DebugLevel
	}
	return logger.New(logger.Config{Level: level, Pretty: true, Component: "ibovscan"})
}

// scraperConfig builds the scraper configuration from the environment, the
// optional config file, and command-line overrides, in that order.
func scraperConfig(cmd *cobra.Command, app *config.App) (*scraper.Config, error) {
	cfg := scraper.DefaultConfig()
	cfg.TargetURL = app.TargetURL
	cfg.MaxPages = app.MaxPages
	cfg.Browser.Headless = app.Headless

	if configFile != "" {
		fileCfg, err := scraper.LoadFromFile(configFile)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if cmd.Flags().Changed("url") {
		cfg.TargetURL = targetURL
	}
	if cmd.Flags().Changed("max-pages") {
		cfg.MaxPages = maxPages
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = time.Duration(timeout) * time.Second
	}
	if cmd.Flags().Changed("headless") {
		cfg.Browser.Headless = headless
	}
	cfg.Verbose = verbose

	return cfg, cfg.Validate()
}

func runScrape(cmd *cobra.Command, args []string) error {
	app, err := config.Load()
	if err != nil {
		return err
	}
	cfg, err := scraperConfig(cmd, app)
	if err != nil {
		return err
	}

	sc, err := scraper.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	dataset, err := sc.Run(ctx)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	path := filepath.Join(outDir, export.Filename(start))
	if err := export.WriteCSV(path, dataset.Records); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	printSummary(dataset, time.Since(start), path)
	return nil
}

func runPipeline(cmd *cobra.Command, args []string) error {
	app, err := config.Load()
	if err != nil {
		return err
	}
	cfg, err := scraperConfig(cmd, app)
	if err != nil {
		return err
	}
	log := newLogger(app)

	runlog, err := storage.OpenRunLog(storage.DefaultRunLogPath(app.DataDir))
	if err != nil {
		return err
	}
	defer runlog.Close()

	ctx, cancel := signalContext()
	defer cancel()

	return buildPipeline(app, cfg, log, runlog).Run(ctx, app.DataDir)
}

// buildPipeline assembles the stage chain. Upload and cleanup only join
// when object storage credentials are configured; a laptop run without
// MinIO still scrapes and converts.
func buildPipeline(app *config.App, cfg *scraper.Config, log *logger.Logger, runlog *storage.RunLog) *pipeline.Pipeline {
	stages := []pipeline.Stage{
		pipeline.NewScrapeStage(cfg, log),
		pipeline.NewConvertStage(log),
	}
	if app.UploadConfigured() {
		stages = append(stages,
			pipeline.NewUploadStage(s3Config(app), log),
			pipeline.NewCleanupStage(log, app.Retention),
		)
	} else {
		log.Warn("Object storage not configured; skipping upload and cleanup stages")
	}
	return pipeline.New(log, runlog, stages...)
}

func s3Config(app *config.App) storage.S3Config {
	return storage.S3Config{
		Endpoint:  app.MinioURL,
		AccessKey: app.MinioUser,
		SecretKey: app.MinioPass,
		Bucket:    app.MinioBucket,
		UseSSL:    app.MinioSSL,
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	app, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(app)

	dir := app.DataDir
	if len(args) > 0 {
		dir = args[0]
	}

	conv, err := convert.Open(filepath.Join(dir, convert.StampedDBName(time.Now())), log)
	if err != nil {
		return err
	}
	defer conv.Close()

	n, err := conv.ConvertDir(dir)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d row(s)\n", n)
	return nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	app, err := config.Load()
	if err != nil {
		return err
	}
	if !app.UploadConfigured() {
		return fmt.Errorf("object storage is not configured (MINIO_URL, MINIO_USER, MINIO_PASS)")
	}
	log := newLogger(app)

	dir := app.DataDir
	if len(args) > 0 {
		dir = args[0]
	}

	ctx, cancel := signalContext()
	defer cancel()

	up, err := storage.NewUploader(ctx, s3Config(app), log)
	if err != nil {
		return err
	}
	if err := up.EnsureBucket(ctx); err != nil {
		return err
	}

	n, err := up.UploadDir(ctx, dir, storage.DateFolder(time.Now()))
	if err != nil {
		return err
	}
	fmt.Printf("Uploaded %d file(s)\n", n)
	return nil
}

func runCleanup(cmd *cobra.Command, args []string) error {
	app, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(app)

	dir := app.DataDir
	if len(args) > 0 {
		dir = args[0]
	}

	n, err := cleanup.NewSweeper(log, app.Retention).Sweep(dir)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d file(s)\n", n)
	return nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	app, err := config.Load()
	if err != nil {
		return err
	}
	cfg, err := scraperConfig(cmd, app)
	if err != nil {
		return err
	}
	log := newLogger(app)

	runlog, err := storage.OpenRunLog(storage.DefaultRunLogPath(app.DataDir))
	if err != nil {
		return err
	}

	handler := shutdown.New(shutdown.Config{
		Timeout: 2 * time.Minute,
		OnDone: func(elapsed time.Duration, errs []error) {
			log.Infof("Shutdown complete in %s (%d error(s))", elapsed.Round(time.Millisecond), len(errs))
		},
	})

	pipe := buildPipeline(app, cfg, log, runlog)
	job := &pipelineJob{pipe: pipe, dataDir: app.DataDir, ctx: handler.Context()}

	sched := scheduler.New(log)
	if err := sched.AddWeekdayJob(app.ScheduleAt, job); err != nil {
		return err
	}
	sched.Start()

	handler.RegisterFunc("scheduler", sched.Stop)
	handler.Register("runlog", func(context.Context) error { return runlog.Close() })

	log.Infof("Scheduled weekday pipeline at %s; waiting", app.ScheduleAt)
	handler.Wait()
	<-handler.Done()
	return nil
}

// pipelineJob adapts the pipeline to the scheduler's Job interface, bound
// to the daemon's shutdown context.
type pipelineJob struct {
	pipe    *pipeline.Pipeline
	dataDir string
	ctx     context.Context
}

func (j *pipelineJob) Name() string { return "ibov-pipeline" }

func (j *pipelineJob) Run() error {
	return j.pipe.Run(j.ctx, j.dataDir)
}

func runHistory(cmd *cobra.Command, args []string) error {
	app, err := config.Load()
	if err != nil {
		return err
	}

	runlog, err := storage.OpenRunLog(storage.DefaultRunLogPath(app.DataDir))
	if err != nil {
		return err
	}
	defer runlog.Close()

	runs, err := runlog.Recent(historyCount)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs")
		return nil
	}

	for _, run := range runs {
		status := "ok"
		if !run.Succeeded() {
			status = "failed@" + run.FailedStage
		}
		fmt.Printf("%s  %-12s  records=%-4d pages=%-2d reason=%-15s uploaded=%d  %s\n",
			run.StartedAt.Format("2006-01-02 15:04"),
			status, run.Records, run.Pages, run.Reason, run.Uploaded,
			run.Error)
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	handler := shutdown.New(shutdown.Config{})
	go handler.Wait()
	return handler.Context(), func() { handler.Trigger() }
}

func printSummary(dataset *scraper.Dataset, duration time.Duration, path string) {
	summary := dataset.Summarize()

	fmt.Println()
	fmt.Printf("Duration:      %v\n", duration.Round(time.Second))
	fmt.Printf("Records:       %d\n", summary.TotalRecords)
	fmt.Printf("Unique codes:  %d\n", summary.UniqueCodes)
	fmt.Printf("Pages visited: %d\n", summary.PagesVisited)
	fmt.Printf("Stop reason:   %s\n", dataset.Reason)
	fmt.Printf("Output:        %s\n", path)
}
