package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dvloznov/statement-insights/internal/app"
	"github.com/dvloznov/statement-insights/internal/config"
	"github.com/dvloznov/statement-insights/internal/gcs"
	"github.com/dvloznov/statement-insights/internal/logger"
	"github.com/dvloznov/statement-insights/internal/report"
	"github.com/dvloznov/statement-insights/internal/source"
	"github.com/dvloznov/statement-insights/internal/statement"
	"github.com/rs/zerolog"
)

// Exit codes.
const (
	exitFailure    = 1
	exitValidation = 2
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitFailure)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(exitFailure)
	}
	log := logger.NewWithLevel(cfg.LogLevel)

	switch os.Args[1] {
	case "analyze":
		runAnalyze(cfg, log)
	case "tax":
		runTax(cfg, log)
	case "sip":
		runSip(cfg, log)
	case "upload":
		runUpload(cfg, log)
	case "chat":
		runChat(cfg, log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(exitFailure)
	}
}

func printUsage() {
	fmt.Println("Statement Insights CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  analyze   Generate the full financial report for a statement")
	fmt.Println("  tax       Compute the tax snapshot of a statement")
	fmt.Println("  sip       Size a monthly SIP from income and expenses")
	fmt.Println("  upload    Upload a statement CSV to GCS")
	fmt.Println("  chat      Ask a question about a saved report")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nStatements may be local paths, gs://bucket/object or")
	fmt.Println("bq://dataset.table?start=YYYY-MM-DD&end=YYYY-MM-DD.")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runAnalyze(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	uri := fs.String("statement", "", "Statement path or URI")
	risk := fs.Float64("risk", cfg.DefaultRisk, "Risk appetite, 0-100")
	out := fs.String("out", "", "Write the report to this file instead of stdout")
	fs.Parse(os.Args[2:])

	if *uri == "" {
		log.Fatal().Msg("Usage: cli analyze -statement PATH [-risk N] [-out FILE]")
	}
	if *risk < 0 || *risk > 100 {
		invalid(log, fmt.Errorf("risk must be between 0 and 100, got %v", *risk))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	table := loadStatement(ctx, cfg, log, *uri)

	gen, err := app.NewGenerator(ctx, cfg)
	if err != nil {
		fail(log, err, "Failed to initialise report generator")
	}

	rep, err := gen.Generate(ctx, table, *risk)
	if err != nil {
		fail(log, err, "Analysis failed")
	}

	writeJSON(log, *out, rep)
}

func runTax(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("tax", flag.ExitOnError)
	uri := fs.String("statement", "", "Statement path or URI")
	fs.Parse(os.Args[2:])

	if *uri == "" {
		log.Fatal().Msg("Usage: cli tax -statement PATH")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	table := loadStatement(ctx, cfg, log, *uri)

	gen, err := app.NewGenerator(ctx, cfg)
	if err != nil {
		fail(log, err, "Failed to initialise report generator")
	}

	snap, err := gen.Tax(ctx, table)
	if err != nil {
		fail(log, err, "Tax snapshot failed")
	}

	writeJSON(log, "", snap)
}

func runSip(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("sip", flag.ExitOnError)
	income := fs.Float64("income", 0, "Monthly income")
	expenses := fs.Float64("expenses", 0, "Monthly expenses")
	event := fs.String("event", "", "Life event (jobChange, wedding, newBaby, homePurchase or free text)")
	risk := fs.Float64("risk", cfg.DefaultRisk, "Risk appetite, 0-100")
	fs.Parse(os.Args[2:])

	if *income < 0 || *expenses < 0 || *risk < 0 || *risk > 100 {
		invalid(log, errors.New("income and expenses must be non-negative and risk between 0 and 100"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	gen, err := app.NewGenerator(ctx, cfg)
	if err != nil {
		fail(log, err, "Failed to initialise report generator")
	}

	writeJSON(log, "", gen.Sip(ctx, report.SipRequest{
		Income:   *income,
		Expenses: *expenses,
		Event:    *event,
		Risk:     *risk,
	}))
}

func runUpload(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", cfg.GCSBucket, "GCS bucket name (or set GCS_BUCKET)")
	objectName := fs.String("object", "", "GCS object name (defaults to statements/YYYY/MM/<uuid>-<filename>)")
	filePath := fs.String("file", "", "Path to local statement CSV")
	fs.Parse(os.Args[2:])

	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}

	if *objectName == "" {
		*objectName = gcs.StatementObjectName(*filePath, time.Now())
	}

	ctx := logger.WithContext(context.Background(), log)

	storage, err := gcs.NewGCSStorageService(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage client")
	}
	defer storage.Close()

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading statement to GCS")

	if err := storage.UploadFile(ctx, *bucketName, *objectName, *filePath); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *filePath, gcs.URI(*bucketName, *objectName))
}

func runChat(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	reportPath := fs.String("report", "", "Path to a report JSON written by 'cli analyze'")
	question := fs.String("question", "", "Question about the report")
	fs.Parse(os.Args[2:])

	if *reportPath == "" || strings.TrimSpace(*question) == "" {
		log.Fatal().Msg("Usage: cli chat -report FILE -question TEXT")
	}

	data, err := os.ReadFile(*reportPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read report")
	}
	var rep report.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		invalid(log, fmt.Errorf("decoding report %s: %w", *reportPath, err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	gen, err := app.NewGenerator(ctx, cfg)
	if err != nil {
		fail(log, err, "Failed to initialise report generator")
	}

	answer, err := gen.Ask(ctx, &rep, *question)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not answer the question")
	}
	fmt.Println(answer)
}

// loadStatement opens only the backend the URI needs.
func loadStatement(ctx context.Context, cfg *config.Config, log zerolog.Logger, uri string) *statement.Table {
	needStorage := strings.HasPrefix(uri, gcs.Scheme)
	needWarehouse := strings.HasPrefix(uri, source.BigQueryScheme)

	backends, err := app.OpenBackends(ctx, cfg, needStorage, needWarehouse)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open statement source")
	}
	defer backends.Close()

	loader := backends.Loader()
	loader.AllowLocal = true
	table, err := loader.Load(ctx, uri)
	if err != nil {
		fail(log, err, "Failed to load statement")
	}
	return table
}

func writeJSON(log zerolog.Logger, path string, v any) {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create output file")
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatal().Err(err).Msg("Failed to write JSON")
	}
	if path != "" {
		log.Info().Str("path", path).Msg("Report written")
	}
}

// fail logs err and exits; statement validation problems use exitValidation.
func fail(log zerolog.Logger, err error, msg string) {
	if statement.IsValidationError(err) {
		invalid(log, err)
	}
	log.Error().Err(err).Msg(msg)
	os.Exit(exitFailure)
}

func invalid(log zerolog.Logger, err error) {
	log.Error().Err(err).Msg("Invalid input")
	os.Exit(exitValidation)
}
