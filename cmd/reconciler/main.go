package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"ar-reconciliation/internal/config"
	"ar-reconciliation/internal/domain"
	"ar-reconciliation/internal/gateway"
	"ar-reconciliation/internal/observability"
	"ar-reconciliation/internal/usecase"
)

func main() {
	// Load .env before anything reads the environment.
	_ = godotenv.Load()

	ledgerFile := flag.String("ledger", "", "Path to the ledger/invoice dataset (CSV or XLSX) (required)")
	bankFile := flag.String("bank", "", "Path to the bank/payment dataset (CSV or XLSX) (required)")
	configFile := flag.String("config", "", "Path to a YAML config file (optional)")
	exportFile := flag.String("export", "", "Path to write the XLSX report workbook (optional)")
	threshold := flag.Float64("threshold", 0, "Override the match score threshold [0,1]")
	tolerance := flag.Float64("tolerance", 0, "Override the amount tolerance in currency units")
	grouping := flag.Bool("grouping", false, "Override: enable the many-to-one grouping fallback")
	allowVariance := flag.Bool("allow-variance", false, "Override: bypass the amount-tolerance gate")
	dateWindow := flag.Int("date-window", 0, "Override the date window in days")
	useCustomer := flag.Bool("use-customer", true, "Override: include customer-name similarity in scoring")
	quiet := flag.Bool("quiet", false, "Suppress the progress indicator")
	flag.Parse()

	if *ledgerFile == "" || *bankFile == "" {
		fmt.Println("Error: flags -ledger and -bank are required.")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadOrEnv(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logging)

	settings := cfg.Settings.ToDomain()
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "threshold":
			settings.Threshold = *threshold
		case "tolerance":
			settings.Tolerance = decimal.NewFromFloat(*tolerance)
		case "grouping":
			settings.Grouping = *grouping
		case "allow-variance":
			settings.AllowVariance = *allowVariance
		case "date-window":
			settings.DateWindow = *dateWindow
		case "use-customer":
			settings.UseCustomer = *useCustomer
		}
	})
	if err := settings.Validate(); err != nil {
		logger.Error("invalid settings", "error", err)
		os.Exit(1)
	}

	// Ctrl-C cancels cooperatively between chunks; a cancelled run commits
	// no results.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Dependency wiring ---
	reader := gateway.NewSpreadsheetReader()
	uc := usecase.NewReconciliationUseCase(reader, settings, logger)
	uc.ExtendDictionaries(cfg.Dictionaries.Ledger, cfg.Dictionaries.Transaction)
	uc.SetMappingOverrides(usecase.MappingOverrides{
		Ledger:      domain.FieldMapping(cfg.Mappings.Ledger),
		Transaction: domain.FieldMapping(cfg.Mappings.Transaction),
	})
	if !*quiet {
		uc.OnProgress(func(percent int, stage string) {
			fmt.Fprintf(os.Stderr, "\r[%3d%%] %s...", percent, stage)
			if percent >= 100 {
				fmt.Fprintln(os.Stderr)
			}
		})
	}

	report, err := uc.Run(ctx, *ledgerFile, *bankFile)
	if err != nil {
		var missing *domain.ErrMissingFields
		if errors.As(err, &missing) {
			logger.Error("unable to map dataset columns; resolve them via the mappings section of the config file",
				"dataset", missing.Dataset,
				"fields", missing.Fields,
			)
			os.Exit(1)
		}
		logger.Error("reconciliation failed", "error", err)
		os.Exit(1)
	}

	if report.Summary.Outcome == domain.OutcomeCancelled {
		logger.Warn("run cancelled; no results were committed")
	}

	output, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Error("failed to generate JSON report", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(output))

	exportPath := *exportFile
	if exportPath == "" {
		exportPath = cfg.Export.Path
	}
	if exportPath != "" && report.Summary.Outcome == domain.OutcomeCompleted {
		if err := gateway.NewExcelReportWriter().Write(report, exportPath); err != nil {
			logger.Error("failed to export report workbook", "error", err)
			os.Exit(1)
		}
		logger.Info("report workbook exported", "path", exportPath)
	}
}
