package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"invoiceterm/internal/config"
	"invoiceterm/internal/controller"
	"invoiceterm/internal/hub"
	"invoiceterm/internal/logger"
	"invoiceterm/internal/model"
	"invoiceterm/internal/tui"
)

func main() {
	var (
		envFile   = flag.String("env-file", "", "load configuration from this .env file first")
		endpoint  = flag.String("endpoint", "", "invoice processing endpoint (default $"+config.EnvEndpoint+")")
		file      = flag.String("file", "", "upload this CSV once, print the results and exit")
		downloads = flag.String("download-dir", "", "directory for downloaded invoices")
		logFile   = flag.String("log-file", "", "log file path")
		logLevel  = flag.String("log-level", "", "debug, info, warn or error")
	)
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg.Apply(config.Overrides{
		Endpoint:    *endpoint,
		DownloadDir: *downloads,
		LogFile:     *logFile,
		LogLevel:    *logLevel,
	})

	log, err := logger.New(cfg.Logger.File, cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open log file: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	client, err := hub.NewClient(cfg.Endpoint, hub.WithLogger(log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid endpoint: %v\n", err)
		os.Exit(1)
	}
	log.Info("Starting invoiceterm",
		zap.String("endpoint", client.BaseURL()),
		zap.String("download_dir", cfg.DownloadDir),
	)

	if *file != "" {
		if !uploadOnce(client, *file, log) {
			log.Sync()
			os.Exit(1)
		}
		return
	}

	appModel := tui.NewAppModel(client, tui.Options{
		Endpoint:    client.BaseURL(),
		DownloadDir: cfg.DownloadDir,
		Logger:      log,
	})
	p := tea.NewProgram(appModel, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error("Program exited with error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Alas, there's been an error: %v\n", err)
		os.Exit(1)
	}
}

// uploadOnce drives the upload controller without a terminal UI and reports
// whether results were shown.
func uploadOnce(client *hub.Client, path string, log *zap.Logger) bool {
	f, err := hub.FileFromPath(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}

	ctrl := controller.New(
		controller.AlertFunc(func(message string) {
			fmt.Fprintln(os.Stderr, message)
		}),
		controller.WithLogger(log),
	)
	if err := ctrl.Select([]model.File{f}); err != nil {
		return false
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctrl.Submit(ctx, client)

	v := ctrl.View()
	if !v.ResultsVisible {
		return false
	}
	fmt.Print(tui.RenderResults(v))
	return true
}
