package cmd

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"qstack-client/analytics"
	"qstack-client/api"
	"qstack-client/config"
	"qstack-client/devserver"
	"qstack-client/monitoring"
	"qstack-client/services"
	"qstack-client/ui"
	"qstack-client/utils"
)

// Start runs the TUI client, or the dev backend when invoked as
// "qstack-client serve".
func Start() error {
	cfg := config.LoadConfig()

	if len(os.Args) > 1 && os.Args[1] == "serve" {
		return startServer(cfg)
	}
	return startClient(cfg)
}

func startServer(cfg *config.Config) error {
	srv := devserver.New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleShutdown(cancel)
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if cfg.EnableMetrics {
		go func() {
			if err := monitoring.Serve(":" + cfg.MetricsPort); err != nil {
				log.Printf("metrics server: %v", err)
			}
		}()
	}

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func startClient(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleShutdown(cancel)

	client := api.NewClient(cfg.BaseURL, cfg.HTTPTimeout)

	var src services.TicketSource
	if cfg.PubNubSubscribeKey != "" {
		src = services.NewPushSource(ctx, client, cfg)
	} else {
		src = services.NewPollSource(client)
	}

	var collector services.Analytics
	if c := analytics.NewCollector(cfg); c != nil {
		collector = c
	}
	users := services.NewUserStore(client, collector)
	queue := services.NewQueueService(src, client, cfg, utils.Bell{})
	graph := services.NewGraphService(src, users)

	if cfg.EnableMetrics {
		go func() {
			if err := monitoring.Serve(":" + cfg.MetricsPort); err != nil {
				log.Printf("metrics server: %v", err)
			}
		}()
	}

	app := ui.NewApp(ctx, cfg, users, queue, graph)
	program := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	_, err := program.Run()
	return err
}

// handleShutdown handles graceful shutdown.
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
