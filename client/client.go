package main

import (
	"bate-papo/infrastructure/rest/client"
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL         string        `envconfig:"CHAT_SERVER_URL" default:"http://localhost:5000"`
	Name              string        `envconfig:"CHAT_NAME" required:"true"`
	LogLevel          string        `envconfig:"LOG_LEVEL" default:"WARN"`
	HeartbeatInterval time.Duration `envconfig:"CHAT_HEARTBEAT_INTERVAL" default:"5s"`
	PollInterval      time.Duration `envconfig:"CHAT_POLL_INTERVAL" default:"3s"`
	Colours           bool          `envconfig:"CHAT_COLOURS" default:"true"`
}

func main() {
	// The main function manages the OS exit code based on run()'s return.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run joins the room, then keeps the participant online and polls the log
// until Ctrl+C. Each stdin line is posted, "@name text" goes privately to name.
func run() (int, error) {
	// 1. Load configuration from environment variables.
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chat := client.NewChatClient(config.ServerURL, config.Name)
	if err := chat.Join(ctx); err != nil {
		return exitRuntime, fmt.Errorf("could not join %s as %s: %w", config.ServerURL, config.Name, err)
	}
	fmt.Printf(">>> Joined %s as %s (Ctrl+C to quit)\n", config.ServerURL, config.Name)

	printer := newPrinter(os.Stdout, config.Name, config.Colours)
	go heartbeat(ctx, log, chat, config.HeartbeatInterval)
	go poll(ctx, log, chat, printer, config.PollInterval)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping client...")
			return exitOK, nil
		case line, ok := <-lines:
			if !ok {
				return exitOK, nil
			}
			to, text, messageType, ok := parseLine(line)
			if !ok {
				continue
			}
			if err := chat.Post(ctx, to, text, messageType); err != nil {
				// The server forgets us after a missed heartbeat, nothing more to do.
				return exitRuntime, fmt.Errorf("posting failed: %w", err)
			}
		}
	}
}

func heartbeat(ctx context.Context, log *slog.Logger, chat *client.ChatClient, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := chat.Heartbeat(ctx); err != nil && ctx.Err() == nil {
				log.Warn("Heartbeat failed", "name", chat.Name(), "error", err)
			}
		}
	}
}

func poll(ctx context.Context, log *slog.Logger, chat *client.ChatClient, p *printer, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		messages, err := chat.Messages(ctx, nil)
		if err != nil && ctx.Err() == nil {
			log.Warn("Polling messages failed", "error", err)
		}
		p.PrintNew(messages)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
