package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"ewintr.nl/vidqa/client"
	"ewintr.nl/vidqa/prefs"
	"ewintr.nl/vidqa/store"
	"golang.org/x/exp/slog"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr))

	api := client.New(getParam("VIDQA_API_URL", "http://localhost:8000/api"), logger)

	prefDB, err := prefs.New(getParam("VIDQA_DB_PATH", "vidqa.db"))
	if err != nil {
		logger.Error("unable to open preferences database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer prefDB.Close()

	pollInterval, err := time.ParseDuration(getParam("VIDQA_POLL_INTERVAL", "5s"))
	if err != nil {
		logger.Error("unable to parse poll interval", slog.String("error", err.Error()))
		os.Exit(1)
	}

	videos := store.NewVideoStore(api, logger)
	chat := store.NewChatStore(api, logger)
	quiz := store.NewQuizStore(api, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := videos.List(ctx); err != nil {
		logger.Error("unable to list videos", slog.String("error", err.Error()))
	}

	go pollWorking(ctx, videos, pollInterval)
	logger.Info("status poller started")

	cli := NewCLI(api, videos, chat, quiz, prefDB, logger)
	done := make(chan struct{})
	go func() {
		cli.Run(ctx, os.Stdin, os.Stdout)
		close(done)
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	select {
	case <-interrupt:
	case <-done:
	}

	logger.Info("client stopped")
}

// pollWorking drives the video store's status polling. The store owns no
// timer, scheduling lives here with the caller.
func pollWorking(ctx context.Context, videos *store.VideoStore, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, id := range videos.Working() {
				videos.PollStatus(ctx, id)
			}
		}
	}
}

func getParam(param, def string) string {
	if val, ok := os.LookupEnv(param); ok {
		return val
	}
	return def
}
