package main

import (
	"context"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/bookwell/scheduler/internal/app"
	"github.com/bookwell/scheduler/internal/fetchhttp"
	"github.com/bookwell/scheduler/internal/schedule"
)

// Drives a scheduling session against a running api-server: publishes
// provider windows, then books, confirms and abandons client holds, and
// reports what happened.
func main() {
	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8080"
	}

	logger := app.NewLogger(os.Getenv("APP_ENV"))
	defer logger.Sync()

	logger.Info("simulate starting", zap.String("api", baseURL))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fetcher := fetchhttp.New(baseURL, logger)
	session := schedule.NewSession(fetcher, schedule.SessionOptions{
		Logger:        logger,
		SweepInterval: 5 * time.Second,
	})
	session.Start(ctx)

	tally := map[string]int{}

	// Provider publishes three windows starting two days out, so the
	// client lead-time rule cannot interfere.
	dayStart := time.Now().UTC().Truncate(time.Hour).Add(49 * time.Hour)
	var published []schedule.TimeWindow
	for i := 0; i < 3; i++ {
		w := schedule.TimeWindow{
			Start: dayStart.Add(time.Duration(i) * 2 * time.Hour),
			End:   dayStart.Add(time.Duration(i)*2*time.Hour + time.Hour),
		}
		if err := session.SelectSlot(w); err != nil {
			logger.Warn("select slot", zap.Error(err))
			continue
		}
		if err := session.ConfirmCreation(ctx); err != nil {
			logger.Warn("publish window", zap.Error(err))
			tally["window_failed"]++
			continue
		}
		published = append(published, w)
		tally["windows_published"]++
	}

	if err := session.Refresh(ctx); err != nil {
		logger.Fatal("refresh provider schedule", zap.Error(err))
	}
	logger.Info("provider schedule ready", zap.Int("events", len(session.Events())))

	if err := session.SwitchMode(ctx, schedule.ModeClient); err != nil {
		logger.Fatal("switch to client mode", zap.Error(err))
	}

	// Clients grab one slot per published window, then confirm or walk
	// away.
	for _, w := range published {
		offset := time.Duration(rand.Intn(4)) * schedule.SlotStep
		slot := schedule.TimeWindow{
			Start: w.Start.Add(offset),
			End:   w.Start.Add(offset + schedule.SlotStep),
		}

		if err := session.SelectSlot(slot); err != nil {
			logger.Warn("select slot", zap.Error(err))
			continue
		}
		if _, ok := session.Prompt(); !ok {
			tally["slots_ignored"]++
			continue
		}
		if err := session.ConfirmCreation(ctx); err != nil {
			tally["holds_rejected"]++
			continue
		}
		tally["holds_created"]++
	}

	for _, ev := range session.Events() {
		if ev.Confirmed {
			continue
		}
		session.SelectEvent(ev)

		switch rand.Intn(3) {
		case 0:
			if err := session.CancelHold(); err != nil {
				logger.Warn("cancel hold", zap.Error(err))
				continue
			}
			tally["holds_cancelled"]++
		case 1:
			// Abandoned: the sweeper will expire it eventually.
			session.DismissPrompt()
			tally["holds_abandoned"]++
		default:
			if err := session.ConfirmHold(ctx); err != nil {
				logger.Warn("confirm hold", zap.Error(err))
				tally["confirm_failed"]++
				continue
			}
			tally["holds_confirmed"]++
		}
	}

	if err := session.Refresh(ctx); err != nil {
		logger.Warn("final refresh", zap.Error(err))
	}

	logger.Info("simulate complete",
		zap.Int("windows_published", tally["windows_published"]),
		zap.Int("holds_created", tally["holds_created"]),
		zap.Int("holds_confirmed", tally["holds_confirmed"]),
		zap.Int("holds_cancelled", tally["holds_cancelled"]),
		zap.Int("holds_abandoned", tally["holds_abandoned"]),
		zap.Int("confirm_failed", tally["confirm_failed"]),
		zap.Int("final_events", len(session.Events())),
	)
}
