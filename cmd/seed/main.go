package main

import (
	"context"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	"github.com/bookwell/scheduler/internal/app"
	"github.com/bookwell/scheduler/internal/config"
	"github.com/bookwell/scheduler/internal/db"
	"github.com/bookwell/scheduler/internal/schedule"
	"github.com/bookwell/scheduler/internal/store"
)

// Seeds a couple of weeks of provider availability: random morning and
// afternoon blocks on business days, aligned to the slot step.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load error: " + err.Error())
	}

	logger := app.NewLogger(cfg.Env)
	defer logger.Sync()

	logger.Info("seed starting")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsDir, logger)
	if err != nil {
		logger.Fatal("migrator init", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	_ = migrator.Close()

	gofakeit.Seed(time.Now().UnixNano())

	repo := store.NewPgRepository(pool)
	created := 0

	day := time.Now().UTC().Truncate(24 * time.Hour).Add(48 * time.Hour)
	for d := 0; d < 14; d++ {
		date := day.Add(time.Duration(d) * 24 * time.Hour)
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}

		for _, block := range dayBlocks(date) {
			if _, err := repo.CreateProviderWindow(ctx, block.Start, block.End); err != nil {
				logger.Warn("skip window",
					zap.Time("start", block.Start),
					zap.Error(err),
				)
				continue
			}
			created++
		}
	}

	logger.Info("seed complete", zap.Int("windows_created", created))
}

func dayBlocks(date time.Time) []schedule.TimeWindow {
	var blocks []schedule.TimeWindow

	// Morning block: start 8-10h, 1-3h long.
	morningStart := date.Add(time.Duration(gofakeit.Number(8, 10)) * time.Hour)
	blocks = append(blocks, schedule.TimeWindow{
		Start: morningStart,
		End:   morningStart.Add(time.Duration(gofakeit.Number(4, 12)) * schedule.SlotStep),
	})

	// Afternoon block on most days.
	if gofakeit.Bool() || gofakeit.Bool() {
		afternoonStart := date.Add(time.Duration(gofakeit.Number(14, 16)) * time.Hour)
		blocks = append(blocks, schedule.TimeWindow{
			Start: afternoonStart,
			End:   afternoonStart.Add(time.Duration(gofakeit.Number(4, 8)) * schedule.SlotStep),
		})
	}

	return blocks
}
