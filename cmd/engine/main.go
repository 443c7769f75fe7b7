package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/ajinkya-tambe/FixedIncome/internal/common"
	"github.com/ajinkya-tambe/FixedIncome/internal/config"
	"github.com/ajinkya-tambe/FixedIncome/internal/driver"
	"github.com/ajinkya-tambe/FixedIncome/internal/engine"
	"github.com/ajinkya-tambe/FixedIncome/internal/quote"
	"github.com/ajinkya-tambe/FixedIncome/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load config")
	}
	setupLogging(cfg.Logging)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	var journal *store.Journal
	if cfg.Journal.Enabled {
		journal, err = store.OpenJournal(store.JournalOptions{
			Path:            cfg.Journal.Path,
			InMemory:        cfg.Journal.InMemory,
			MaxOpenConns:    cfg.Journal.MaxOpenConns,
			MaxIdleConns:    cfg.Journal.MaxIdleConns,
			ConnMaxLifetime: cfg.Journal.ConnMaxLifetime,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("unable to open journal")
		}
		defer func() {
			if err := journal.Close(); err != nil {
				log.Error().Err(err).Msg("unable to close journal")
			}
		}()
	}

	// Seed the quote board with reference instruments. Quotes themselves
	// arrive from an external provider; none are fabricated here.
	board := quote.NewBoard(referenceInstruments()...)

	eng := engine.New(board, store.NewOrders(), journal, cfg.Method())
	drv := driver.New(eng, cfg.Driver.SweepInterval)

	// Block on running the driver until a signal lands.
	if err := drv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("driver exited")
	}
}

func setupLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func referenceInstruments() []common.Instrument {
	return []common.Instrument{
		{
			ID:         "US-GOVT-001",
			Ticker:     "UST-10Y",
			Issuer:     "US Treasury",
			CouponRate: decimal.NewFromFloat(4.25),
			FaceValue:  decimal.NewFromInt(1000),
			Maturity:   time.Date(2034, 5, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:         "US-GOVT-002",
			Ticker:     "UST-30Y",
			Issuer:     "US Treasury",
			CouponRate: decimal.NewFromFloat(4.5),
			FaceValue:  decimal.NewFromInt(1000),
			Maturity:   time.Date(2054, 2, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:         "CORP-AAPL-001",
			Ticker:     "AAPL-28",
			Issuer:     "Apple Inc",
			CouponRate: decimal.NewFromFloat(3.85),
			FaceValue:  decimal.NewFromInt(1000),
			Maturity:   time.Date(2028, 8, 4, 0, 0, 0, 0, time.UTC),
		},
	}
}
