// Command symbios runs an industrial symbiosis market session: a preset
// park of factory agents trading through the double auction, with the
// market maker, dynamic pricing, bargaining settlement and reputation all
// wired together.
package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Ritinpaul/symbios-core/internal/config"
	"github.com/Ritinpaul/symbios-core/internal/ledger"
	"github.com/Ritinpaul/symbios-core/internal/maker"
	"github.com/Ritinpaul/symbios-core/internal/market"
	"github.com/Ritinpaul/symbios-core/internal/pricing"
	"github.com/Ritinpaul/symbios-core/internal/reputation"
	"github.com/Ritinpaul/symbios-core/internal/resource"
	"github.com/Ritinpaul/symbios-core/internal/sim"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (defaults apply when empty)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("loading config")
		}
		cfg = loaded
	}

	var recorder market.Recorder
	if cfg.LedgerPath != "" {
		store, err := ledger.Open(cfg.LedgerPath)
		if err != nil {
			log.Fatal().Err(err).Msg("opening ledger")
		}
		defer store.Close()
		recorder = store
	}

	priceEngine := pricing.NewEngine(cfg.BasePriceTable(), cfg.HistoryCapacity)
	mm := maker.New(maker.Config{
		Spread:          cfg.Maker.Spread,
		SkewSensitivity: cfg.Maker.SkewSensitivity,
		QuoteSize:       cfg.Maker.QuoteSize,
		InventoryTarget: cfg.Maker.InventoryTarget,
	})
	rep := reputation.NewLedger(cfg.Reputation.DecayRate)
	mkt := market.New(market.Config{
		CarbonTaxRate:        cfg.Market.CarbonTaxRate,
		TrendWindow:          cfg.Market.TrendWindow,
		SettlementValueScale: cfg.Market.SettlementValueScale,
		DecayInterval:        cfg.Market.DecayInterval,
	}, priceEngine, mm, rep, recorder)

	park := sim.GuindyPark(cfg.Seed, cfg.DisruptionProbability)
	runner := sim.NewRunner(park, mkt, cfg.Ticks)
	runner.Start()

	var settled, failed int
	for result := range runner.Results() {
		for _, s := range result.Settlements {
			if s.Agreed {
				settled++
			} else {
				failed++
			}
		}
		for _, kind := range resource.Kinds() {
			trend := result.Trends.Get(kind)
			if trend == pricing.Neutral {
				continue
			}
			log.Debug().
				Stringer("resource", kind).
				Float64("price", result.Prices.Get(kind)).
				Stringer("trend", trend).
				Msg("price update")
		}
	}
	if err := runner.Wait(); err != nil {
		log.Fatal().Err(err).Msg("session failed")
	}

	log.Info().Int("settled", settled).Int("failed", failed).Msg("session summary")
	for _, snap := range park.Snapshots() {
		log.Info().
			Str("factory", snap.Name).
			Stringer("type", snap.Type).
			Float64("cash", snap.Cash).
			Stringer("tier", rep.TierOf(snap.ID)).
			Msg("factory outcome")
	}
	for _, kind := range resource.Kinds() {
		log.Info().
			Stringer("resource", kind).
			Float64("inventory", mm.Inventory(kind)).
			Msg("maker position")
	}
}
