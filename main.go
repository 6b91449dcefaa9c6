package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"contest-platform/apiconfig"
	"contest-platform/badges"
	"contest-platform/events"
	"contest-platform/factory"
	"contest-platform/feemanager"
	"contest-platform/internal/eventstore"
	"contest-platform/internal/metrics"
	adminserver "contest-platform/internal/server/admin"
	pserver "contest-platform/internal/server/public"
	"contest-platform/ledger"
	"contest-platform/logging"
	"contest-platform/tokenvalidator"

	"cosmossdk.io/math"
	"github.com/shopspring/decimal"
)

const (
	factoryAccount = "factory"
	feeAccount     = "feemanager/collector"
)

func main() {
	logging.Init(slog.LevelInfo)

	config, err := apiconfig.ReadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	book := ledger.New()
	if err := seedGenesis(book, config.Genesis); err != nil {
		log.Fatalf("Error seeding genesis balances: %v", err)
	}

	recorder := events.NewRecorder()
	fees := feemanager.NewManager(
		config.Platform.Owner, feeAccount, config.Platform.Treasury, book, recorder)
	tokens := tokenvalidator.New(config.Platform.Owner, nil)
	if err := registerTokens(tokens, config); err != nil {
		log.Fatalf("Error registering prize tokens: %v", err)
	}
	tracker := badges.NewTracker(recorder, nil)

	f := factory.New(factory.Config{
		Owner:     config.Platform.Owner,
		Account:   factoryAccount,
		Recovery:  config.Platform.Recovery,
		NetworkID: config.Network.Id,
		Bank:      book,
		Fees:      fees,
		Tokens:    tokens,
		Badges:    tracker,
		Sink:      recorder,
	})
	metrics.RegisterActiveContests(f.ActiveCount)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.Database.Url != "" {
		store, err := eventstore.NewPostgresStore(ctx, config.Database.Url)
		if err != nil {
			log.Fatalf("Error connecting to event store: %v", err)
		}
		defer store.Close()
		records, cancel := recorder.Subscribe(256)
		defer cancel()
		go store.Run(ctx, records)
		logging.Info("Event store attached", logging.System)
	} else {
		logging.Warn("No database url configured, events are kept in memory only", logging.System)
	}

	publicSrv := pserver.NewServer(f, fees, tokens, tracker, recorder)
	publicSrv.Start(fmt.Sprintf(":%d", config.Api.PublicPort))

	adminSrv := adminserver.NewServer(config.Platform.Owner, f, fees, tokens)
	adminSrv.Start(fmt.Sprintf(":%d", config.Api.AdminPort))

	logging.Info("Contest platform started", logging.System,
		"network_id", config.Network.Id, "network", config.Network.Name,
		"public_port", config.Api.PublicPort, "admin_port", config.Api.AdminPort)

	<-ctx.Done()
	logging.Info("Shutting down", logging.System)
}

func seedGenesis(book *ledger.Ledger, funds []apiconfig.GenesisFund) error {
	for _, fund := range funds {
		amount, ok := math.NewIntFromString(fund.Amount)
		if !ok {
			return fmt.Errorf("invalid genesis amount %q for account %s", fund.Amount, fund.Account)
		}
		asset := fund.Asset
		if asset == "" {
			asset = ledger.NativeAsset
		}
		if err := book.Mint(fund.Account, asset, amount); err != nil {
			return fmt.Errorf("minting %s %s to %s: %w", fund.Amount, asset, fund.Account, err)
		}
	}
	return nil
}

func registerTokens(tokens *tokenvalidator.Validator, config apiconfig.Config) error {
	for _, token := range config.Tokens {
		price, err := decimal.NewFromString(token.PriceUSD)
		if err != nil {
			return fmt.Errorf("token %s: invalid price_usd %q", token.Asset, token.PriceUSD)
		}
		liquidity, err := decimal.NewFromString(token.LiquidityUSD)
		if err != nil {
			return fmt.Errorf("token %s: invalid liquidity_usd %q", token.Asset, token.LiquidityUSD)
		}
		err = tokens.Register(config.Platform.Owner, tokenvalidator.TokenInfo{
			Asset:        token.Asset,
			Name:         token.Name,
			Symbol:       token.Symbol,
			Decimals:     token.Decimals,
			IsStablecoin: token.IsStablecoin,
			PriceUSD:     price,
			LiquidityUSD: liquidity,
		})
		if err != nil {
			return fmt.Errorf("registering token %s: %w", token.Asset, err)
		}
	}
	return nil
}
