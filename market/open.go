package market

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/blockhole/libmarket-go/config"
	"github.com/blockhole/libmarket-go/identity"
)

// dbFileName is the marketplace database file within the data directory.
const dbFileName = "market.db"

// Open bootstraps a Marketplace from a deployment configuration: it
// validates the configuration, opens the bolt store under DataDir,
// seeds the listing fee on first open and builds a logger at the
// configured level. The registry and payment ledger are supplied by
// the caller; they are system-wide collaborators, not marketplace
// state.
func Open(cfg config.Config, registry Registry, payments Payments) (*Marketplace, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	operator, err := identity.AddressFromString(cfg.Operator)
	if err != nil {
		return nil, fmt.Errorf("market: parse operator: %w", err)
	}

	store, err := OpenBoltStore(filepath.Join(cfg.DataDir, dbFileName))
	if err != nil {
		return nil, err
	}
	if err := store.SeedListingFee(cfg.ListingFee); err != nil {
		_ = store.Close()
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("market: build logger: %w", err)
	}

	m, err := New(Params{
		Registry:     registry,
		Payments:     payments,
		Store:        store,
		Operator:     operator,
		RoyaltySplit: cfg.RoyaltySplit,
		Logger:       logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return m, nil
}

// newLogger builds a production zap logger at the given level,
// optionally writing to a file instead of stderr.
func newLogger(level, file string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if file != "" {
		zcfg.OutputPaths = []string{file}
	}
	return zcfg.Build()
}
