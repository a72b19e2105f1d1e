package commands

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/bank-server/api"
	"github.com/carson-networks/bank-server/internal/auth"
	"github.com/carson-networks/bank-server/internal/config"
	"github.com/carson-networks/bank-server/internal/id"
	"github.com/carson-networks/bank-server/internal/ledger"
	"github.com/carson-networks/bank-server/internal/limits"
	"github.com/carson-networks/bank-server/internal/metrics"
	"github.com/carson-networks/bank-server/internal/operator"
	"github.com/carson-networks/bank-server/internal/operator/actions"
	"github.com/carson-networks/bank-server/internal/service"
	"github.com/carson-networks/bank-server/internal/storage"
	"github.com/carson-networks/bank-server/internal/storage/memstore"
	"github.com/carson-networks/bank-server/internal/storage/migrations"
	"github.com/carson-networks/bank-server/internal/storage/sqlconfig"
)

var errNoSecret = errors.New("auth.secret must be set (BANK_AUTH_SECRET)")

// app is everything serve starts, in the order it must be stopped.
type app struct {
	store     storage.Storage
	delegator *operator.OperatorDelegator
	rest      *api.Rest
}

func newApp(cfg *config.Config, logger *logrus.Logger) (*app, error) {
	if cfg.Auth.Secret == "" {
		return nil, errNoSecret
	}
	ceilings, err := cfg.Limits.Ceilings()
	if err != nil {
		return nil, err
	}
	location, err := cfg.Clock.Location()
	if err != nil {
		return nil, fmt.Errorf("clock.timezone: %w", err)
	}
	lo, hi, err := cfg.Amounts.Range()
	if err != nil {
		return nil, err
	}

	store, err := openStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	ids := id.NewGenerator()
	deps := &actions.Dependencies{
		Limits: limits.NewTracker(ceilings, location),
		Ledger: ledger.NewWriter(ids, nil),
		IDs:    ids,
	}

	delegator := operator.NewOperatorDelegator(store, cfg.Operator.Workers, logger)
	delegator.Start()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := service.NewService(store, delegator, deps, service.AmountPolicy{Min: lo, Max: hi}, metrics.New(registry))

	return &app{
		store:     store,
		delegator: delegator,
		rest: &api.Rest{
			Logger:   logger,
			Server:   cfg.Server,
			Storage:  store,
			Service:  svc,
			Auth:     auth.NewJWTResolver(cfg.Auth.Secret),
			Registry: registry,
		},
	}, nil
}

// Close drains the operator before the storage goes away.
func (a *app) Close() error {
	a.delegator.Stop()
	return a.store.Close()
}

func openStorage(cfg *config.Config, logger *logrus.Logger) (storage.Storage, error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn("Storage.memory: balances are lost on restart")
		return memstore.New(), nil
	}

	store, err := sqlconfig.NewStorage(cfg.Postgres)
	if err != nil {
		return nil, err
	}
	if _, err = migrations.Up(store.DB()); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return store, nil
}
