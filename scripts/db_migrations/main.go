package main

import (
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/bank-server/internal/config"
	"github.com/carson-networks/bank-server/internal/storage/migrations"
	"github.com/carson-networks/bank-server/internal/storage/sqlconfig"
)

// Applies the embedded schema using BANK_POSTGRES_* settings. Same as
// `bank-server migrate`, for deploys that migrate as a separate step.
func main() {
	cfg, err := config.Load("")
	if err != nil {
		logrus.WithError(err).Fatal("config.Load")
		return
	}

	store, err := sqlconfig.NewStorage(cfg.Postgres)
	if err != nil {
		logrus.WithError(err).Fatal("sqlconfig.NewStorage")
		return
	}
	defer store.Close()

	if _, err = migrations.Up(store.DB()); err != nil {
		logrus.WithError(err).Fatal("migrations.Up")
	}
}
