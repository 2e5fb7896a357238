package main

import (
	"context"
	"os"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/migrate"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	log := logger.WithField("cmd", "migrate")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, log)
	if err != nil {
		log.WithError(err).Fatal("connect db")
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool, log); err != nil {
		log.WithError(err).Fatal("apply migrations")
	}
}
