package main

import (
	"context"
	"os"

	"storefront/internal/backend"
	"storefront/internal/config"
	"storefront/internal/seed"
	"storefront/internal/service/catalog"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	log := logger.WithField("cmd", "seed")

	client := backend.New(cfg.BackendURL, cfg.BackendTimeout, log)
	n, err := seed.Apply(context.Background(), catalog.New(client, log), log)
	if err != nil {
		log.WithError(err).Fatal("seed apply")
	}
	log.WithField("created", n).Info("seed applied")
}
