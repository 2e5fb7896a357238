package main

import (
	"context"
	"flag"
	"os"
	"time"

	"storefront/internal/backend"
	"storefront/internal/config"
	"storefront/internal/importer"
	"storefront/internal/service/catalog"

	"github.com/sirupsen/logrus"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to product CSV")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	log := logger.WithField("cmd", "importer")

	f, err := os.Open(filePath)
	if err != nil {
		log.WithError(err).Fatal("open file")
	}
	defer f.Close()

	client := backend.New(cfg.BackendURL, cfg.BackendTimeout, log)
	imp := importer.NewCSVImporter(f, catalog.New(client, log), log)

	start := time.Now()
	count, err := imp.Run(context.Background())
	if err != nil {
		log.WithError(err).WithField("imported", count).Fatal("import failed")
	}

	log.WithFields(logrus.Fields{
		"imported": count,
		"elapsed":  time.Since(start).Truncate(time.Millisecond).String(),
	}).Info("import finished")
}
