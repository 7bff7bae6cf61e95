package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danthegoodman1/relfetch/crdb"
	"github.com/danthegoodman1/relfetch/external"
	"github.com/danthegoodman1/relfetch/gologger"
	"github.com/danthegoodman1/relfetch/http_server"
	"github.com/danthegoodman1/relfetch/migrations"
	"github.com/danthegoodman1/relfetch/relation"
	"github.com/danthegoodman1/relfetch/settings"
	"github.com/danthegoodman1/relfetch/utils"
)

var logger = gologger.NewLogger()

func main() {
	logger.Debug().Msg("starting relfetch")

	if utils.SETTINGS_FILE != "" {
		if err := settings.Load(utils.SETTINGS_FILE); err != nil {
			logger.Error().Err(err).Msg("error loading settings")
			os.Exit(1)
		}
	}

	if err := crdb.ConnectToDB(context.Background(), utils.CRDB_DSN); err != nil {
		logger.Error().Err(err).Msg("error connecting to CRDB")
		os.Exit(1)
	}
	defer crdb.Close()

	if utils.GetEnvOrDefault("RUN_MIGRATIONS", "false") == "true" {
		if _, err := migrations.RunMigrations(utils.CRDB_DSN); err != nil {
			logger.Error().Err(err).Msg("error running migrations")
			os.Exit(1)
		}
	}
	err := migrations.CheckMigrations(utils.CRDB_DSN)
	if err != nil {
		logger.Error().Err(err).Msg("Error checking migrations")
		os.Exit(1)
	}

	storeConfigs, err := settings.Stores()
	if err != nil {
		logger.Error().Err(err).Msg("error reading store settings")
		os.Exit(1)
	}
	stores, err := external.NewStores(storeConfigs)
	if err != nil {
		logger.Error().Err(err).Msg("error creating external stores")
		os.Exit(1)
	}
	logger.Info().Int("stores", len(stores)).Str("fetchFormat", settings.FetchFormat()).Msg("configured")

	conn := relation.NewConnection(crdb.PGPool, external.NewPGIndex(crdb.PGPool), stores)
	httpServer := http_server.StartHTTPServer(conn, stores)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Warn().Msg("received shutdown signal!")

	// For AWS ALB needing some time to de-register pod
	sleepTime := utils.GetEnvOrDefaultInt("SHUTDOWN_SLEEP_SEC", 0)
	logger.Info().Msg(fmt.Sprintf("sleeping for %ds before exiting", sleepTime))

	time.Sleep(time.Second * time.Duration(sleepTime))
	logger.Info().Msg(fmt.Sprintf("slept for %ds, exiting", sleepTime))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown HTTP server")
	} else {
		logger.Info().Msg("successfully shutdown HTTP server")
	}
}
