package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"AgriWaste-Marketplace/cmd/config"
	migration "AgriWaste-Marketplace/cmd/database/migrate"
	"AgriWaste-Marketplace/cmd/database/seeder"
	"AgriWaste-Marketplace/internal/utils"
)

func main() {
	migrate := flag.Bool("migrate", false, "run database migrations before serving")
	seed := flag.Bool("seed", false, "seed the admin account before serving")
	flag.Parse()

	utils.LoadConfig()
	log := utils.NewLogger(utils.GetConfig("LOG_LEVEL"))

	db, err := config.ConnectDB(log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}

	if *migrate {
		if err := migration.Migrate(db, log); err != nil {
			log.WithError(err).Fatal("migration failed")
		}
	}
	if *seed {
		if err := seeder.SeedAdmin(db, log); err != nil {
			log.WithError(err).Fatal("seeding failed")
		}
	}

	app, broker, err := config.NewApp(db, log)
	if err != nil {
		log.WithError(err).Fatal("failed to build app")
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		log.Info("shutting down")
		broker.Close()
		if err := app.Shutdown(); err != nil {
			log.WithError(err).Error("server shutdown failed")
		}
	}()

	if err := app.Listen(":" + utils.GetConfig("APP_PORT")); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
