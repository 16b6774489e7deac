// Command admin runs operator tasks against the learnpath database: schema
// migration and user bootstrap.
package main

import (
	"fmt"
	"os"

	"learnpath/internal/config"
	"learnpath/internal/db"
	"learnpath/internal/logger"
	"learnpath/internal/repository"
	"learnpath/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, cfg.LogLevel == "debug")
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}

	cli := &commandLine{
		migrate: func() error { return db.Migrate(gormDB) },
		users:   service.NewUserService(repository.NewUserRepository(gormDB), nil),
	}

	err = newRootCmd(cli).Execute()
	if cerr := db.Close(gormDB); cerr != nil {
		log.Error().Err(cerr).Msg("close database")
	}
	if err != nil {
		os.Exit(1)
	}
}
