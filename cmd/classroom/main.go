package main

import (
	"errors"
	"log"
	"os"

	"github.com/noah-isme/classroom-attendance/pkg/config"
	"github.com/noah-isme/classroom-attendance/pkg/database"
	"github.com/noah-isme/classroom-attendance/pkg/logger"
)

// @title Classroom Attendance API
// @version 1.0.0
// @description Daily attendance capture and competency tracking for one classroom.
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	cli := &commandLine{cfg: cfg, logger: logr, out: os.Stdout, openDB: database.NewPostgres}
	if err := cli.run(os.Args); err != nil {
		if errors.Is(err, errHelp) {
			os.Exit(2)
		}
		logr.Sugar().Fatalw("command failed", "error", err)
	}
}
