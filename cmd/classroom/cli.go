package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/classroom-attendance/internal/repository"
	"github.com/noah-isme/classroom-attendance/internal/service"
	"github.com/noah-isme/classroom-attendance/pkg/config"
	"github.com/noah-isme/classroom-attendance/pkg/database"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
	openDB func(config.DatabaseConfig) (*sqlx.DB, error)
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  serve                      - run the HTTP server (default)")
	fmt.Fprintln(cli.out, "  migrate up|down|status     - apply, roll back or list schema migrations")
	fmt.Fprintln(cli.out, "  seed -file roster.csv      - import students from a CSV roster")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		return cli.serve()
	}

	seedCmd := flag.NewFlagSet("seed", flag.ContinueOnError)
	seedCmd.SetOutput(cli.out)
	seedFile := seedCmd.String("file", "", "CSV file with first_name,last_name[,email[,github_username]] rows")

	switch args[1] {
	case "serve":
		return cli.serve()
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2])
	case "seed":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *seedFile == "" {
			seedCmd.Usage()
			return errHelp
		}
		return cli.seed(*seedFile)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) migrate(direction string) error {
	if direction != "up" && direction != "down" && direction != "status" {
		cli.printUsage()
		return errHelp
	}
	db, err := cli.openDB(cli.cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	migrator := database.NewMigrator(db, database.Migrations(), cli.logger)
	switch direction {
	case "up":
		applied, err := migrator.Up(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "applied %d migration(s)\n", applied)
	case "down":
		if err := migrator.Down(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "rolled back latest migration")
	case "status":
		status, err := migrator.Status(ctx)
		if err != nil {
			return err
		}
		for _, m := range status {
			state := "pending"
			if m.IsApplied && m.AppliedAt != nil {
				state = "applied " + m.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(cli.out, "%03d_%s\t%s\n", m.Version, m.Name, state)
		}
	}
	return nil
}

func (cli *commandLine) seed(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open roster: %w", err)
	}
	defer file.Close()

	db, err := cli.openDB(cli.cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	students := service.NewStudentService(
		repository.NewStudentRepository(db),
		repository.NewCompetencyRepository(db),
		nil, nil, cli.logger,
	)
	result, err := students.SeedFromCSV(context.Background(), file)
	if result != nil {
		fmt.Fprintf(cli.out, "created %d student(s), skipped %d existing\n", result.Created, result.Skipped)
	}
	return err
}
