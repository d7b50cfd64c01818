package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/glucolab/glucometer/internal/commands"
	apperrors "github.com/glucolab/glucometer/internal/errors"
	"github.com/glucolab/glucometer/internal/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	app := &cli.Command{
		Name:  "glucometer",
		Usage: "Glucose reading analysis, statistics and goal tracking",
		Commands: []*cli.Command{
			commands.CmdAnalyze,
			commands.CmdStats,
			commands.CmdHistory,
			commands.CmdGoals,
			commands.CmdExport,
			commands.CmdPatients,
		},
	}

	ctx := context.Background()
	if err := app.Run(ctx, os.Args); err != nil {
		apperrors.NewHandler(logger.GetLogger()).Handle(ctx, err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
