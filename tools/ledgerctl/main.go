// Command ledgerctl manages the sales ledger from a terminal.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path"

	"github.com/google/subcommands"

	"kunafa-ledger/internal/app"
	"kunafa-ledger/internal/config"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	Register(commander)
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}
	ctx := context.Background()
	rt, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("runtime error: %v", err)
	}
	status := commander.Execute(ctx, &env{rt: rt, out: os.Stdout})
	rt.Close()
	os.Exit(int(status))
}
