package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/conduit/internal/cli"
	"github.com/mrlokans/conduit/internal/config"
	"github.com/mrlokans/conduit/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "create-user":
		cmd = cli.NewCreateUserCommand(config.NewConfig())

	case "reconcile-favorites":
		cmd = cli.NewReconcileFavoritesCommand(config.NewConfig())

	case "version":
		fmt.Printf("conduit %s (%s)\n", Version, Commit)
		return

	case "help", "-h", "--help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve                Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  create-user          Create a user account directly in the database\n")
	fmt.Fprintf(os.Stderr, "  reconcile-favorites  Recompute cached favorite counts\n")
	fmt.Fprintf(os.Stderr, "  version              Print version information\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
