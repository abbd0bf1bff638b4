package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

// Exit codes
const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return exitUsage
	}

	command := args[0]

	// Dispatch to subcommand
	switch command {
	case "upload":
		return runUpload(ctx, args[1:], stdout, stderr)
	case "list":
		return runList(ctx, args[1:], stdout, stderr)
	case "inspect":
		return runInspect(ctx, args[1:], stdout, stderr)
	case "version", "--version":
		_, _ = fmt.Fprintf(stdout, "tpa-symbols %s\n", Version)
		return exitOK
	case "help", "-h", "--help":
		printUsage(stdout)
		return exitOK
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		printUsage(stderr)
		return exitUsage
	}
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, `tpa-symbols - Upload iOS/macOS dSYM archives to The Perfect App

Usage:
  tpa-symbols <command> [options]

Commands:
  upload   Upload dSYM archives the backend does not have yet
  list     List dSYM archives already uploaded for the app
  inspect  Show the metadata and hash of local dSYM archives
  version  Print the version

Use "tpa-symbols <command> --help" for more information about a command.`)
}
