package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// commands lists the subcommands; anything else is handed to fix.
var commands = map[string]bool{
	"fix":        true,
	"preview":    true,
	"doctor":     true,
	"config":     true,
	"completion": true,
	"version":    true,
	"help":       true,
}

func main() {
	// Configure GOMAXPROCS with conditional logging
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if hasVerboseFlag(os.Args[1:]) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	ctx, stop := notifyContext(context.Background())
	code := run(ctx, os.Args, DefaultEnv())
	stop()
	os.Exit(code)
}

// run dispatches args (including the program name) and returns the exit code.
func run(ctx context.Context, args []string, env *Environment) int {
	warnUnknownEnvVars(env.Stderr)

	cmd, rest := splitCommand(args[1:])

	var err error
	switch cmd {
	case "fix":
		err = runFix(ctx, rest, env)
	case "preview":
		err = runPreview(ctx, rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "config":
		err = runConfig(rest, env)
	case "completion":
		err = runCompletion(rest, env)
	case "version":
		fmt.Fprintf(env.Stdout, "mathnorm %s\n", Version)
	case "help":
		runHelp(rest, env)
	}

	if err == nil || errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	// --check reports its findings itself
	if !errors.Is(err, ErrWouldChange) {
		fmt.Fprintln(env.Stderr, err)
	}
	return exitCodeFor(err)
}

// splitCommand separates the subcommand from its arguments. Without a
// known subcommand the whole argument list belongs to fix.
func splitCommand(args []string) (string, []string) {
	if len(args) == 0 {
		return "fix", nil
	}
	switch args[0] {
	case "-h", "--help":
		return "help", args[1:]
	case "--version":
		return "version", nil
	}
	if commands[args[0]] {
		return args[0], args[1:]
	}
	return "fix", args
}

// hasVerboseFlag reports whether -v or --verbose appears before "--".
func hasVerboseFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--" {
			return false
		}
		if arg == "-v" || arg == "--verbose" {
			return true
		}
	}
	return false
}

// notifyContext returns a context that is canceled when an interrupt
// or termination signal is received. Call stop() to release resources.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
