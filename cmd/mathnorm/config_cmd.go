package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mathnorm/internal/config"
	"github.com/alnah/go-mathnorm/internal/fileutil"
)

// ErrConfigExists is returned when config init would overwrite a file.
var ErrConfigExists = errors.New("config file already exists")

// configPathFunc is swapped in tests to keep writes out of the user's home.
var configPathFunc = config.UserPath

// runConfig handles "config init" and "config path".
func runConfig(args []string, env *Environment) error {
	if len(args) == 0 {
		printConfigUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "init":
		return runConfigInit(args[1:], env)
	case "path":
		return runConfigPath(args[1:], env)
	default:
		return fmt.Errorf("%w: unknown config subcommand %q (expected init or path)", ErrUsage, args[0])
	}
}

// runConfigInit writes the default configuration as YAML.
func runConfigInit(args []string, env *Environment) error {
	fs := flag.NewFlagSet("config init", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	output := fs.StringP("output", "o", "", "file to write (default: user config directory)")
	force := fs.BoolP("force", "f", false, "overwrite an existing file")
	fs.Usage = func() { printConfigUsage(env.Stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	name := config.DefaultName
	if fs.NArg() > 0 {
		name = fs.Arg(0)
	}

	path := *output
	if path == "" {
		var err error
		path, err = configPathFunc(name)
		if err != nil {
			return err
		}
	}

	if fileutil.FileExists(path) && !*force {
		return fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, path)
	}

	data, err := config.DefaultConfig().Encode()
	if err != nil {
		return err
	}
	if err := writeOutputFile(path, data, 0o600); err != nil {
		return err
	}

	fmt.Fprintf(env.Stdout, "Created %s\n", path)
	return nil
}

// runConfigPath prints the files searched for a config name, in order.
func runConfigPath(args []string, env *Environment) error {
	name := config.DefaultName
	if len(args) > 0 {
		name = args[0]
	}
	for _, p := range config.SearchPaths(name) {
		marker := " "
		if fileutil.FileExists(p) {
			marker = "*"
		}
		fmt.Fprintf(env.Stdout, "%s %s\n", marker, p)
	}
	return nil
}
