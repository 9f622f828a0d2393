package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Makepad-fr/tada/internal/cli"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/todos"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

func main() {
	// Root flags (apply to every subcommand)
	fs := flag.NewFlagSet("tada", flag.ExitOnError)
	fs.Usage = func() { cli.PrintHelp(os.Stderr) }
	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		os.Exit(2)
	}

	opts := logging.DefaultOptions()
	if opts.Level, err = logging.ParseLevel(cfg.LogLevel); err != nil {
		ui.Fail(os.Stderr, err.Error())
		os.Exit(2)
	}
	logger := logging.New(os.Stderr, opts)
	ui.SetDark(cfg.DarkMode)

	// Hand the remaining args to the CLI runner.
	args := fs.Args()
	if len(args) == 0 {
		cli.PrintHelp(os.Stderr)
		os.Exit(2)
	}

	kv, err := jsonstore.Open(cfg.DataDir)
	if err != nil {
		ui.Fail(os.Stderr, "storage: "+err.Error())
		os.Exit(1)
	}
	logger.Debug("opened storage", "path", kv.Path())

	store := todos.New(kv, todos.Options{
		Logger:     logger,
		SearchMode: cfg.SearchMode,
	})
	store.Subscribe(func(list []model.Todo) {
		logger.Debug("todos changed", "count", len(list))
	})

	code := cli.Run(store, args, cli.Options{
		Group: cfg.Group,
		TUI: tui.Options{
			Debounce: cfg.SearchDebounce.Duration,
			Logger:   logger,
		},
	})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
