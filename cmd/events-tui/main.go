package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/campus-events/tui/internal/app"
	"github.com/campus-events/tui/internal/client"
	"github.com/campus-events/tui/internal/config"
	"github.com/campus-events/tui/internal/entities"
	"github.com/campus-events/tui/internal/logging"
	"github.com/campus-events/tui/internal/session"
	"github.com/campus-events/tui/internal/state"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

func main() {
	cfgPath := flag.String("config", "", "Path to a YAML config file")
	apiURL := flag.String("api", "", "Base URL of the campus events API (overrides config)")
	debug := flag.Bool("debug", false, "Log at debug level")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load config: %v\n", err)
		os.Exit(1)
	}
	if *apiURL != "" {
		cfg.API.BaseURL = *apiURL
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *debug {
		level = zerolog.DebugLevel
	}
	log, logFile, err := logging.OpenFile(cfg.LogPath(), level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	opts := []client.Option{client.WithLogger(log)}
	if cfg.API.Timeout > 0 {
		opts = append(opts, client.WithTimeout(cfg.API.Timeout))
	}
	api := client.NewHTTPClient(cfg.API.BaseURL, opts...)

	sessions := session.NewStore(session.NewFileBackend(cfg.StateDir()), log)
	snapshot := entities.NewSynchronizer(api, log)
	st := state.New(api, sessions, snapshot, log)

	log.Info().Str("api", api.BaseURL()).Str("state_dir", cfg.StateDir()).Msg("starting")

	p := tea.NewProgram(app.New(st, log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error().Err(err).Msg("program exited")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
