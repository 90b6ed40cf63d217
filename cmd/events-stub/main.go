// Command events-stub serves an in-memory campus events API for local use
// of the TUI.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/campus-events/tui/internal/logging"
	"github.com/campus-events/tui/internal/stubapi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

func main() {
	addr := flag.String("addr", ":3000", "Listen address")
	prefix := flag.String("prefix", "/api", "Path prefix the API is mounted under")
	secret := flag.String("secret", "", "JWT signing secret (random if empty)")
	adminEmail := flag.String("admin-email", "admin@campus.local", "Seeded administrator email (empty to skip)")
	adminPassword := flag.String("admin-password", "admin123", "Seeded administrator password")
	seed := flag.Bool("seed", true, "Seed a few students and events")
	debug := flag.Bool("debug", false, "Log every request")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := logging.Console(level)

	opts := []stubapi.Option{stubapi.WithLogger(log)}
	if *secret != "" {
		opts = append(opts, stubapi.WithSecret(*secret))
	}
	api := stubapi.New(opts...)

	if *adminEmail != "" {
		if err := api.AddUser("Administrator", *adminEmail, *adminPassword, stubapi.RoleAdmin); err != nil {
			log.Fatal().Err(err).Msg("seed admin")
		}
		log.Info().Str("email", *adminEmail).Msg("administrator seeded")
	}
	if *seed {
		seedData(api)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	mount := "/" + strings.Trim(*prefix, "/")
	if mount == "/" {
		r.Mount("/", api.Handler())
	} else {
		r.Mount(mount, api.Handler())
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", *addr).Str("prefix", mount).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("serve")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("stopped")
}

func seedData(api *stubapi.Server) {
	api.SeedStudent("Ada", "Lovelace", "ada@campus.local")
	api.SeedStudent("Alan", "Turing", "alan@campus.local")
	api.SeedStudent("Grace", "Hopper", "grace@campus.local")

	week := time.Now().UTC().Add(7 * 24 * time.Hour).Truncate(time.Hour)
	api.SeedEvent("Welcome talk", week.Format("2006-01-02T15:04:05.000Z"), "Amphitheatre A", stubapi.StatusScheduled)
	api.SeedEvent("Go workshop", week.Add(48*time.Hour).Format("2006-01-02T15:04:05.000Z"), "Lab 3", stubapi.StatusScheduled)
	api.SeedEvent("Career fair", week.Add(-14*24*time.Hour).Format("2006-01-02T15:04:05.000Z"), "Main hall", stubapi.StatusCanceled)
}
