package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/gridiron/internal/fakeprovider"
	"github.com/okian/gridiron/pkg/logger"
)

// Default configuration constants.
const (
	defaultAddr       = ":8090"
	defaultTimeout    = 30 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	var (
		addr     = flag.String("addr", defaultAddr, "Listen address")
		key      = flag.String("key", fakeprovider.DefaultAPIKey, "API key clients must send")
		seed     = flag.Uint64("seed", fakeprovider.DefaultSeed, "Fixture seed")
		weeks    = flag.Int("weeks", fakeprovider.DefaultWeeks, "Number of weekly game days")
		games    = flag.Int("games", fakeprovider.DefaultGamesPerWeek, "Games per game day")
		unranked = flag.Int("unranked", 0, "Teams left out of the rankings")
		check    = flag.String("check", "", "Base URL of a gridiron instance to check")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout for -check")
		verbose  = flag.Bool("verbose", false, "Enable debug logging")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		fakeprovider.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}
	log := logger.Named("fakeprovider")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := fakeprovider.DefaultConfig()
	cfg.Seed = *seed
	cfg.Weeks = *weeks
	cfg.GamesPerWeek = *games
	cfg.Unranked = *unranked
	fx := fakeprovider.Generate(cfg)

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		os.Stderr.WriteString("failed to listen: " + err.Error() + "\n")
		os.Exit(1)
	}
	srv := &http.Server{
		Handler:           fakeprovider.NewServer(*key, []*fakeprovider.Fixtures{fx}, fakeprovider.WithServerLogger(log)).Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		log.Info(ctx, "serving fixtures",
			logger.String("addr", *addr),
			logger.String("league", fx.League.String()),
			logger.String("first_day", fx.FirstDay().String()),
			logger.String("last_day", fx.LastDay().String()),
			logger.Int("games", len(fx.Games)),
			logger.Int("ranked_teams", len(fx.Rankings)),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			stop()
		}
	}()

	if code := serve(ctx, stop, srv, log, *check, *timeout, fx); code != 0 {
		os.Exit(code)
	}
}

// serve runs the optional check and blocks until shutdown. It returns the
// process exit code.
func serve(ctx context.Context, stop context.CancelFunc, srv *http.Server, log logger.Logger, check string, timeout time.Duration, fx *fakeprovider.Fixtures) int {
	exitCode := 0
	if check != "" {
		report, err := fakeprovider.Check(ctx, &http.Client{Timeout: timeout}, check, fx)
		switch {
		case err != nil:
			os.Stderr.WriteString("Check failed: " + err.Error() + "\n")
			exitCode = 1
		case !report.OK():
			for _, m := range report.Mismatches {
				log.Warn(ctx, "mismatch", logger.String("detail", m))
			}
			exitCode = 1
		}
		stop()
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	return exitCode
}
