package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"orderwarden/internal/client"
	"orderwarden/internal/config"
	"orderwarden/internal/dashboard"
	"orderwarden/internal/identity"
	"orderwarden/internal/navigation"
	"orderwarden/internal/notify"
)

type globalFlags struct {
	configPath string
	apiURL     string
	userID     string
	token      string
	landingURL string
	logFile    string
	timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "orderwarden",
		Short: "Track shipments of marketplace orders and spot the ones at risk",
		Long: `orderwarden is a dashboard for sellers who ship marketplace orders.

It lists your orders with their latest carrier status and delivery risk,
lets you search, filter and sort them, add or delete orders, re-check
tracking, and import orders from a connected Etsy shop.

Run without a subcommand to open the interactive dashboard.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, &flags)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", config.DefaultClientPath(), "config file")
	pf.StringVar(&flags.apiURL, "api-url", "", "order API base URL")
	pf.StringVar(&flags.userID, "user", "", "signed-in user id")
	pf.StringVar(&flags.token, "token", "", "session token")
	pf.StringVar(&flags.landingURL, "landing-url", "", "URL the dashboard was opened with, e.g. after connecting Etsy")
	pf.StringVar(&flags.logFile, "log-file", "", "write logs to this file")
	pf.DurationVar(&flags.timeout, "timeout", 0, "per-request timeout")

	rootCmd.AddCommand(
		newTUICmd(&flags),
		newListCmd(&flags),
		newAddCmd(&flags),
		newDeleteCmd(&flags),
		newCheckCmd(&flags),
		newEtsyCmd(&flags),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the dashboard wired to the remote API for one command run.
type app struct {
	cfg   config.Client
	dash  *dashboard.Dashboard
	notes *notify.Center
	nav   *navigation.URL
	log   *slog.Logger
	close func()
}

type appOptions struct {
	// open shows redirect targets to the user.
	open        navigation.Opener
	// onChange is called when notifications change.
	onChange    func()
	// logFallback receives logs when no log file is configured.
	logFallback io.Writer
}

func newApp(flags *globalFlags, opts appOptions) (*app, error) {
	cfg, err := config.LoadClient(flags.configPath)
	if err != nil {
		return nil, err
	}
	applyFlags(&cfg, flags)

	logger, closeLog, err := newLogger(cfg.LogFile, opts.logFallback)
	if err != nil {
		return nil, err
	}

	id, err := resolveIdentity(cfg)
	if err != nil {
		closeLog()
		return nil, err
	}

	nav, err := navigation.NewURL(flags.landingURL, opts.open)
	if err != nil {
		closeLog()
		return nil, err
	}

	notes := notify.New(notify.DefaultTTL, opts.onChange)
	api := client.New(cfg.APIURL, id, cfg.Timeout)
	dash := dashboard.New(api, id, nav, notes, dashboard.Config{
		RequestTimeout: cfg.Timeout,
		SignInURL:      cfg.SignInURL,
		ReturnURL:      cfg.ReturnURL,
		Logger:         logger,
	})

	logger.Debug("dashboard configured", "api", cfg.APIURL, "timeout", cfg.Timeout)
	return &app{
		cfg:   cfg,
		dash:  dash,
		notes: notes,
		nav:   nav,
		log:   logger,
		close: func() {
			notes.Close()
			closeLog()
		},
	}, nil
}

func applyFlags(cfg *config.Client, flags *globalFlags) {
	if flags.apiURL != "" {
		cfg.APIURL = flags.apiURL
	}
	if flags.userID != "" {
		cfg.UserID = flags.userID
	}
	if flags.token != "" {
		cfg.Token = flags.token
	}
	if flags.logFile != "" {
		cfg.LogFile = flags.logFile
	}
	if flags.timeout > 0 {
		cfg.Timeout = flags.timeout
	}
}

// resolveIdentity prefers a verifiable session token, then an unverified
// token for the configured user, then a bare user id.
func resolveIdentity(cfg config.Client) (identity.Provider, error) {
	switch {
	case cfg.Token != "" && cfg.TokenSecret != "":
		s, err := identity.FromToken(cfg.Token, cfg.TokenSecret)
		if err != nil {
			return nil, fmt.Errorf("session token: %w", err)
		}
		return s, nil
	case cfg.Token != "":
		return identity.NewSession(cfg.UserID, cfg.Token), nil
	default:
		return identity.Static{ID: cfg.UserID}, nil
	}
}

func newLogger(path string, fallback io.Writer) (*slog.Logger, func(), error) {
	if path == "" {
		if fallback == nil {
			fallback = io.Discard
		}
		h := slog.NewTextHandler(fallback, &slog.HandlerOptions{Level: slog.LevelWarn})
		return slog.New(h), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	h := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(h), func() { _ = f.Close() }, nil
}
