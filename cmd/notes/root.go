package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/notesapp/notes/internal/auth"
	"github.com/notesapp/notes/internal/config"
	"github.com/notesapp/notes/internal/notes"
	"github.com/notesapp/notes/internal/tui"
	"github.com/notesapp/notes/pkg/client"
)

// errNotSignedIn replaces notes.ErrNoSession at the command line.
var errNotSignedIn = errors.New("not signed in (run: notes login)")

// cli holds flag values and the per-invocation dependencies built in
// PersistentPreRunE.
type cli struct {
	apiURL     string
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
	client *client.Client
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "notes",
		Short: "A terminal client for your notes",
		Long: `notes signs in to a notes server and lets you create, edit and delete
notes from the terminal. Run without arguments to open the interactive view.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.apiURL, "api-url", "", "API base URL (overrides "+config.EnvAPIURL+" and the config file)")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.notes/config.yaml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		c.loginCmd(),
		c.signupCmd(),
		c.logoutCmd(),
		c.listCmd(),
		c.addCmd(),
		c.editCmd(),
		c.rmCmd(),
		c.openCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	c.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(c.logger)

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.apiURL != "" {
		cfg.APIURL = c.apiURL
	}
	c.cfg = cfg
	c.client = client.New(cfg.APIURL, client.WithLogger(c.logger))
	c.logger.Debug("configured", "api_url", cfg.APIURL, "token_file", cfg.TokenFile)
	return nil
}

// services wires both stores, restoring the persisted session if any.
func (c *cli) services() (*auth.Service, *notes.Service) {
	authSvc := auth.NewService(c.client, auth.NewStore())
	if tok := c.cfg.ReadToken(); tok != "" {
		authSvc.Restore(tok)
	}
	return authSvc, notes.NewService(c.client, notes.NewStore())
}

// interactive reports whether the command's stdin and stdout are both a
// terminal the TUI can take over.
func interactive(cmd *cobra.Command) bool {
	return isTerminal(cmd.InOrStdin()) && isTerminal(cmd.OutOrStdout())
}

func isTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// runTUI opens the interactive view: on the dashboard with a saved session,
// otherwise on the sign-in screen. Without a terminal and without a session
// it prints the greeting instead.
func (c *cli) runTUI(cmd *cobra.Command) error {
	if c.cfg.ReadToken() == "" && !interactive(cmd) {
		printGreeting(cmd.OutOrStdout())
		return nil
	}

	// stderr would corrupt the alt screen; log to a file or nowhere.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if c.cfg.LogFile != "" {
		f, err := os.OpenFile(c.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close() //nolint:errcheck
		level := slog.LevelInfo
		if c.verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	}

	c.client = client.New(c.cfg.APIURL, client.WithLogger(logger))
	authSvc, notesSvc := c.services()

	app := tui.NewApp(tui.Options{
		Auth:   authSvc,
		Notes:  notesSvc,
		Tokens: c.cfg,
		WebURL: c.cfg.WebURL,
		Logger: logger,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// sessionErr maps coordinator errors to command-line wording.
func sessionErr(err error) error {
	if errors.Is(err, notes.ErrNoSession) {
		return errNotSignedIn
	}
	return err
}
