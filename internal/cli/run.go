package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/roach88/reminders/internal/config"
	"github.com/roach88/reminders/internal/reminder"
	"github.com/roach88/reminders/internal/tui"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ConfigPath string
	Delay      time.Duration
	IDPolicy   string
	LogFile    string

	// SessionGenerator overrides the store's session id generator (for testing).
	// If nil, defaults to reminder.UUIDv7Generator.
	SessionGenerator reminder.SessionIDGenerator

	// ProgramOptions are appended to the bubbletea program options (for testing).
	ProgramOptions []tea.ProgramOption
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

// newRunCommand binds the run flags to opts. Flag defaults are written into
// opts, so test hooks must be set after this returns.
func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the reminder list",
		Long: `Open the interactive reminder list in the terminal.

Settings come from --config (if given) and are overridden by --delay and
--id-policy. The screen is owned by the list, so logs are only written
when --log-file is set.

Example:
  reminders run
  reminders run --delay 3s --id-policy length
  reminders run --config ./reminders.yaml --log-file /tmp/reminders.log -v`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReminders(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config file")
	cmd.Flags().DurationVar(&opts.Delay, "delay", reminder.DefaultAutoExpireDelay, "auto-expire delay")
	cmd.Flags().StringVar(&opts.IDPolicy, "id-policy", string(reminder.IDCounter), "id policy (counter|length)")
	cmd.Flags().StringVar(&opts.LogFile, "log-file", "", "append logs to this file")

	return cmd
}

func runReminders(opts *RunOptions, cmd *cobra.Command) error {
	cfg, err := resolveConfig(opts, cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	level, err := cfg.Level()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	logger, closeLog, err := openLogger(opts.LogFile, level)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open log file", err)
	}
	defer closeLog()

	storeOpts, err := cfg.Options()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	storeOpts = append(storeOpts, reminder.WithLogger(logger))
	if opts.SessionGenerator != nil {
		storeOpts = append(storeOpts, reminder.WithSessionIDGenerator(opts.SessionGenerator))
	}

	st := reminder.New(storeOpts...)
	defer st.Close()

	// Use command's context if available (for testing), otherwise create one
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	programOpts := append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	}, opts.ProgramOptions...)

	logger.Info("reminder list starting",
		"delay", cfg.Delay(),
		"id_policy", cfg.IDPolicy,
		"config", opts.ConfigPath,
	)

	p := tea.NewProgram(tui.New(st), programOpts...)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return WrapExitError(ExitFailure, "reminder list error", err)
	}

	counts := st.Counts()
	logger.Info("reminder list stopped",
		"total", counts.Total,
		"pending", counts.Pending,
		"completed", counts.Completed,
	)
	return nil
}

// resolveConfig layers the config file, then explicitly set flags, over
// the defaults, and validates the result.
func resolveConfig(opts *RunOptions, cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("delay") {
		if opts.Delay%time.Millisecond != 0 {
			return config.Config{}, fmt.Errorf("--delay must be a whole number of milliseconds, got %s", opts.Delay)
		}
		cfg.DelayMS = int(opts.Delay / time.Millisecond)
	}
	if flags.Changed("id-policy") {
		cfg.IDPolicy = opts.IDPolicy
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}

	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openLogger returns a text logger appending to path, or a discarding
// logger when path is empty. The terminal belongs to the list, so nothing
// is ever logged to stderr while it runs.
func openLogger(path string, level slog.Level) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}

	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	closeFn := func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing log file: %v\n", err)
		}
	}
	return slog.New(handler), closeFn, nil
}
