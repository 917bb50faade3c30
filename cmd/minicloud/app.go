package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"minicloud/pkg/app"
	"minicloud/pkg/auth"
	"minicloud/pkg/config"
	"minicloud/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/term"
)

// cli bundles the application context with the terminal it renders to.
type cli struct {
	*app.Context
	styles styles
	out    io.Writer
	in     *bufio.Reader
	json   bool
}

// openCLI loads the configuration and builds the application context.
// The returned cleanup flushes metrics and releases the session storage.
func openCLI() (*cli, func(), error) {
	logger := setupLogger(verbose)

	cfg, err := config.LoadClientConfig(configFile)
	if err != nil {
		logger.Sync()
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if serverURL != "" {
		if err := cfg.Set("server", serverURL); err != nil {
			logger.Sync()
			return nil, nil, err
		}
	}

	var m *metrics.ClientMetrics
	if metricsTextfile != "" {
		m = metrics.NewClientMetrics()
	}

	ac, err := app.New(app.Options{Config: cfg, Logger: logger, Metrics: m})
	if err != nil {
		logger.Sync()
		return nil, nil, fmt.Errorf("failed to open session: %w", err)
	}

	c := &cli{
		Context: ac,
		styles:  newStyles(ac.Store.Theme()),
		out:     os.Stdout,
		in:      bufio.NewReader(os.Stdin),
		json:    outputJSON || cfg.OutputFormat == config.OutputJSON,
	}
	ac.Notifier = newPrinter(os.Stderr, c.styles)

	cleanup := func() {
		if m != nil {
			if err := m.WriteTextfile(metricsTextfile); err != nil {
				logger.Warn("Failed to write metrics", zap.String("path", metricsTextfile), zap.Error(err))
			}
		}
		if err := ac.Close(); err != nil {
			logger.Warn("Failed to close session storage", zap.Error(err))
		}
		logger.Sync()
	}
	return c, cleanup, nil
}

// commandContext is cancelled on interrupt.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// requireSession fails unless someone is signed in.
func (c *cli) requireSession() error {
	if _, ok := c.Session(); !ok {
		return fmt.Errorf("%w: run 'minicloud login' first", auth.ErrNotSignedIn)
	}
	return nil
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *cli) readLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo on a terminal and falls back to a plain
// line when stdin is piped.
func (c *cli) readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return c.readLine(prompt)
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// confirm asks a yes/no question; anything but y or yes declines.
func (c *cli) confirm(question string) bool {
	answer, err := c.readLine(question + " [y/N] ")
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}
