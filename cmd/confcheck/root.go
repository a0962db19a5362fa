package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xalexb/hjarta-config/config"
	"github.com/0xalexb/hjarta-config/config/diag"
	"github.com/0xalexb/hjarta-config/config/format"
	"github.com/0xalexb/hjarta-config/config/resolve"
	"github.com/0xalexb/hjarta-config/logging"
)

var errCheckFailed = errors.New("configuration check failed")

var errUnknownPrintFormat = errors.New("unknown print format")

type rootFlags struct {
	config   string
	dir      string
	section  string
	print    string
	logLevel string
}

// newRootCmd builds the command. env is the environment snapshot used for
// APPCONFIG; nil means the process environment.
func newRootCmd(stdout, stderr io.Writer, env map[string]string) *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "confcheck [path]",
		Short: "Check a YAML or JSON configuration file",
		Long: `Load a configuration file, report syntax errors with their line and column,
and optionally print the normalized document.

Examples:
  # Check an explicit file
  confcheck config/application.yaml

  # Resolve the file from APPCONFIG or the working directory
  APPCONFIG=/etc/app/config.json confcheck

  # Check one section and print it as JSON
  confcheck app.yaml --section services:api --print json`,
		Args:          cobra.MaximumNArgs(1),
		Version:       fmt.Sprintf("%s (compiled %s)", Version, CompiledAt),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			return runCheck(stdout, stderr, env, flags, args)
		},
	}

	cmd.Flags().StringVar(&flags.config, "config", "", "configuration file, used when it is a readable regular file")
	cmd.Flags().StringVar(&flags.dir, "dir", ".", "directory searched for application.yaml, application.yml or application.json")
	cmd.Flags().StringVar(&flags.section, "section", "", "colon-separated section to check, e.g. services:api")
	cmd.Flags().StringVar(&flags.print, "print", "", "print the normalized document: yaml or json")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "WARN", "log level: debug, info, warn, error")

	return cmd
}

func runCheck(stdout, stderr io.Writer, env map[string]string, flags rootFlags, args []string) error {
	printFormat, err := parsePrintFormat(flags.print)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(logging.LoggerConfig{Level: flags.logLevel, Format: logging.FormatText}, stderr)

	path, err := configPath(logger, env, flags, args)
	if err != nil {
		return err
	}

	loader := config.New[map[string]any](
		config.WithLogger(logger),
		config.WithSection(flags.section),
	)

	doc, err := loader.LoadPath(path)
	if err != nil {
		for _, line := range diag.Render(err) {
			_, _ = fmt.Fprintln(stderr, line)
		}

		return errCheckFailed
	}

	if path == "" {
		_, _ = fmt.Fprintln(stdout, "OK: no configuration file found, using the empty document")
	} else {
		_, _ = fmt.Fprintf(stdout, "OK: %s (%s)\n", path, format.FromExtension(path))
	}

	if printFormat == nil {
		return nil
	}

	out, err := loader.Encode(doc, *printFormat)
	if err != nil {
		return fmt.Errorf("printing configuration: %w", err)
	}

	_, err = stdout.Write(out)
	if err != nil {
		return fmt.Errorf("printing configuration: %w", err)
	}

	return nil
}

func configPath(logger *slog.Logger, env map[string]string, flags rootFlags, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	res, err := resolve.Resolve(resolve.Inputs{
		Property:  flags.config,
		Env:       env,
		SearchDir: flags.dir,
	})
	if err != nil {
		return "", fmt.Errorf("resolving configuration path: %w", err)
	}

	logger.Debug("configuration path resolved",
		slog.String("path", res.Path),
		slog.String("source", res.Source.String()))

	return res.Path, nil
}

func parsePrintFormat(value string) (*format.Format, error) {
	var f format.Format

	switch strings.ToLower(value) {
	case "":
		return nil, nil
	case "yaml", "yml":
		f = format.YAML
	case "json":
		f = format.JSON
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownPrintFormat, value)
	}

	return &f, nil
}
