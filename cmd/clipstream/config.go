package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipstream/internal/ipc"
	"go.klb.dev/clipstream/internal/logging"
)

// envKeyReplacer maps flag names to env var suffixes: retention-days →
// CLIPSTREAM_RETENTION_DAYS.
var envKeyReplacer = strings.NewReplacer("-", "_")

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and CLIPSTREAM_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → CLIPSTREAM_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("clipstream")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/clipstream/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "clipstream"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("CLIPSTREAM")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-background", false, "run interactively: tinter logs + debug level")
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default: info for service, debug for interactive)")
	cmd.Flags().String("log-file", "", "append logs to this file instead of stderr")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// addSocketFlag adds the --socket flag to a command.
func addSocketFlag(cmd *cobra.Command) {
	cmd.Flags().String("socket", ipc.SocketPath(), "daemon socket path")
}

// setupLogging reads logging flags from viper and configures slog. The
// returned closer releases the log file.
func setupLogging(v *viper.Viper) (io.Closer, error) {
	return logging.Setup(logging.Options{
		Format:      logging.ParseFormat(v.GetString("log-format")),
		Level:       v.GetString("log-level"),
		Interactive: v.GetBool("no-background") || logging.IsTTY(os.Stderr),
		File:        v.GetString("log-file"),
	})
}

// defaultDBPath is <UserConfigDir>/clipstream/clipboard.db.
func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "clipstream", "clipboard.db")
}
