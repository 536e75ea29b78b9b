package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/marcosgalleterobbva/bb-cli/bitbucket"
	"github.com/marcosgalleterobbva/bb-cli/config"
)

var (
	cfgFile  string
	cfg      *config.Config
	logger   zerolog.Logger
	bbClient *bitbucket.Client
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bb-cli",
	Short: "A CLI for the Bitbucket Data Center pull-request API",
	Long: `bb-cli talks to a Bitbucket Data Center (Server/DC) instance over its
REST API using a personal access token.

The server and token are read from the environment:
  BITBUCKET_SERVER     REST root, must end with /rest
  BITBUCKET_API_TOKEN  personal access token (PAT)`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, config.ErrMissingSetting) || errors.Is(err, config.ErrInvalidServerURL) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	rootCmd.AddCommand(prCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp initializes the configuration, logger and client
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	logger = setupLogger(cfg.Logging)

	timeout := time.Duration(cfg.Bitbucket.Timeout) * time.Second
	bbClient, err = bitbucket.NewClient(cfg.Bitbucket.Server, cfg.Bitbucket.Token, logger,
		bitbucket.WithTimeout(timeout),
		bitbucket.WithPageSize(cfg.Defaults.Limit),
	)
	if err != nil {
		return fmt.Errorf("failed to create Bitbucket client: %w", err)
	}

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
