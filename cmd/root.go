// Package cmd implements the capy-book-fetch command-line interface: the HTTP
// service, token tooling and one-shot extraction.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/capykyo/capy-book-fetch/internal/bootstrap"
	"github.com/capykyo/capy-book-fetch/internal/config"
)

const (
	keyConfig    = "config"
	keyDebug     = "debug"
	keyJWTSecret = "auth.jwt_secret"
)

// NewRootCommand builds the command tree. Running the root command starts the service.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "capy-book-fetch",
		Short: "Fetch novel chapters and extract their content",
		Long: `capy-book-fetch downloads a web page and extracts title, content, author and
chapter navigation links, using a site-specific ruleset when one matches the URL.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().String(keyConfig, "", "config file (default is ./config.yml or $CONFIG_PATH)")
	rootCmd.PersistentFlags().Bool(keyDebug, false, "enable debug logging")

	rootCmd.AddCommand(
		newServeCommand(),
		newTokenCommand(),
		newExtractCommand(),
		newVersionCommand(),
	)

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	// .env is optional; existing environment variables win
	_ = godotenv.Load()

	return NewRootCommand().ExecuteContext(context.Background())
}

// initConfig binds flags and environment variables to viper.
func initConfig(cmd *cobra.Command) error {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.BindPFlag(keyConfig, cmd.Flags().Lookup(keyConfig)); err != nil {
		return fmt.Errorf("failed to bind config flag: %w", err)
	}
	if err := viper.BindPFlag(keyDebug, cmd.Flags().Lookup(keyDebug)); err != nil {
		return fmt.Errorf("failed to bind debug flag: %w", err)
	}
	if err := viper.BindEnv(keyConfig, "CONFIG_PATH"); err != nil {
		return fmt.Errorf("failed to bind CONFIG_PATH: %w", err)
	}
	if err := viper.BindEnv(keyJWTSecret, "JWT_SECRET"); err != nil {
		return fmt.Errorf("failed to bind JWT_SECRET: %w", err)
	}
	return nil
}

// loadConfig loads the service configuration and applies viper-bound overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := bootstrap.LoadConfig(viper.GetString(keyConfig))
	if err != nil {
		return nil, err
	}
	if secret := viper.GetString(keyJWTSecret); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if viper.GetBool(keyDebug) {
		cfg.Service.Debug = true
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the configured service version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", cfg.Service.Name, cfg.Service.Version)
			return nil
		},
	}
}
