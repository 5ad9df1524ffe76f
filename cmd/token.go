package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/capykyo/capy-book-fetch/internal/auth"
	"github.com/capykyo/capy-book-fetch/internal/bootstrap"
	"github.com/capykyo/capy-book-fetch/internal/config"
)

const (
	defaultTokenUser    = "test-user"
	productionTokenUser = "production-user"
)

func newTokenCommand() *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Generate and verify API tokens",
	}
	tokenCmd.AddCommand(newTokenGenerateCommand(), newTokenVerifyCommand())
	return tokenCmd
}

type generateOptions struct {
	userID     string
	expiresIn  string
	production bool
}

func newTokenGenerateCommand() *cobra.Command {
	opts := generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Sign a token with the configured JWT secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("user-id") && opts.production {
				opts.userID = productionTokenUser
			}
			return generateToken(cmd.OutOrStdout(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.userID, "user-id", defaultTokenUser, "user id stored in the token")
	cmd.Flags().StringVar(&opts.expiresIn, "expires-in", "", "token lifetime, e.g. 30m, 12h, 7d (default: JWT_EXPIRES_IN)")
	cmd.Flags().BoolVar(&opts.production, "production", false, "issue a production token (env claim \"production\")")

	return cmd
}

func generateToken(out io.Writer, cfg *config.Config, opts generateOptions) error {
	jwtManager, err := bootstrap.NewJWTManager(cfg)
	if err != nil {
		return err
	}

	ttl := jwtManager.DefaultExpiration()
	if opts.expiresIn == "" {
		opts.expiresIn = cfg.Auth.TokenExpiry
	} else if ttl, err = auth.ParseExpiry(opts.expiresIn); err != nil {
		return fmt.Errorf("invalid --expires-in: %w", err)
	}

	env := ""
	if opts.production {
		env = config.EnvProduction
	}

	token, err := jwtManager.GenerateToken(opts.userID, env, ttl)
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}

	fmt.Fprintln(out, token)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "User:       %s\n", opts.userID)
	fmt.Fprintf(out, "Expires in: %s (%s)\n", opts.expiresIn, time.Now().Add(ttl).Format(time.RFC3339))
	if cfg.UsesDefaultSecret() {
		fmt.Fprintln(out, "Warning:    signed with the default secret; set JWT_SECRET for real deployments")
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintf(out, "  curl -X POST http://localhost:%d/api/extract \\\n", cfg.Service.Port)
	fmt.Fprintf(out, "    -H \"Authorization: Bearer %s\" \\\n", token)
	fmt.Fprintln(out, "    -H \"Content-Type: application/json\" \\")
	fmt.Fprintln(out, "    -d '{\"url\":\"https://quanben.io/n/book/1.html\"}'")
	return nil
}

func newTokenVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Validate a token and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return verifyToken(cmd.OutOrStdout(), cfg, args[0])
		},
	}
}

func verifyToken(out io.Writer, cfg *config.Config, token string) error {
	jwtManager, err := bootstrap.NewJWTManager(cfg)
	if err != nil {
		return err
	}

	claims, err := jwtManager.ValidateToken(auth.BearerToken(token))
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Claim", "Value"})
	t.AppendRow(table.Row{"userId", claims.UserID})
	t.AppendRow(table.Row{"env", claims.Env})
	if claims.IssuedAt != nil {
		t.AppendRow(table.Row{"iat", claims.IssuedAt.Format(time.RFC3339)})
	}
	if claims.ExpiresAt != nil {
		t.AppendRow(table.Row{"exp", claims.ExpiresAt.Format(time.RFC3339)})
	}
	t.Render()
	return nil
}
