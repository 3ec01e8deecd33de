package system

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/morrow/internal/cli"
	"github.com/julianstephens/morrow/internal/constants"
	"github.com/julianstephens/morrow/internal/keyring"
	"github.com/julianstephens/morrow/internal/storage"
)

// AuthSetKeyCmd stores the LLM API key in the OS keyring
type AuthSetKeyCmd struct {
	Key string `arg:"" help:"LLM API key."`
}

func (cmd *AuthSetKeyCmd) Run(ctx *cli.Context) error {
	if err := keyring.SetAPIKey(strings.TrimSpace(cmd.Key)); err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, cli.OKStyle.Render("✓ API key stored in OS keyring"))
	if os.Getenv(constants.EnvLLMAPIKey) != "" {
		fmt.Fprintf(ctx.Out, "  %s is set and takes precedence\n", constants.EnvLLMAPIKey)
	}
	return nil
}

type AuthDeleteKeyCmd struct{}

func (cmd *AuthDeleteKeyCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteAPIKey(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no API key found in keyring")
		}
		return err
	}
	fmt.Fprintln(ctx.Out, cli.OKStyle.Render("✓ API key deleted from OS keyring"))
	return nil
}

// AuthSetDBCmd stores a PostgreSQL connection string, password included,
// in the OS keyring.
type AuthSetDBCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string."`
}

func (cmd *AuthSetDBCmd) Run(ctx *cli.Context) error {
	if !storage.IsPostgres(cmd.ConnectionString) {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}
	if err := storage.ValidateConnString(cmd.ConnectionString, true); err != nil {
		return fmt.Errorf("invalid connection string: %w", err)
	}
	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return err
	}

	fmt.Fprintln(ctx.Out, cli.OKStyle.Render("✓ Connection string stored in OS keyring"))
	if ctx.Config.Storage.Database != constants.KeyringDatabase {
		fmt.Fprintf(ctx.Out, "  Run 'morrow config set storage.database %s' to use it\n", constants.KeyringDatabase)
	}
	return nil
}

type AuthDeleteDBCmd struct{}

func (cmd *AuthDeleteDBCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return err
	}
	fmt.Fprintln(ctx.Out, cli.OKStyle.Render("✓ Connection string deleted from OS keyring"))
	return nil
}

// AuthStatusCmd reports where each secret would be read from.
type AuthStatusCmd struct{}

func (cmd *AuthStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Fprintln(ctx.Out, cli.ErrorStyle.Render("❌ OS keyring is not available on this system"))
	} else {
		fmt.Fprintln(ctx.Out, cli.OKStyle.Render("✓ OS keyring is available"))
	}

	fmt.Fprintf(ctx.Out, "API key:           %s\n", describeSecret(constants.EnvLLMAPIKey, keyring.GetAPIKey, nil))
	fmt.Fprintf(ctx.Out, "Connection string: %s\n", describeSecret(constants.EnvDBConnection, keyring.GetConnectionString, maskPassword))
	return nil
}

func describeSecret(env string, get func() (string, error), show func(string) string) string {
	if os.Getenv(env) != "" {
		return "from " + env
	}
	v, err := get()
	switch {
	case err == nil && show != nil:
		return "keyring (" + show(v) + ")"
	case err == nil:
		return "keyring"
	case errors.Is(err, keyring.ErrNotFound):
		return cli.DimStyle.Render("not set")
	default:
		return cli.WarnStyle.Render(err.Error())
	}
}

// maskPassword masks passwords in connection strings for display
func maskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		idx := strings.Index(connStr, "://")
		remaining := connStr[idx+3:]
		if atIdx := strings.LastIndex(remaining, "@"); atIdx != -1 {
			userInfo := remaining[:atIdx]
			if colonIdx := strings.Index(userInfo, ":"); colonIdx != -1 {
				return connStr[:idx+3] + userInfo[:colonIdx] + ":****" + connStr[idx+3+atIdx:]
			}
		}
		return connStr
	}

	if strings.Contains(connStr, "password=") {
		parts := strings.Fields(connStr)
		for i, part := range parts {
			if strings.HasPrefix(part, "password=") {
				parts[i] = "password=****"
			}
		}
		return strings.Join(parts, " ")
	}
	return connStr
}
