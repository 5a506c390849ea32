package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/scrobbled/scrobbled/internal/config"
	"github.com/scrobbled/scrobbled/internal/lastfm"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Enter Last.fm credentials",
	Long: `Interactively enter your Last.fm account and API credentials.

Scrobbling needs an API key and secret in addition to your account;
create them at https://www.last.fm/api/account/create. The credentials
are verified against Last.fm and saved to the config file.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("setup needs a terminal; set LASTFM_* environment variables instead")
	}

	creds := cfg.Lastfm

	required := func(name string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", name)
			}
			return nil
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Last.fm username").
				Value(&creds.Username).
				Validate(required("username")),
			huh.NewInput().
				Title("Last.fm password").
				EchoMode(huh.EchoModePassword).
				Value(&creds.Password).
				Validate(required("password")),
			huh.NewInput().
				Title("API key").
				Description("From https://www.last.fm/api/account/create").
				Value(&creds.APIKey).
				Validate(required("api key")),
			huh.NewInput().
				Title("API secret").
				EchoMode(huh.EchoModePassword).
				Value(&creds.APISecret).
				Validate(required("api secret")),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	fmt.Println("Verifying credentials with Last.fm...")
	if err := verifyCredentials(creds); err != nil {
		fmt.Printf("Authentication failed: %v\n", err)

		saveAnyway := false
		confirm := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Save the credentials anyway?").
					Value(&saveAnyway),
			),
		)
		if err := confirm.Run(); err != nil || !saveAnyway {
			return fmt.Errorf("setup aborted")
		}
	} else {
		fmt.Println("Authenticated with Last.fm")
	}

	path, err := saveCredentials(creds)
	if err != nil {
		return err
	}

	fmt.Printf("Saved credentials to %s\n", path)
	fmt.Println("Run 'scrobbled run' to start scrobbling")
	return nil
}

func verifyCredentials(creds config.LastfmConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), creds.Timeout())
	defer cancel()

	probe := lastfm.New(lastfm.Config{
		Username:  creds.Username,
		Password:  creds.Password,
		APIKey:    creds.APIKey,
		APISecret: creds.APISecret,
		Timeout:   creds.Timeout(),
	}, zap.NewNop())

	return probe.Connect(ctx)
}

// saveCredentials merges the credentials into the config file, creating it
// when necessary. Other sections are left untouched.
func saveCredentials(creds config.LastfmConfig) (string, error) {
	path := getConfigPath()

	var raw map[string]interface{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read config: %w", err)
	}
	if len(data) > 0 {
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return "", fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if raw == nil {
		raw = make(map[string]interface{})
	}

	section, ok := raw["lastfm"].(map[string]interface{})
	if !ok {
		section = make(map[string]interface{})
		raw["lastfm"] = section
	}
	section["username"] = creds.Username
	section["password"] = creds.Password
	section["api_key"] = creds.APIKey
	section["api_secret"] = creds.APISecret

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	// The file holds the account password, so keep it private.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	defer func() { _ = f.Close() }()

	_, _ = fmt.Fprintln(f, "# scrobbled configuration")
	_, _ = fmt.Fprintln(f, "")

	encoder := toml.NewEncoder(f)
	encoder.Indent = "  "
	if err := encoder.Encode(raw); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}

	return path, nil
}
