// Command mailterm is a terminal client for the mail REST API.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/app"
	"github.com/nhle/mailterm/internal/credential"
	"github.com/nhle/mailterm/internal/logging"
	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/query"
	"github.com/nhle/mailterm/internal/session"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "mailterm:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("mailterm", pflag.ContinueOnError)
	model.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	path, err := fs.GetString("config")
	if err != nil {
		return err
	}
	cfg, err := model.LoadConfig(path, fs)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if write, _ := fs.GetBool("write-config"); write {
		if err := model.SaveConfig(path, cfg); err != nil {
			return err
		}
		fmt.Println("config written to", path)
		return nil
	}

	closeLog, err := logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer func() { _ = closeLog() }()

	logging.Info().
		Str("api", cfg.API.BaseURL).
		Dur("timeout", cfg.API.Timeout).
		Str("session_backend", cfg.Session.Backend).
		Msg("starting")

	cred := &api.Credential{}
	client := api.New(cfg.API, api.WithCredential(cred))
	store := session.New(openSlot(cfg.Session), cred)
	store.Bootstrap()

	p := tea.NewProgram(app.New(store, client, query.New()), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}

// openSlot returns the configured token slot. An unusable keyring falls
// back to memory so the client still starts.
func openSlot(cfg model.SessionConfig) credential.Slot {
	if cfg.Backend == model.SessionBackendMemory {
		return credential.NewMemorySlot()
	}
	slot, err := credential.NewKeyringSlot(cfg.Key, cfg.KeyringDir)
	if err != nil {
		logging.Warn().Err(err).Msg("keyring unavailable, session will not persist")
		return credential.NewMemorySlot()
	}
	return slot
}
