// sigh-cli is the terminal front-end for the hospital information system's
// REST API. Every command goes through the session gateway, which renews the
// bearer token when it is close to expiry and ends the session on
// unrecoverable auth failures.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sigh/sigh/internal/config"
	"github.com/sigh/sigh/internal/platform/gateway"
	"github.com/sigh/sigh/internal/platform/session"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	store session.Store
	gw    *gateway.Client
}

func newApp() (*app, error) {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	if level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && level != zerolog.NoLevel {
		logger = logger.Level(level)
	} else {
		logger = logger.Level(zerolog.WarnLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := session.NewFileStore(cfg.SessionFile)
	if err != nil {
		return nil, fmt.Errorf("open session file: %w", err)
	}

	gw := gateway.NewClient(cfg.APIBaseURL, store, logger,
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout()}),
		gateway.WithRenewWindow(cfg.RenewWindow()),
		gateway.WithCheckInterval(cfg.ExpiryCheckInterval()),
		gateway.WithLogoutHook(func() {
			fmt.Fprintln(os.Stderr, "La sesión ha terminado. Inicie sesión nuevamente con: sigh-cli login")
		}),
	)

	return &app{cfg: cfg, log: logger, store: store, gw: gw}, nil
}

// requireSession fails fast when no session exists, before any request is
// attempted.
func (a *app) requireSession() error {
	if !session.Authenticated(a.store) {
		return fmt.Errorf("no active session; run: sigh-cli login")
	}
	return nil
}

// printJSON renders a command result to stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "sigh-cli",
		Short:         "Hospital information system client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(sessionCmd())
	rootCmd.AddCommand(cieCmd())
	rootCmd.AddCommand(patientCmd())
	rootCmd.AddCommand(surgeryCmd())
	rootCmd.AddCommand(bedCmd())
	rootCmd.AddCommand(staffCmd())
	rootCmd.AddCommand(establishmentCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(hospitalizationCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("user")
			password, _ := cmd.Flags().GetString("password")
			if username == "" {
				return fmt.Errorf("--user is required")
			}
			if password == "" {
				return fmt.Errorf("--password is required")
			}

			a, err := newApp()
			if err != nil {
				return err
			}

			result := a.gw.Login(context.Background(), username, password)
			if !result.Success {
				return fmt.Errorf("login failed: %s", result.Message)
			}

			profile := session.LoadProfile(a.store)
			fmt.Printf("Sesión iniciada: %s (%s)\n", profile.StaffName, profile.EstablishmentName)
			return nil
		},
	}
	cmd.Flags().String("user", "", "Username")
	cmd.Flags().String("password", "", "Password")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			a.gw.Logout()
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			profile := session.LoadProfile(a.store)
			fmt.Printf("Usuario:          %s\n", profile.StaffName)
			fmt.Printf("Establecimiento:  %s (%s)\n", profile.EstablishmentName, profile.EstablishmentID)
			if profile.IsAdmin() {
				fmt.Println("Rol:              administrador")
			}
			return nil
		},
	}
}

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect the stored session",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Check whether the stored token is still accepted by the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			token := a.store.Get(session.KeyToken)
			if a.gw.IsSessionValid(context.Background(), token) {
				fmt.Println("Sesión vigente")
				return nil
			}
			fmt.Println("Sesión vencida o rechazada")
			return nil
		},
	})

	return cmd
}
