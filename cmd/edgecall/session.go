// ABOUTME: Session commands storing, showing and clearing the persisted access token
// ABOUTME: set verifies the token against the "me" path before storing it

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/edgecall/internal/app"
	"github.com/2389/edgecall/internal/session"
)

var (
	sessionNoVerify bool
	sessionRefresh  string
)

var errNoSessionStore = errors.New("no session store configured, set auth.session_db")

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the stored session",
}

var sessionSetCmd = &cobra.Command{
	Use:   "set <access-token>",
	Short: "Verify and store an access token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.MustGet()
		if a.Sessions == nil {
			return errNoSessionStore
		}

		s := session.FromToken(strings.TrimSpace(args[0]))
		s.RefreshToken = sessionRefresh
		if s.Expired(time.Now()) {
			return fmt.Errorf("token expired at %s", s.ExpiresAt.Local().Format(time.RFC3339))
		}

		if !sessionNoVerify {
			res, err := a.Users.Me(cmd.Context(), s.AccessToken)
			if err != nil {
				return err
			}
			if !res.OK() {
				return fmt.Errorf("verifying token: %w", res.Error)
			}
			if res.Data.User != nil && res.Data.User.ID != "" {
				s.UserID = res.Data.User.ID
			}
		}

		if err := a.Sessions.Save(cmd.Context(), s); err != nil {
			return err
		}
		printSession(s)
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.MustGet()
		if a.Sessions == nil {
			return errNoSessionStore
		}
		s, err := a.Sessions.Current(cmd.Context())
		if errors.Is(err, session.ErrNoSession) {
			fmt.Println("no session stored")
			return nil
		}
		if err != nil {
			return err
		}
		printSession(s)
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.MustGet()
		if a.Sessions == nil {
			return errNoSessionStore
		}
		a.Streams.Close()
		if err := a.Sessions.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("session cleared")
		return nil
	},
}

func init() {
	sessionSetCmd.Flags().BoolVar(&sessionNoVerify, "no-verify", false, "store without checking the token remotely")
	sessionSetCmd.Flags().StringVar(&sessionRefresh, "refresh-token", "", "refresh token to store alongside")

	sessionCmd.AddCommand(sessionSetCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionClearCmd)
}

func printSession(s *session.Session) {
	if flags.JSON {
		_ = printJSONLine(struct {
			UserID    string    `json:"user_id"`
			ExpiresAt time.Time `json:"expires_at,omitzero"`
			Expired   bool      `json:"expired"`
		}{s.UserID, s.ExpiresAt, s.Expired(time.Now())})
		return
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	green.Print("    ▶ ")
	fmt.Printf("User:    %s\n", valueOr(s.UserID, "(unknown)"))
	green.Print("    ▶ ")
	fmt.Printf("Token:   %s\n", maskToken(s.AccessToken))
	switch {
	case s.ExpiresAt.IsZero():
		green.Print("    ▶ ")
		fmt.Println("Expires: unknown")
	case s.Expired(time.Now()):
		red.Print("    ✗ ")
		fmt.Printf("Expired: %s\n", s.ExpiresAt.Local().Format(time.RFC3339))
	default:
		green.Print("    ▶ ")
		fmt.Printf("Expires: %s (in %s)\n", s.ExpiresAt.Local().Format(time.RFC3339), time.Until(s.ExpiresAt).Round(time.Second))
	}
}

func maskToken(token string) string {
	if len(token) <= 12 {
		return "****"
	}
	return token[:6] + "…" + token[len(token)-4:]
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
