// ABOUTME: Notification commands: list, mark read and live watch over the push stream
// ABOUTME: watch prints each pushed notification until interrupted or the stream ends

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/edgecall/internal/app"
	"github.com/2389/edgecall/internal/auth"
	"github.com/2389/edgecall/internal/notifications"
	"github.com/2389/edgecall/internal/stream"
)

var watchUserID string

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notif"},
	Short:   "List, acknowledge and watch notifications",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the caller's notifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(app.MustGet().Notifications.List(cmd.Context()))
	},
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark one notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(app.MustGet().Notifications.MarkRead(cmd.Context(), args[0]))
	},
}

var notificationsReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification as read",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(app.MustGet().Notifications.MarkAllRead(cmd.Context()))
	},
}

var notificationsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print notifications as they are pushed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.MustGet()

		userID := watchUserID
		if userID == "" {
			var err error
			if userID, err = currentUserID(cmd.Context(), a); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cyan := color.New(color.FgCyan)
		green := color.New(color.FgGreen)
		yellow := color.New(color.FgYellow)

		failed := make(chan error, 1)
		closed := make(chan struct{})
		disconnect := a.Notifications.Subscribe(userID, notifications.Handler{
			OnOpen: func() {
				green.Fprint(os.Stderr, "    ▶ ")
				fmt.Fprintf(os.Stderr, "watching notifications for %s (Ctrl+C to stop)\n", userID)
			},
			OnNotification: func(n notifications.Notification) {
				if flags.JSON {
					_ = printJSONLine(n)
					return
				}
				cyan.Printf("[%s] ", n.CreatedAt.Local().Format(time.TimeOnly))
				fmt.Printf("%s %s", n.Type, n.ID)
				if len(n.Data) > 0 {
					fmt.Printf(" %s", n.Data)
				}
				fmt.Println()
			},
			OnClose: func() { close(closed) },
			OnError: func(err error) {
				var me *stream.MessageError
				if errors.As(err, &me) || errors.Is(err, notifications.ErrMissingID) {
					yellow.Fprint(os.Stderr, "    ! ")
					fmt.Fprintf(os.Stderr, "skipped message: %v\n", err)
					return
				}
				select {
				case failed <- err:
				default:
				}
			},
		})
		if disconnect == nil {
			return errors.New("could not open the notification stream")
		}
		defer disconnect()

		select {
		case <-ctx.Done():
			return nil
		case <-closed:
			fmt.Fprintln(os.Stderr, "stream closed by remote")
			return nil
		case err := <-failed:
			return fmt.Errorf("notification stream: %w", err)
		}
	},
}

func init() {
	notificationsWatchCmd.Flags().StringVar(&watchUserID, "user", "", "user id to watch (default: the stored session's user)")

	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsReadCmd)
	notificationsCmd.AddCommand(notificationsReadAllCmd)
	notificationsCmd.AddCommand(notificationsWatchCmd)
}

// currentUserID resolves the user from the stored session, then from the
// subject of the current token.
func currentUserID(ctx context.Context, a *app.App) (string, error) {
	if a.Sessions != nil {
		if s, err := a.Sessions.Current(ctx); err == nil && s.UserID != "" {
			return s.UserID, nil
		}
	}
	token, ok := a.Tokens.Token(ctx)
	if !ok {
		return "", stream.ErrNoCredential
	}
	claims, err := auth.ParseClaims(token)
	if claims == nil || claims.Subject == "" {
		if err == nil {
			err = errors.New("token has no subject")
		}
		return "", fmt.Errorf("cannot determine user, pass --user: %w", err)
	}
	return claims.Subject, nil
}
