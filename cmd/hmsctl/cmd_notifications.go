package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	notificationsCmd.AddCommand(unreadCmd, markReadCmd)
	rootCmd.AddCommand(notificationsCmd)
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Notification helpers",
}

var unreadCmd = &cobra.Command{
	Use:   "unread <recipient-id>",
	Short: "Count unread notifications for a recipient",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		n, err := c.Resources.UnreadNotifications(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, n)
		return nil
	},
}

var markReadCmd = &cobra.Command{
	Use:   "mark-read <id>",
	Short: "Mark one notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		n, err := c.Resources.MarkNotificationRead(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(n)
	},
}
