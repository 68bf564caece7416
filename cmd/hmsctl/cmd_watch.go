package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shef088/Hospital-Management-System-sub001/internal/models"
	"github.com/shef088/Hospital-Management-System-sub001/internal/realtime"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream realtime notifications until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		if !c.Sessions.Current().Authenticated() {
			return fmt.Errorf("not logged in")
		}

		c.Realtime.SubscribeState(func(s realtime.State) {
			fmt.Fprintf(os.Stderr, "[%s]\n", s)
		})
		c.Realtime.SetSink(func(n models.Notification) {
			c.Resources.ApplyNotification(n)
			fmt.Fprintf(os.Stdout, "%s  %s  %s\n",
				n.DeliveredAt.Format("15:04:05"), n.Type, n.Message)
		})
		c.Realtime.Start()

		<-cmd.Context().Done()
		return nil
	},
}
