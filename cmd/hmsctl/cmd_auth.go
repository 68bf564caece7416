package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shef088/Hospital-Management-System-sub001/internal/models"
)

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, registerCmd)

	loginCmd.Flags().String("email", "", "account email (required)")
	loginCmd.Flags().String("password", "", "account password (required)")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	registerCmd.Flags().String("first-name", "", "first name (required)")
	registerCmd.Flags().String("last-name", "", "last name (required)")
	registerCmd.Flags().String("email", "", "account email (required)")
	registerCmd.Flags().String("password", "", "account password (required)")
	_ = registerCmd.MarkFlagRequired("first-name")
	_ = registerCmd.MarkFlagRequired("last-name")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("password")
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and persist the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		c, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		sess, err := c.Sessions.Login(cmd.Context(), email, password)
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Logged in as %s %s (%s)\n",
			sess.User.FirstName, sess.User.LastName, sess.User.UserType)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the persisted session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		c.Sessions.Logout(cmd.Context())
		fmt.Fprintln(os.Stdout, "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		sess := c.Sessions.Current()
		if !sess.Authenticated() {
			fmt.Fprintln(os.Stdout, "Not logged in.")
			return nil
		}
		fmt.Fprintf(os.Stdout, "%s %s <%s> userType=%s", sess.User.FirstName,
			sess.User.LastName, sess.User.Email, sess.User.UserType)
		if role := sess.User.RoleName(); role != "" {
			fmt.Fprintf(os.Stdout, " role=%s", role)
		}
		fmt.Fprintln(os.Stdout)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a patient account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		firstName, _ := cmd.Flags().GetString("first-name")
		lastName, _ := cmd.Flags().GetString("last-name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		c, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		err = c.Sessions.Register(cmd.Context(), models.RegisterInput{
			FirstName: firstName,
			LastName:  lastName,
			Email:     email,
			Password:  password,
		})
		if err != nil {
			return fmt.Errorf("register: %w", err)
		}
		fmt.Fprintln(os.Stdout, "Account created. Log in with `hmsctl login`.")
		return nil
	},
}
