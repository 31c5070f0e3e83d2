package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/jiralite/jl/internal/config"
	"github.com/jiralite/jl/internal/output"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if email == "" || password == "" {
			form := huh.NewForm(huh.NewGroup(
				huh.NewInput().Title("Email").Value(&email),
				huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password),
			))
			if err := form.Run(); err != nil {
				return err
			}
		}

		token, err := a.gw.Login(cmd.Context(), email, password)
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		if err := config.SetToken(token); err != nil {
			return fmt.Errorf("store token: %w", err)
		}
		a.sess.SetToken(token)

		user, err := a.gw.CurrentUser(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetch profile: %w", err)
		}
		output.Success("Logged in as %s <%s>", user.Name, user.Email)
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		password, _ := cmd.Flags().GetString("password")
		if email == "" || name == "" || password == "" {
			form := huh.NewForm(huh.NewGroup(
				huh.NewInput().Title("Name").Value(&name),
				huh.NewInput().Title("Email").Value(&email),
				huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password),
			))
			if err := form.Run(); err != nil {
				return err
			}
		}

		user, err := a.gw.Signup(cmd.Context(), email, name, password)
		if err != nil {
			return fmt.Errorf("signup: %w", err)
		}

		token, err := a.gw.Login(cmd.Context(), email, password)
		if err != nil {
			return fmt.Errorf("login after signup: %w", err)
		}
		if err := config.SetToken(token); err != nil {
			return fmt.Errorf("store token: %w", err)
		}
		output.Success("Welcome, %s", user.Name)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ClearToken(); err != nil {
			return fmt.Errorf("clear token: %w", err)
		}
		output.Success("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireAuth(); err != nil {
			return err
		}

		user, err := a.gw.CurrentUser(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetch profile: %w", err)
		}
		fmt.Printf("%s <%s> (id %d)\n", user.Name, user.Email, user.ID)
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().String("password", "", "Account password")
	signupCmd.Flags().String("email", "", "Account email")
	signupCmd.Flags().String("name", "", "Display name")
	signupCmd.Flags().String("password", "", "Account password")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
