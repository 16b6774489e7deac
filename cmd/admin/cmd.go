package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"learnpath/internal/model"
	"learnpath/internal/service"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errEmptyPassword = errors.New("password must not be empty")
	errShortPassword = fmt.Errorf("password must be at least %d characters", service.MinPasswordLength)
)

type commandLine struct {
	migrate func() error
	users   service.UserService
}

func newRootCmd(cli *commandLine) *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Learnpath operator tasks",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.migrate(); err != nil {
				return err
			}
			cmd.Println("schema up to date")
			return nil
		},
	})

	var (
		name    string
		isAdmin bool
	)
	addUser := &cobra.Command{
		Use:   "adduser <email>",
		Short: "Create a user; the password is prompted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pwd, err := promptPassword(cmd)
			if err != nil {
				return err
			}
			role := model.RoleStandard
			if isAdmin {
				role = model.RoleAdmin
			}
			user, err := cli.users.CreateUser(context.Background(), model.RoleAdmin, service.CreateUserInput{
				Email:    args[0],
				Name:     name,
				Password: pwd,
				Role:     role,
			})
			if err != nil {
				return err
			}
			cmd.Printf("created %s user %s (%s)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}
	addUser.Flags().StringVar(&name, "name", "", "display name")
	addUser.Flags().BoolVar(&isAdmin, "admin", false, "grant the admin role")
	root.AddCommand(addUser)

	root.AddCommand(&cobra.Command{
		Use:   "resetpassword <email>",
		Short: "Set a user's password; the password is prompted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pwd, err := promptPassword(cmd)
			if err != nil {
				return err
			}
			if err := cli.users.SetPassword(context.Background(), args[0], pwd); err != nil {
				return err
			}
			cmd.Println("password updated")
			return nil
		},
	})

	return root
}

func promptPassword(cmd *cobra.Command) (string, error) {
	cmd.Print("Enter password: ")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	cmd.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(pwd) == 0 {
		return "", errEmptyPassword
	}
	if utf8.RuneCount(pwd) < service.MinPasswordLength {
		return "", errShortPassword
	}
	return string(pwd), nil
}
