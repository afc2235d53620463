package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/service"
)

func newCreateUserCommand() *cobra.Command {
	var input service.CreateUserInput

	cmd := &cobra.Command{
		Use:   "createuser",
		Short: "Create a user account",
		Long:  `Create a user. The password is read from --password or prompted for on the terminal.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if input.Password == "" {
				password, err := promptPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				input.Password = password
			}
			return withServices(cmd.Context(), func(ctx context.Context, svc *service.Services) error {
				user, err := svc.Users.Create(ctx, input)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", user.Username, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&input.Username, "username", "", "Login name (required)")
	cmd.Flags().StringVar(&input.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&input.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&input.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&input.Password, "password", "", "Password; prompted for when omitted")
	cmd.Flags().BoolVar(&input.IsStaff, "staff", false, "Allow access to the admin console")
	cmd.Flags().BoolVar(&input.IsSuperuser, "superuser", false, "Grant every permission")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newGrantCommands() []*cobra.Command {
	var username, perm, group string

	grant := &cobra.Command{
		Use:   "grant",
		Short: "Grant a permission to a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, svc *service.Services) error {
				return svc.Permissions.GrantUser(ctx, username, domain.Permission(perm))
			})
		},
	}
	revoke := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke a permission from a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, svc *service.Services) error {
				return svc.Permissions.RevokeUser(ctx, username, domain.Permission(perm))
			})
		},
	}
	for _, cmd := range []*cobra.Command{grant, revoke} {
		cmd.Flags().StringVar(&username, "username", "", "User name (required)")
		cmd.Flags().StringVar(&perm, "perm", string(domain.PermCanMarkReturned), "Permission codename")
		_ = cmd.MarkFlagRequired("username")
	}

	addGroup := &cobra.Command{
		Use:   "addgroup",
		Short: "Add a user to a group",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, svc *service.Services) error {
				return svc.Permissions.AddToGroup(ctx, username, group)
			})
		},
	}
	addGroup.Flags().StringVar(&username, "username", "", "User name (required)")
	addGroup.Flags().StringVar(&group, "group", "", "Group name (required)")
	_ = addGroup.MarkFlagRequired("username")
	_ = addGroup.MarkFlagRequired("group")

	grantGroup := &cobra.Command{
		Use:   "grantgroup",
		Short: "Grant a permission to every member of a group",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, svc *service.Services) error {
				return svc.Permissions.GrantGroup(ctx, group, domain.Permission(perm))
			})
		},
	}
	grantGroup.Flags().StringVar(&group, "group", "", "Group name (required)")
	grantGroup.Flags().StringVar(&perm, "perm", string(domain.PermCanMarkReturned), "Permission codename")
	_ = grantGroup.MarkFlagRequired("group")

	return []*cobra.Command{grant, revoke, addGroup, grantGroup}
}

// withServices runs fn against the persistent store.
func withServices(ctx context.Context, fn func(context.Context, *service.Services) error) error {
	env, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer env.close()
	if err := env.requirePostgres(); err != nil {
		return err
	}
	return fn(ctx, env.services())
}

// promptPassword reads a password twice without echo when stdin is a
// terminal, and a single line otherwise.
func promptPassword(in io.Reader, out io.Writer) (string, error) {
	file, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(out, "Password: ")
	first, err := term.ReadPassword(int(file.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	fmt.Fprint(out, "Password (again): ")
	second, err := term.ReadPassword(int(file.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
