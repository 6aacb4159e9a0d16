package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/useradmin/useradmin/internal/auth"
	"github.com/useradmin/useradmin/internal/service"
	"github.com/useradmin/useradmin/internal/validation"
)

// readPassword is swapped in tests to avoid touching the terminal.
var readPassword = term.ReadPassword

// isTerminal is swapped in tests.
var isTerminal = term.IsTerminal

func newCreateUserCmd(a *app) *cobra.Command {
	var (
		name          string
		email         string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user from the command line",
		Long: `Creates a user through the same validation and hashing pipeline as the
web form. The password is read from the terminal without echo, or from the
first line of stdin with --password-stdin.

Example:
  useradmin create-user --name "Ana" --email ana@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptPassword(cmd, passwordStdin)
			if err != nil {
				return reportErr(cmd, err)
			}
			if err := runCreateUser(cmd, a, service.CreateUserInput{
				Name:     name,
				Email:    email,
				Password: password,
			}); err != nil {
				return reportErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runCreateUser(cmd *cobra.Command, a *app, input service.CreateUserInput) error {
	ctx := cmd.Context()

	hasher, err := auth.NewHasher(a.cfg.PasswordHasher, a.cfg.BcryptCost)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore(ctx) }()

	svc := service.NewUserService(store, hasher, validation.New(), nil, a.logger)

	user, err := svc.CreateUser(ctx, input)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", fe.Field, fe.Message)
			}
			return errors.New("user not created")
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", user.ID, user.Email)
	return nil
}

func promptPassword(cmd *cobra.Command, fromStdin bool) (string, error) {
	if fromStdin {
		return readPasswordLine(cmd.InOrStdin())
	}

	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return "", errors.New("stdin is not a terminal; use --password-stdin")
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	first, err := readPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Repeat password: ")
	second, err := readPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

func readPasswordLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
