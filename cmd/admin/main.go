// Command admin manages operator accounts.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"sangrachna/internal/bootstrap"
	"sangrachna/internal/config"
	"sangrachna/internal/database"
	"sangrachna/internal/service"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(openAuthService).Execute(); err != nil {
		os.Exit(1)
	}
}

func openAuthService() (*service.AuthService, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	return bootstrap.OperatorAdmin(cfg, db), nil
}

func newRootCmd(open func() (*service.AuthService, error)) *cobra.Command {
	root := &cobra.Command{
		Use:          "admin",
		Short:        "Manage Sangrachna operator accounts",
		SilenceUsage: true,
	}

	operatorCmd := &cobra.Command{
		Use:   "operator",
		Short: "Create, list and disable operators",
	}

	var password string
	createCmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create an active operator",
		Long: `Create an operator account.

The password is taken from --password, or read from stdin when the flag is
omitted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordFrom(password, cmd.InOrStdin())
			if err != nil {
				return err
			}
			svc, err := open()
			if err != nil {
				return err
			}
			op, err := svc.CreateOperator(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created operator %s (%s)\n", op.Username, op.ID)
			return nil
		},
	}
	createCmd.Flags().StringVar(&password, "password", "", "initial password (min 8 characters)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List operators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := open()
			if err != nil {
				return err
			}
			ops, err := svc.ListOperators(cmd.Context())
			if err != nil {
				return err
			}
			if len(ops) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no operators")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "USERNAME\tACTIVE\tLAST LOGIN")
			for _, op := range ops {
				last := "never"
				if op.LastLoginAt != nil {
					last = op.LastLoginAt.Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "%s\t%t\t%s\n", op.Username, op.Active, last)
			}
			return w.Flush()
		},
	}

	setActive := func(active bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			svc, err := open()
			if err != nil {
				return err
			}
			if err := svc.SetOperatorActive(cmd.Context(), args[0], active); err != nil {
				return err
			}
			state := "disabled"
			if active {
				state = "enabled"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s operator %s\n", state, args[0])
			return nil
		}
	}
	disableCmd := &cobra.Command{
		Use:   "disable <username>",
		Short: "Disable an operator; their open sessions stop working",
		Args:  cobra.ExactArgs(1),
		RunE:  setActive(false),
	}
	enableCmd := &cobra.Command{
		Use:   "enable <username>",
		Short: "Re-enable a disabled operator",
		Args:  cobra.ExactArgs(1),
		RunE:  setActive(true),
	}

	var newPassword string
	resetCmd := &cobra.Command{
		Use:   "reset-password <username>",
		Short: "Replace an operator's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordFrom(newPassword, cmd.InOrStdin())
			if err != nil {
				return err
			}
			svc, err := open()
			if err != nil {
				return err
			}
			if err := svc.ResetPassword(cmd.Context(), args[0], pw); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password reset for %s\n", args[0])
			return nil
		},
	}
	resetCmd.Flags().StringVar(&newPassword, "password", "", "new password (min 8 characters)")

	operatorCmd.AddCommand(createCmd, listCmd, disableCmd, enableCmd, resetCmd)
	root.AddCommand(operatorCmd)
	return root
}

func passwordFrom(flagValue string, in io.Reader) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", errors.New("password is required (use --password or stdin)")
	}
	return pw, nil
}
