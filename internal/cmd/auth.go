package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ceph/quay-pruner/internal/credentials"
	"github.com/ceph/quay-pruner/internal/prompt"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Store the Quay token in the system keyring",
	Long: `Prompt for a Quay OAuth token and store it in the system keyring.

The stored token is used when neither $QUAYTOKEN nor the token file is set.
When stdin is not a terminal the token is read from its first line.`,
	Example: `  # Interactive
  quay-pruner auth

  # From a file
  quay-pruner auth < token.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runAuth(prompt.New(os.Stdin), credentials.OpenSystemKeyring, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(p prompt.Prompter, open credentials.KeyringOpener, out io.Writer) error {
	token, err := p.Secret("Quay token:")
	if err != nil {
		if errors.Is(err, prompt.ErrCanceled) {
			return nil
		}
		return err
	}

	ring, err := open()
	if err != nil {
		return fmt.Errorf("open keyring: %w", err)
	}

	if err := credentials.Store(ring, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}

	_, err = fmt.Fprintln(out, "Quay token stored in keyring.")
	return err
}
