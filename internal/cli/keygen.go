package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hbkwon/voucherd/internal/crypto"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a signing keypair",
	Long: `Generate a secp256k1 keypair and print the private key, the
compressed public key and the derived account id. The private key is
printed once and never stored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		keypair, err := crypto.NewKeypair()
		if err != nil {
			return fmt.Errorf("failed to generate keypair: %w", err)
		}

		fmt.Printf("private_key: %s\n", keypair.PrivateKeyHex())
		fmt.Printf("public_key:  %s\n", hex.EncodeToString(keypair.PublicKey()))
		fmt.Printf("account:     %s\n", keypair.Account().String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}
