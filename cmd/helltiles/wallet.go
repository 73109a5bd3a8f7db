package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/helltiles/internal/storage"
)

var flagResetWallet bool

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Show or reset the coin wallet",
	Long: `Coins picked up during runs are kept in a wallet that carries over
between runs.

Examples:
  helltiles wallet
  helltiles wallet --reset`,
	Args: cobra.NoArgs,
	RunE: runWallet,
}

func init() {
	walletCmd.Flags().BoolVar(&flagResetWallet, "reset", false, "Empty the wallet")
}

func runWallet(_ *cobra.Command, _ []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("open runs database: %w", err)
	}
	defer store.Close()

	if flagResetWallet {
		if err := store.ResetWallet(); err != nil {
			return err
		}
		fmt.Println("Wallet emptied.")
		return nil
	}

	coins, err := store.Coins()
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Wallet: %d coins\n", coins)
	return nil
}
