package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"dice-settle/internal/casino"
	"dice-settle/internal/pubkey"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dicectl",
		Short: "Inspect and reproduce dice settlements",
	}
	root.AddCommand(rollCmd(), payoutCmd(), messageCmd(), signCmd())
	return root
}

func rollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roll <signature-hex>",
		Short: "Recompute the outcome a house signature produces",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sig, err := hex.DecodeString(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), casino.RollFromSignature(sig))
			return nil
		},
	}
}

func payoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "payout <amount> <roll>",
		Short: "Compute the payout of a winning bet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			roll, err := strconv.ParseUint(args[1], 10, 8)
			if err != nil {
				return err
			}
			p, err := casino.Payout(amount, uint8(roll))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d (x%s)\n", p, casino.Multiplier(uint8(roll)))
			return nil
		},
	}
}

func messageCmd() *cobra.Command {
	var (
		player string
		bet    casino.Bet
	)

	cmd := &cobra.Command{
		Use:   "message",
		Short: "Print the canonical message of a bet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := pubkey.Parse(player)
			if err != nil {
				return err
			}
			bet.Player = k
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(bet.Bytes()))
			return nil
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "player public key (base58)")
	cmd.Flags().Uint64Var(&bet.Seed, "seed", 0, "bet seed")
	cmd.Flags().Uint64Var(&bet.Slot, "slot", 0, "placement slot")
	cmd.Flags().Uint64Var(&bet.Amount, "amount", 0, "wager amount")
	cmd.Flags().Uint8Var(&bet.Roll, "roll", 50, "win threshold")
	cmd.Flags().Uint8Var(&bet.Bump, "bump", 255, "bet address bump")
	return cmd
}

func signCmd() *cobra.Command {
	var seedHex string

	cmd := &cobra.Command{
		Use:   "sign <message-hex>",
		Short: "Sign a bet message and print the settle request body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := hex.DecodeString(seedHex)
			if err != nil {
				return err
			}
			house, err := casino.NewHouseSigner(seed)
			if err != nil {
				return err
			}
			msg, err := hex.DecodeString(args[0])
			if err != nil {
				return err
			}
			bet, err := casino.ParseBet(msg)
			if err != nil {
				return err
			}

			sig, rec, err := house.Reveal(bet)
			if err != nil {
				return err
			}

			body := map[string]interface{}{
				"signature": hex.EncodeToString(sig),
				"instructions": []map[string]string{{
					"program": rec.Program.String(),
					"data":    hex.EncodeToString(rec.Data),
				}},
				"outcome": casino.RollFromSignature(sig),
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(body)
		},
	}

	cmd.Flags().StringVar(&seedHex, "house-seed", "", "32-byte ed25519 seed of the house key (hex)")
	cmd.MarkFlagRequired("house-seed")
	return cmd
}
