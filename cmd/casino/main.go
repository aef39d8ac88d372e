package main

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aptcasino/casino-engine/internal/amount"
	"github.com/aptcasino/casino-engine/internal/commit"
	"github.com/aptcasino/casino-engine/internal/config"
	"github.com/aptcasino/casino-engine/internal/engine"
	"github.com/aptcasino/casino-engine/internal/events"
	"github.com/aptcasino/casino-engine/internal/games"
	"github.com/aptcasino/casino-engine/internal/kvstore"
	"github.com/aptcasino/casino-engine/internal/logger"
)

var (
	configPath string
	debug      bool
)

func main() {
	root := &cobra.Command{
		Use:           "casino",
		Short:         "Provably-fair casino settlement engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			logger.Init(&logger.Options{Level: level})
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "Path to config file")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logs")

	root.AddCommand(
		depositCmd(),
		withdrawCmd(),
		placeCmd(),
		revealCmd(),
		balanceCmd(),
		historyCmd(),
		fundsCmd(),
		verifyCmd(),
	)

	if err := root.Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

// openEngine wires the store and optional NATS emitter from config.
// The returned cleanup closes both.
func openEngine() (*engine.Engine, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	var store kvstore.KVStore
	switch cfg.Storage.Type {
	case "memory":
		store = kvstore.NewMemoryStore()
	default:
		store, err = kvstore.NewBadgerStore(cfg.Storage.Directory)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open store: %w", err)
		}
	}

	var sink engine.EventSink
	var emitter *events.Emitter
	if cfg.NATS.URL != "" {
		emitter, err = events.NewEmitter(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		sink = emitter
	}

	eng := engine.New(store, engine.Config{
		FirstBetID:   cfg.Engine.FirstBetID,
		InitialFunds: cfg.Engine.InitialFunds,
	}, sink)

	cleanup := func() {
		if emitter != nil {
			emitter.Close()
		}
		store.Close()
	}
	return eng, cleanup, nil
}

func now() uint64 {
	return uint64(time.Now().UnixMicro())
}

func parseReveal(s string) ([32]byte, error) {
	var value [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return value, fmt.Errorf("invalid reveal hex: %w", err)
	}
	if len(raw) != 32 {
		return value, fmt.Errorf("reveal must be 32 bytes, got %d", len(raw))
	}
	copy(value[:], raw)
	return value, nil
}

func depositCmd() *cobra.Command {
	var player, amt string
	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Deposit funds into a player balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := amount.ParseTokens(amt)
			if err != nil {
				return err
			}
			eng, cleanup, err := openEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			resp, err := eng.Execute(player, now(), engine.Deposit{Amount: value})
			if err != nil {
				return err
			}
			fmt.Printf("new balance: %s\n", resp.(engine.DepositSuccess).NewBalance)
			return nil
		},
	}
	cmd.Flags().StringVar(&player, "player", "", "Player identity")
	cmd.Flags().StringVar(&amt, "amount", "", "Amount in tokens")
	cmd.MarkFlagRequired("player")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func withdrawCmd() *cobra.Command {
	var player, amt string
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw funds from a player balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := amount.ParseTokens(amt)
			if err != nil {
				return err
			}
			eng, cleanup, err := openEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			resp, err := eng.Execute(player, now(), engine.Withdraw{Amount: value})
			if err != nil {
				return err
			}
			fmt.Printf("new balance: %s\n", resp.(engine.WithdrawSuccess).NewBalance)
			return nil
		},
	}
	cmd.Flags().StringVar(&player, "player", "", "Player identity")
	cmd.Flags().StringVar(&amt, "amount", "", "Amount in tokens")
	cmd.MarkFlagRequired("player")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func placeCmd() *cobra.Command {
	var player, game, amt, secretHex, commitHex, params string
	cmd := &cobra.Command{
		Use:   "place",
		Short: "Place a committed bet",
		Long: "Place a bet against a hash commitment. Pass --commit directly, or\n" +
			"--secret to have the commitment computed locally from the reveal secret.",
		RunE: func(cmd *cobra.Command, args []string) error {
			gameType, err := games.ParseType(game)
			if err != nil {
				return err
			}
			value, err := amount.ParseTokens(amt)
			if err != nil {
				return err
			}

			var digest commit.Digest
			switch {
			case commitHex != "":
				digest, err = commit.ParseDigest(commitHex)
				if err != nil {
					return err
				}
			case secretHex != "":
				secret, err := parseReveal(secretHex)
				if err != nil {
					return err
				}
				digest = commit.Commit(secret[:])
			default:
				return fmt.Errorf("either --commit or --secret is required")
			}

			eng, cleanup, err := openEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			resp, err := eng.Execute(player, now(), engine.PlaceBet{
				Game:       gameType,
				Amount:     value,
				Commitment: digest,
				Params:     params,
			})
			if err != nil {
				return err
			}
			fmt.Printf("bet id: %d\ncommitment: %s\n", resp.(engine.GamePlaced).BetID, digest)
			return nil
		},
	}
	cmd.Flags().StringVar(&player, "player", "", "Player identity")
	cmd.Flags().StringVar(&game, "game", "", "Game type: Roulette, Plinko, Mines or Wheel")
	cmd.Flags().StringVar(&amt, "amount", "", "Bet amount in tokens")
	cmd.Flags().StringVar(&secretHex, "secret", "", "32-byte reveal secret (hex); commitment is derived from it")
	cmd.Flags().StringVar(&commitHex, "commit", "", "Precomputed 32-byte commitment digest (hex)")
	cmd.Flags().StringVar(&params, "params", "", "Game-specific parameters")
	cmd.MarkFlagRequired("player")
	cmd.MarkFlagRequired("game")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func revealCmd() *cobra.Command {
	var player, secretHex string
	var betID uint64
	cmd := &cobra.Command{
		Use:   "reveal",
		Short: "Reveal the secret for a pending bet and settle it",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := parseReveal(secretHex)
			if err != nil {
				return err
			}
			eng, cleanup, err := openEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			resp, err := eng.Execute(player, now(), engine.Reveal{BetID: betID, Value: secret})
			if err != nil {
				return err
			}
			completed := resp.(engine.GameCompleted)
			fmt.Printf("outcome: %s\npayout: %s\n", completed.Outcome, completed.Payout)
			return nil
		},
	}
	cmd.Flags().StringVar(&player, "player", "", "Player identity")
	cmd.Flags().Uint64Var(&betID, "id", 0, "Bet id returned by place")
	cmd.Flags().StringVar(&secretHex, "secret", "", "32-byte reveal secret (hex)")
	cmd.MarkFlagRequired("player")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("secret")
	return cmd
}

func balanceCmd() *cobra.Command {
	var player string
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show a player's balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, cleanup, err := openEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			balance, err := eng.Balance(player)
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", balance)
			return nil
		},
	}
	cmd.Flags().StringVar(&player, "player", "", "Player identity")
	cmd.MarkFlagRequired("player")
	return cmd
}

func historyCmd() *cobra.Command {
	var betID uint64
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show settled game outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, cleanup, err := openEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			if cmd.Flags().Changed("id") {
				outcome, err := eng.HistoryEntry(betID)
				if err != nil {
					return err
				}
				printOutcome(outcome)
				return nil
			}

			history, err := eng.History()
			if err != nil {
				return err
			}
			for _, outcome := range history {
				printOutcome(outcome)
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&betID, "id", 0, "Show a single bet id")
	return cmd
}

func printOutcome(o engine.GameOutcome) {
	fmt.Printf("#%d %s bet=%s payout=%s: %s\n",
		o.BetID, o.GameType, o.BetAmount, o.PayoutAmount, o.OutcomeDetails)
}

func fundsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "funds",
		Short: "Show the aggregate fund counter",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, cleanup, err := openEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			funds, err := eng.TotalFunds()
			if err != nil {
				return err
			}
			fmt.Printf("%d\n", funds)
			return nil
		},
	}
}

// verifyCmd recomputes an outcome from a public reveal value. Anyone
// can run this against a settled bet to audit the payout.
func verifyCmd() *cobra.Command {
	var revealHex, game, params string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Recompute a game outcome from a public reveal value",
		RunE: func(cmd *cobra.Command, args []string) error {
			gameType, err := games.ParseType(game)
			if err != nil {
				return err
			}
			reveal, err := parseReveal(revealHex)
			if err != nil {
				return err
			}
			calc, err := games.ForType(gameType)
			if err != nil {
				return err
			}

			result := calc.Calculate(reveal, params)
			fmt.Printf("outcome: %s\nmultiplier: %d.%02dx\ncommitment: %s\n",
				result.Details, result.Multiplier/100, result.Multiplier%100, commit.Commit(reveal[:]))
			return nil
		},
	}
	cmd.Flags().StringVar(&revealHex, "reveal", "", "32-byte reveal value (hex)")
	cmd.Flags().StringVar(&game, "game", "", "Game type: Roulette, Plinko, Mines or Wheel")
	cmd.Flags().StringVar(&params, "params", "", "Game-specific parameters")
	cmd.MarkFlagRequired("reveal")
	cmd.MarkFlagRequired("game")
	return cmd
}
