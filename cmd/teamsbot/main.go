package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/EgorLis/Teamsbot/internal/bot"
	"github.com/EgorLis/Teamsbot/internal/config"
	"github.com/EgorLis/Teamsbot/internal/discord"
	"github.com/EgorLis/Teamsbot/internal/rpclient"
	"github.com/EgorLis/Teamsbot/internal/teams"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version подставляется при сборке: -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "teamsbot",
		Short:        "Random team roller for Discord and Rust+ team chat",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(), newRollCmd(), newVersionCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		cfgPath string
		debug   bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to every configured frontend and serve commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			logger, err := newLogger(debug)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b := newBot(cfg, logger)
			if err := b.Run(ctx); err != nil {
				logger.Error("bot stopped with error", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", config.DefaultPath, "path to the YAML config")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	return cmd
}

func newLogger(debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// newBot собирает бота и все фронтенды из конфига.
func newBot(cfg *config.Config, logger *zap.Logger) *bot.Bot {
	b := bot.New(cfg.Bot, logger)
	if cfg.Discord.Enabled() {
		b.SetDiscord(
			discord.NewGateway(cfg.Discord.GatewayURL, cfg.Discord.Token, discord.DefaultIntents,
				discord.ListeningPresence(cfg.Discord.Status)),
			discord.NewREST(cfg.Discord.Token, cfg.Discord.APIURL, cfg.Discord.RequestsPerSecond),
		)
	}
	for _, rc := range cfg.RustPlus {
		b.AddRustPlus(newRustPlus(rc))
	}
	return b
}

func newRustPlus(rc config.RustPlus) *rpclient.RustPlus {
	return rpclient.New(rc.Server, rc.Port, rc.PlayerID, rc.PlayerToken, rc.UseProxy)
}

func newRollCmd() *cobra.Command {
	var (
		glue  []string
		names []string
		seed  uint64
	)
	cmd := &cobra.Command{
		Use:   "roll <team size> <players...>",
		Short: "Roll teams once and print them",
		Example: `  teamsbot roll 2 Speedy Rollie Bob Alice
  teamsbot roll --glue Speedy,Rollie 2 Speedy Rollie Bob Alice`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("team size %q is not a number", args[0])
			}

			var rng teams.Rand
			if seed != 0 {
				rng = rand.New(rand.NewPCG(seed, seed))
			} else {
				rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
			}

			out, err := rollOnce(rng, size, playerIDs(args[1:]), glue, names)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringArrayVar(&glue, "glue", nil, "comma separated players that must share a team (repeatable)")
	cmd.Flags().StringSliceVar(&names, "names", nil, "team names to cycle through")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed, 0 picks one")
	return cmd
}

const cliSession teams.SessionKey = "cli"

func rollOnce(rng teams.Rand, size int, players []teams.PlayerID, glue, names []string) (string, error) {
	registry := teams.NewGlueRegistry()
	for _, g := range glue {
		if _, err := registry.Glue(cliSession, playerIDs(strings.Split(g, ","))); err != nil {
			return "", fmt.Errorf("glue %q: %w", g, err)
		}
	}
	assignment, err := teams.Partition(rng, players, size, registry.Current(cliSession))
	if err != nil {
		return "", err
	}
	return teams.NewFormatter(names).Teams(assignment, teams.PlainMention), nil
}

func playerIDs(names []string) []teams.PlayerID {
	var out []teams.PlayerID
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, teams.PlayerID(n))
		}
	}
	return out
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "teamsbot", version)
		},
	}
}
