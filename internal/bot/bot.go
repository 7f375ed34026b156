package bot

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/EgorLis/Teamsbot/internal/config"
	"github.com/EgorLis/Teamsbot/internal/discord"
	"github.com/EgorLis/Teamsbot/internal/rpclient"
	"github.com/EgorLis/Teamsbot/internal/teams"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Bot struct {
	log           *zap.Logger
	prefix        string
	deleteTrigger bool
	msgs          messages

	glue    *teams.GlueRegistry
	history *teams.RollHistory
	format  *teams.Formatter

	rng   *lockedRand
	locks sessionLocks
	queue sessionQueue

	gw       *discord.Gateway
	rest     *discord.REST
	rustplus []*rpclient.RustPlus
}

func New(cfg config.Bot, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = config.Default().Bot.Prefix
	}
	return &Bot{
		log:           logger,
		prefix:        prefix,
		deleteTrigger: cfg.DeleteTrigger,
		msgs:          newMessages(prefix),
		glue:          teams.NewGlueRegistry(),
		history:       teams.NewRollHistory(),
		format:        teams.NewFormatter(cfg.TeamNames),
		rng:           &lockedRand{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))},
	}
}

// SetRand подменяет источник случайности (для детерминированных тестов).
func (bot *Bot) SetRand(rng teams.Rand) {
	bot.rng.set(rng)
}

// lockedRand — генератор, общий для всех сессий.
type lockedRand struct {
	mu  sync.Mutex
	rng teams.Rand
}

func (r *lockedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}

func (r *lockedRand) set(rng teams.Rand) {
	r.mu.Lock()
	r.rng = rng
	r.mu.Unlock()
}

func (bot *Bot) SetDiscord(gw *discord.Gateway, rest *discord.REST) {
	bot.gw = gw
	bot.rest = rest
}

func (bot *Bot) AddRustPlus(rp *rpclient.RustPlus) {
	bot.rustplus = append(bot.rustplus, rp)
}

// Run запускает все подключённые фронтенды и ждёт отмены контекста или
// фатальной ошибки любого из них.
func (bot *Bot) Run(ctx context.Context) error {
	if bot.gw == nil && len(bot.rustplus) == 0 {
		return errors.New("no frontend configured")
	}

	bot.log.Info("bot started",
		zap.String("prefix", bot.prefix),
		zap.Bool("discord", bot.gw != nil),
		zap.Int("rustplus", len(bot.rustplus)))
	defer bot.log.Info("bot stopped")

	g, ctx := errgroup.WithContext(ctx)
	if bot.gw != nil {
		g.Go(func() error { return bot.runDiscord(ctx) })
	}
	for _, rp := range bot.rustplus {
		g.Go(func() error { return bot.runRustPlus(ctx, rp) })
	}
	return g.Wait()
}
