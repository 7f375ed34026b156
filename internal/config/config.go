package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultPath — где бот ищет конфиг, если путь не задан флагом.
const DefaultPath = "conf/teamsbot.yaml"

type Config struct {
	Bot      Bot        `yaml:"bot"`
	Discord  Discord    `yaml:"discord"`
	RustPlus []RustPlus `yaml:"rustplus"`
}

type Bot struct {
	Prefix        string   `yaml:"prefix"         env:"TEAMSBOT_PREFIX"`
	TeamNames     []string `yaml:"team_names"     env:"TEAMSBOT_TEAM_NAMES"     envSeparator:","`
	DeleteTrigger bool     `yaml:"delete_trigger" env:"TEAMSBOT_DELETE_TRIGGER"`
}

type Discord struct {
	Token             string  `yaml:"token"               env:"RANDOM_TEAM_BOT_TOKEN"`
	GatewayURL        string  `yaml:"gateway_url"         env:"TEAMSBOT_DISCORD_GATEWAY_URL"`
	APIURL            string  `yaml:"api_url"             env:"TEAMSBOT_DISCORD_API_URL"`
	Status            string  `yaml:"status"              env:"TEAMSBOT_DISCORD_STATUS"`
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"TEAMSBOT_DISCORD_RPS"`
}

// RustPlus — сервер Rust+, тим-чат которого слушает бот.
type RustPlus struct {
	Server      string `yaml:"server"`
	Port        int    `yaml:"port"`
	PlayerID    uint64 `yaml:"player_id"`
	PlayerToken int32  `yaml:"player_token"`
	UseProxy    bool   `yaml:"use_proxy"`
}

// Enabled — токен задан, Discord-фронтенд нужно запускать.
func (d Discord) Enabled() bool {
	return d.Token != ""
}

func Default() *Config {
	return &Config{
		Bot: Bot{
			Prefix:        "!teams",
			DeleteTrigger: true,
		},
		Discord: Discord{
			Status: "!teams commands",
		},
	}
}

// Load читает YAML (отсутствующий файл — не ошибка) и поверх применяет
// переменные окружения.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(&cfg.Bot); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := env.Parse(&cfg.Discord); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Bot.Prefix = strings.TrimSpace(cfg.Bot.Prefix)
	names := cfg.Bot.TeamNames[:0]
	for _, n := range cfg.Bot.TeamNames {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	cfg.Bot.TeamNames = names

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Bot.Prefix == "" || strings.ContainsAny(c.Bot.Prefix, " \t\n") {
		return fmt.Errorf("bot.prefix must be a single word, got %q", c.Bot.Prefix)
	}
	if c.Discord.RequestsPerSecond < 0 {
		return fmt.Errorf("discord.requests_per_second must not be negative")
	}
	for i, rp := range c.RustPlus {
		if rp.Server == "" || rp.Port <= 0 {
			return fmt.Errorf("rustplus[%d]: server and port are required", i)
		}
	}
	if !c.Discord.Enabled() && len(c.RustPlus) == 0 {
		return errors.New("no frontend configured: set RANDOM_TEAM_BOT_TOKEN or add rustplus servers")
	}
	return nil
}
