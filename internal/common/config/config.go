package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	API struct {
		BaseURL        string `env:"LINKUP_API_URL" envDefault:"http://localhost:8000"`
		TimeoutSeconds int    `env:"LINKUP_API_TIMEOUT" envDefault:"30"`
	}

	Stub struct {
		Port   int    `env:"PORT" envDefault:"8000"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Telegram struct {
		BotToken string `env:"BOT_TOKEN"`
		InitData string `env:"TELEGRAM_INIT_DATA"`
		Debug    bool   `env:"TELEGRAM_DEBUG" envDefault:"false"`
	}
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		// .env file is optional; in production the variables are set directly.
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}
