package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"premiumbot/core/bootstrap"
	corecmd "premiumbot/core/cmd"
	coreconfig "premiumbot/core/config"
	"premiumbot/internal/app"
)

func main() {
	// Local development convenience; absence of .env is not an error.
	_ = godotenv.Load()

	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig:        coreconfig.Load,
		Bootstrap: func(cfg *coreconfig.Config) (corecmd.TelegramApp, error) {
			res, err := bootstrap.Run(bootstrap.Options{Config: cfg})
			if err != nil {
				return nil, err
			}
			return app.New(cfg, res.DB), nil
		},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}
