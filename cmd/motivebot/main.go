package main

import (
	"log"

	"github.com/m3rciful/motivebot/core/app"
	"github.com/m3rciful/motivebot/core/cmd"
	coreconfig "github.com/m3rciful/motivebot/core/config"
)

func main() {
	err := cmd.Run(cmd.Options{
		LoadConfig: coreconfig.Load,
		Bootstrap: func(cfg *coreconfig.Config) (cmd.TelegramApp, error) {
			return app.New(cfg)
		},
	})
	if err != nil {
		log.Fatalf("motivebot: %v", err)
	}
}
