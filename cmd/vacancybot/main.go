// Command vacancybot runs the day-labor vacancy bot.
package main

import (
	"log"

	"github.com/m3rciful/vacancybot/core/cmd"
	"github.com/m3rciful/vacancybot/internal/bot"
	"github.com/m3rciful/vacancybot/internal/config"
)

func main() {
	err := cmd.Run(cmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: bot.Bootstrap,
	})
	if err != nil {
		log.Fatal(err)
	}
}
