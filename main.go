package main

import (
	"os"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
