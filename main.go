package main

import (
	"github.com/joho/godotenv"

	"github.com/tupiza-labs/metalscan/cmd"
)

func main() {
	// Optional .env for METALSCAN_* overrides; absence is fine.
	_ = godotenv.Load()
	cmd.Execute()
}
