package main

import (
	"github.com/joho/godotenv"

	"docgen/cmd"
)

func main() {
	// .env is optional; API keys may come from the real environment.
	_ = godotenv.Load()
	cmd.Execute()
}
