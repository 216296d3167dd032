package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv pulls a local .env into the process environment when present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("config: load .env: %v", err)
		}
		return
	}
	log.Println("config: loaded .env")
}
