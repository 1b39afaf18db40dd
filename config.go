package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

//Config represents options given in the environment
type Config struct {
	APIBaseURL string //base URL for backend calls; required
	StateDir   string //directory for local client state; default: ~/.hotel-admin

	Email    string //login email
	Password string //login password
}

var config = &Config{}

func checkEmpty(val, name string) {
	if val == "" {
		log.Fatalf("HOTEL_%s must be configured\n", name)
	}
}

func init() {
	//a .env next to the binary is optional
	_ = godotenv.Load()

	err := envconfig.Process("HOTEL", config)
	if err != nil {
		log.Fatalln("Error reading configuration from environment:", err)
	}

	checkEmpty(config.APIBaseURL, "APIBASEURL")

	if config.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalln("Could not locate home directory:", err)
		}
		config.StateDir = filepath.Join(home, ".hotel-admin")
	}
}
