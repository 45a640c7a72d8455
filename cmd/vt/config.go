package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/abelbrown/tourist/internal/config"
)

func runConfig() {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	initFile := fs.Bool("init", false, "Write a default config file if none exists")
	fs.Parse(os.Args[1:])

	path := config.ConfigPath()
	if *initFile {
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("%s already exists\n", path)
			return
		}
		// Defaults only: a key from the environment stays out of the file
		if err := config.DefaultConfig().Save(); err != nil {
			log.Fatalf("failed to write config: %v", err)
		}
		fmt.Printf("Wrote %s\n", path)
		return
	}

	cfg := loadConfig(false)
	if cfg.Flickr.APIKey != "" {
		cfg.Flickr.APIKey = "(set)"
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode config: %v", err)
	}
	fmt.Printf("# %s\n%s\n", path, data)
}
