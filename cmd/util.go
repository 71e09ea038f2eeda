package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"hashvote/config"
)

func getAppDir() (string, string) {
	app := strings.TrimLeft(os.Args[0], "./")
	dir, err := filepath.Abs(filepath.Dir(os.Args[0]))
	if err != nil {
		log.Panic(err)
	}
	return app, dir
}

func getConfigPath(command *cobra.Command) string {
	configPath, _ := command.Flags().GetString("config")

	if configPath == "" {
		configPath = "config.json"
	}

	return configPath
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configsPath := getConfigPath(cmd)
	if configsPath == "" {
		return nil, nil
	}

	file, err := os.Open(configsPath)
	if err != nil {
		return nil, fmt.Errorf("Unable to open configs file at %q: %w", configsPath, err)
	}
	defer file.Close()

	var customDefaults *config.Config
	err = json.NewDecoder(file).Decode(&customDefaults)
	if err != nil {
		return nil, fmt.Errorf("Unable to decode configs configuration: %w", err)
	}

	return customDefaults, nil
}

func initLogger(cfg *config.Config) {
	// Log as text instead of the default ASCII formatter.
	log.SetFormatter(&log.TextFormatter{})

	// Output to stdout instead of the default stderr
	log.SetOutput(os.Stdout)

	if cfg == nil || cfg.Logger == nil {
		log.SetLevel(log.InfoLevel)
		return
	}

	if cfg.Logger.Mode != nil && *cfg.Logger.Mode == "file" {
		// You could set this to any `io.Writer` such as a file
		file, err := os.OpenFile(*cfg.Logger.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			log.SetOutput(file)
		} else {
			log.Info("Failed to log to file, using default stdout")
		}
	}

	level := log.InfoLevel
	if cfg.Logger.Level != nil {
		parsed, err := log.ParseLevel(*cfg.Logger.Level)
		if err != nil {
			log.Warnf("Unknown log level %q, using info", *cfg.Logger.Level)
		} else {
			level = parsed
		}
	}
	log.SetLevel(level)
}
