package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shorts-pipeline/config"
	"shorts-pipeline/types"
)

var configPath string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "shorts",
		Short:         "Generate and publish narrated short-form videos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the pipeline config")
	cmd.AddCommand(
		newCreateCommand(),
		newRegenerateCommand(),
		newUploadCommand(),
		newDisclaimerCommand(),
		newTopicsCommand(),
	)
	return cmd
}

func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(configPath); err != nil {
		if os.IsNotExist(err) && configPath == "config.yaml" {
			return config.Default(), nil
		}
		return nil, err
	}
	return config.Load(configPath)
}

func loadCaptions(path string) (*types.CaptionSettings, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cs types.CaptionSettings
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, fmt.Errorf("parse caption settings %s: %w", path, err)
	}
	return &cs, nil
}
