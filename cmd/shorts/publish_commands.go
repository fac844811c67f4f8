package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shorts-pipeline/types"
	"shorts-pipeline/youtube"
)

func newUploadCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a finished video to YouTube",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			uploadCfg, err := loadUploadConfig(configFile)
			if err != nil {
				return err
			}

			auth := youtube.NewAuthenticator(cfg.Paths.ClientSecrets, cfg.Paths.TokenFile)
			pub, err := auth.Publisher(cmd.Context())
			if err != nil {
				return err
			}

			if !pub.Upload(cmd.Context(), uploadCfg) {
				return fmt.Errorf("upload failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configFile, "config-file", "", "path to upload_config.json")
	cmd.MarkFlagRequired("config-file")
	return cmd
}

func newDisclaimerCommand() *cobra.Command {
	var (
		text     string
		pageSize int64
	)

	cmd := &cobra.Command{
		Use:   "disclaimer",
		Short: "Append the disclaimer to every uploaded video's description",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if text == "" {
				text = cfg.Upload.Disclaimer
			}
			if pageSize == 0 {
				pageSize = cfg.Upload.PageSize
			}

			auth := youtube.NewAuthenticator(cfg.Paths.ClientSecrets, cfg.Paths.TokenFile)
			pub, err := auth.Publisher(cmd.Context())
			if err != nil {
				return err
			}

			updated, scanned, err := pub.AppendDisclaimer(cmd.Context(), text, pageSize)
			if err != nil {
				return err
			}
			fmt.Printf("Updated %d of %d video(s)\n", updated, scanned)
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "disclaimer text (default: upload.disclaimer from config)")
	cmd.Flags().Int64Var(&pageSize, "page-size", 0, "listing page size (max 50)")
	return cmd
}

func newTopicsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List animals not yet covered by an uploaded video",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			animals, err := youtube.LoadAnimals(cfg.Paths.AnimalsFile)
			if err != nil {
				return err
			}

			auth := youtube.NewAuthenticator(cfg.Paths.ClientSecrets, cfg.Paths.TokenFile)
			pub, err := auth.Publisher(cmd.Context())
			if err != nil {
				return err
			}
			titles, err := pub.UploadedTitles(cmd.Context())
			if err != nil {
				return err
			}

			for _, animal := range youtube.UnusedAnimals(animals, titles) {
				fmt.Println(animal)
			}
			return nil
		},
	}
}

func loadUploadConfig(path string) (*types.UploadConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg types.UploadConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}
