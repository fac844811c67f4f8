package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shorts-pipeline/pipeline"
	"shorts-pipeline/youtube"
)

func newCreateCommand() *cobra.Command {
	var (
		systemPromptFile string
		userPromptFile   string
		captionsFile     string
		imageSvc         string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Run the full generation pipeline for a new short",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			systemPrompt, err := os.ReadFile(systemPromptFile)
			if err != nil {
				return err
			}

			var userPrompt string
			if userPromptFile != "" {
				data, err := os.ReadFile(userPromptFile)
				if err != nil {
					return err
				}
				userPrompt = string(data)
			} else {
				animals, err := youtube.LoadAnimals(cfg.Paths.AnimalsFile)
				if err != nil {
					return fmt.Errorf("no user prompt given and animals file unreadable: %w", err)
				}
				animal, err := youtube.PickTopic(animals)
				if err != nil {
					return err
				}
				userPrompt = "Create a YouTube short narration on the following animal: " + animal
			}

			captions, err := loadCaptions(captionsFile)
			if err != nil {
				return err
			}

			result, err := pipeline.New(cfg).Run(cmd.Context(), pipeline.RunRequest{
				SystemPrompt: string(systemPrompt),
				UserPrompt:   userPrompt,
				Captions:     captions,
				ImageService: imageSvc,
			})
			if err != nil {
				return err
			}

			fmt.Println(result.VideoFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&systemPromptFile, "system-prompt", "", "file holding the script system prompt")
	cmd.Flags().StringVar(&userPromptFile, "user-prompt", "", "file holding the user prompt (default: random unused animal)")
	cmd.Flags().StringVar(&captionsFile, "captions", "", "JSON file with caption settings")
	cmd.Flags().StringVar(&imageSvc, "image-svc", "", "image service: dall_e, flux_schnell or flux_pro")
	cmd.MarkFlagRequired("system-prompt")
	return cmd
}
