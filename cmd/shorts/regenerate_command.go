package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shorts-pipeline/pipeline"
)

func newRegenerateCommand() *cobra.Command {
	var (
		basedir          string
		stagesFlag       string
		captionsFile     string
		imageSvc         string
		systemPromptFile string
		userPromptFile   string
	)

	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Re-run selected stages against an existing run directory",
		Long: `Re-run a subset of pipeline stages, reusing every persisted artifact the
redone stages depend on. Stages: script, narration, images, video, normalize.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			stages, err := pipeline.ParseStages(stagesFlag)
			if err != nil {
				return err
			}

			req := pipeline.RunRequest{ImageService: imageSvc}
			if systemPromptFile != "" {
				data, err := os.ReadFile(systemPromptFile)
				if err != nil {
					return err
				}
				req.SystemPrompt = string(data)
			}
			if userPromptFile != "" {
				data, err := os.ReadFile(userPromptFile)
				if err != nil {
					return err
				}
				req.UserPrompt = string(data)
			}
			if req.Captions, err = loadCaptions(captionsFile); err != nil {
				return err
			}

			result, err := pipeline.New(cfg).Regenerate(cmd.Context(), basedir, stages, req)
			if err != nil {
				return err
			}

			fmt.Println(result.VideoFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&basedir, "basedir", "", "existing run directory")
	cmd.Flags().StringVar(&stagesFlag, "stages", "", "comma-separated stages to redo")
	cmd.Flags().StringVar(&captionsFile, "captions", "", "JSON file with caption settings")
	cmd.Flags().StringVar(&imageSvc, "image-svc", "", "image service: dall_e, flux_schnell or flux_pro")
	cmd.Flags().StringVar(&systemPromptFile, "system-prompt", "", "system prompt file (needed when redoing the script stage)")
	cmd.Flags().StringVar(&userPromptFile, "user-prompt", "", "user prompt file")
	cmd.MarkFlagRequired("basedir")
	cmd.MarkFlagRequired("stages")
	return cmd
}
