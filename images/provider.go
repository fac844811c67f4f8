package images

import (
	"context"
	"fmt"

	"shorts-pipeline/config"
)

// Provider generates exactly one image file per call. Switching providers
// never changes segment indexing or output naming, only the file extension.
type Provider interface {
	Generate(ctx context.Context, prompt, outFile string) error
	Ext() string
}

// ForName resolves a provider by its CLI/config name.
func ForName(name string, cfg *config.Config) (Provider, error) {
	switch name {
	case "dall_e":
		return NewDallE(cfg.Images.Size)
	case "flux_schnell":
		return NewPollinations("flux"), nil
	case "flux_pro":
		return NewPollinations("flux-pro"), nil
	default:
		return nil, fmt.Errorf("unknown image service %q (want dall_e, flux_schnell or flux_pro)", name)
	}
}
