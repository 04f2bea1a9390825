package image

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmorgan81/imagenproxy/internal/config"
	perrors "github.com/dmorgan81/imagenproxy/internal/errors"
	"github.com/dmorgan81/imagenproxy/internal/log"
	"github.com/dmorgan81/imagenproxy/internal/param"
	"github.com/samber/do"
	"github.com/samber/lo"
	"google.golang.org/genai"
)

const Model = "imagen-4.0-fast-generate-001"

type ImagenGenerator struct {
	Client  *http.Client
	Fetcher param.Fetcher
	// KeyName is the environment variable or parameter store path holding the API key.
	KeyName string
	BaseURL string
}

func NewImagenGenerator(i *do.Injector) (Generator, error) {
	cfg := do.MustInvoke[config.Config](i)
	return &ImagenGenerator{
		Client:  do.MustInvoke[*http.Client](i),
		Fetcher: do.MustInvoke[param.Fetcher](i),
		KeyName: lo.Ternary(cfg.APIKeyParam != "", cfg.APIKeyParam, config.APIKeyEnv),
		BaseURL: cfg.BaseURL,
	}, nil
}

func (g *ImagenGenerator) Generate(ctx context.Context, params Params) ([]Image, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("imagen").With("params", params)

	key, err := g.apiKey(ctx)
	if err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      key,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  g.Client,
		HTTPOptions: genai.HTTPOptions{BaseURL: g.BaseURL},
	})
	if err != nil {
		return nil, perrors.Wrap(perrors.KindConfiguration, "imagen.client", err)
	}

	log.Info("generating images", "model", Model, "base_url", g.BaseURL)
	resp, err := client.Models.GenerateImages(ctx, Model, params.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages: int32(params.NumberOfImages),
		AspectRatio:    params.AspectRatio,
	})
	if err != nil {
		return nil, perrors.Wrap(perrors.KindUpstream, "imagen.generate", err)
	}
	if resp == nil {
		return nil, nil
	}

	images := toImages(log, resp.GeneratedImages)
	log.Info("received images", "count", len(images))
	return images, nil
}

// toImages keeps one record per upstream entry. Entries without bytes become
// empty records and are logged with the upstream's filter reason.
func toImages(log *slog.Logger, generated []*genai.GeneratedImage) []Image {
	return lo.Map(generated, func(gi *genai.GeneratedImage, idx int) Image {
		if gi == nil || gi.Image == nil || len(gi.Image.ImageBytes) == 0 {
			reason := ""
			if gi != nil {
				reason = gi.RAIFilteredReason
			}
			log.Warn("generated image has no bytes", "index", idx, "reason", reason)
			return RawImage(nil)
		}
		return RawImage(gi.Image.ImageBytes)
	})
}

func (g *ImagenGenerator) apiKey(ctx context.Context) (string, error) {
	key, err := g.Fetcher.Fetch(ctx, g.KeyName)
	switch {
	case errors.Is(err, param.ErrNotFound):
		if g.KeyName == config.APIKeyEnv {
			return "", perrors.Configuration("imagen.credential", "Missing "+config.APIKeyEnv+" environment variable")
		}
		return "", perrors.Configuration("imagen.credential", "Missing "+config.APIKeyEnv+" parameter "+g.KeyName)
	case err != nil:
		return "", perrors.Wrap(perrors.KindConfiguration, "imagen.credential", err)
	}
	return key, nil
}
