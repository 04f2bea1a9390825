package handler

import (
	"context"

	perrors "github.com/dmorgan81/imagenproxy/internal/errors"
	"github.com/dmorgan81/imagenproxy/internal/image"
	"github.com/dmorgan81/imagenproxy/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
)

type Handler struct {
	generator image.Generator
}

func NewHandler(i *do.Injector) (*Handler, error) {
	return New(do.MustInvoke[image.Generator](i)), nil
}

func New(generator image.Generator) *Handler {
	return &Handler{generator: generator}
}

func (h *Handler) Handle(ctx context.Context, input Input) (Output, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("Handler")

	params, err := validate(input)
	if err != nil {
		log.Info("rejecting generation request", "error", err)
		return Output{}, err
	}
	log = log.With("aspect_ratio", params.AspectRatio, "number_of_images", params.NumberOfImages)
	log.Info("handling generation request")

	records, err := h.generator.Generate(ctx, params)
	if err != nil {
		log.Error("generation failed", "error", err)
		return Output{}, err
	}

	images := lo.FilterMap(records, func(img image.Image, idx int) (OutputImage, bool) {
		b64, ok := image.Base64(img)
		if !ok {
			log.Warn("skipping generated image without bytes", "index", idx)
		}
		return OutputImage{B64: b64}, ok
	})
	log.Info("generation complete", "received", len(records), "returned", len(images))

	return Output{Images: lo.Ternary(images != nil, images, []OutputImage{})}, nil
}

func validate(input Input) (image.Params, error) {
	params := input.toImageParams()
	if params.Prompt == "" {
		return image.Params{}, perrors.Validation("handler.validate", "prompt is required")
	}
	if (input.NumberOfImages.Set && !input.NumberOfImages.Valid) ||
		params.NumberOfImages < 1 || params.NumberOfImages > MaxNumberOfImages {
		return image.Params{}, perrors.Validation("handler.validate", "number_of_images must be 1..4")
	}
	return params, nil
}
