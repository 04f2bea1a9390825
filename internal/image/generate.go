package image

import (
	"context"
	"encoding/base64"
)

type Params struct {
	Prompt         string `json:"prompt"`
	AspectRatio    string `json:"aspect_ratio"`
	NumberOfImages int    `json:"number_of_images"`
}

// Image is one generated image record as returned by the upstream. It is
// either an EncodedImage or a RawImage.
type Image interface {
	isImage()
}

// EncodedImage holds image bytes the upstream already base64 encoded.
type EncodedImage string

// RawImage holds undecorated image bytes.
type RawImage []byte

func (EncodedImage) isImage() {}
func (RawImage) isImage()     {}

// Base64 returns the standard base64 encoding of img. It reports false when
// the record carries no bytes.
func Base64(img Image) (string, bool) {
	switch v := img.(type) {
	case EncodedImage:
		return string(v), v != ""
	case RawImage:
		return base64.StdEncoding.EncodeToString(v), len(v) > 0
	default:
		return "", false
	}
}

type Generator interface {
	Generate(context.Context, Params) ([]Image, error)
}
