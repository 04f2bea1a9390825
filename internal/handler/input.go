package handler

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/dmorgan81/imagenproxy/internal/image"
	"github.com/samber/lo"
)

const (
	DefaultAspectRatio    = "1:1"
	DefaultNumberOfImages = 1
	MaxNumberOfImages     = 4
)

// Count is number_of_images as sent by the caller. It accepts JSON integers,
// floats (truncated), numeric strings and booleans. Empty values count as
// absent.
type Count struct {
	Set   bool
	Value int
	Valid bool
}

func (c *Count) UnmarshalJSON(data []byte) error {
	*c = Count{}

	var v any
	if err := json.Unmarshal(data, &v); err != nil || isEmpty(v) {
		return nil
	}
	c.Set = true

	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || math.Abs(n) > math.MaxInt32 {
			return nil
		}
		c.Value, c.Valid = int(n), true
	case bool:
		c.Value, c.Valid = 1, true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err == nil {
			c.Value, c.Valid = i, true
		}
	}
	return nil
}

// isEmpty reports whether v is null, false, an empty string, an empty array
// or an empty object. Zero is not empty: it is an explicit, invalid count.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

// text returns a JSON string as is and any other non-empty value as its JSON
// text, so non-string values still reach the upstream unchanged.
func text(data json.RawMessage) string {
	var v any
	if err := json.Unmarshal(data, &v); err != nil || isEmpty(v) {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return string(bytes.TrimSpace(data))
}

type Input struct {
	Prompt         string `json:"prompt"`
	AspectRatio    string `json:"aspect_ratio"`
	NumberOfImages Count  `json:"number_of_images"`
}

// UnmarshalJSON decodes each field on its own so one badly typed field cannot
// discard the others. Only a body that is not a JSON object is an error.
func (i *Input) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*i = Input{}
	if raw, ok := fields["prompt"]; ok {
		// A non-string prompt is treated as missing.
		_ = json.Unmarshal(raw, &i.Prompt)
	}
	if raw, ok := fields["aspect_ratio"]; ok {
		i.AspectRatio = text(raw)
	}
	if raw, ok := fields["number_of_images"]; ok {
		_ = i.NumberOfImages.UnmarshalJSON(raw)
	}
	return nil
}

func (i Input) toImageParams() image.Params {
	return image.Params{
		Prompt:         strings.TrimSpace(i.Prompt),
		AspectRatio:    lo.Ternary(i.AspectRatio != "", i.AspectRatio, DefaultAspectRatio),
		NumberOfImages: lo.Ternary(i.NumberOfImages.Set, i.NumberOfImages.Value, DefaultNumberOfImages),
	}
}

type OutputImage struct {
	B64 string `json:"b64"`
}

type Output struct {
	Images []OutputImage `json:"images"`
}
