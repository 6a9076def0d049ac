package imagecrop

import (
	"encoding/json"
	"fmt"
)

// Canonical aspect ratio keys, in display order.
const (
	AspectRatio16x9          = "16_9"
	AspectRatio4x3           = "4_3"
	AspectRatioSquare        = "1"
	AspectRatio2x3           = "2_3"
	AspectRatioUnconstrained = "nan"
)

// AspectRatio is a crop constraint offered by the widget. A nil Ratio means
// the crop box is unconstrained.
type AspectRatio struct {
	Ratio   *float64 `json:"ratio" yaml:"ratio"`
	Label   string   `json:"label" yaml:"label"`
	Checked bool     `json:"checked" yaml:"checked"`
}

// Unconstrained reports whether the ratio leaves the crop box free.
func (a AspectRatio) Unconstrained() bool {
	return a.Ratio == nil
}

// Value returns the ratio formatted for the cropper runtime ("NaN" when
// unconstrained).
func (a AspectRatio) Value() string {
	if a.Ratio == nil {
		return "NaN"
	}
	return fmt.Sprintf("%g", *a.Ratio)
}

// AspectRatioEntry pairs a ratio key with its definition.
type AspectRatioEntry struct {
	Key   string      `json:"key" yaml:"key"`
	Value AspectRatio `json:"value" yaml:"value"`
}

// AspectRatios is an ordered list of ratio entries. Declaration order is the
// order the cropper displays them in.
type AspectRatios []AspectRatioEntry

// Get returns the ratio registered under key.
func (r AspectRatios) Get(key string) (AspectRatio, bool) {
	for _, entry := range r {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return AspectRatio{}, false
}

// Keys returns the ratio keys in declaration order.
func (r AspectRatios) Keys() []string {
	if len(r) == 0 {
		return nil
	}
	keys := make([]string, 0, len(r))
	for _, entry := range r {
		keys = append(keys, entry.Key)
	}
	return keys
}

// Default returns the first checked entry.
func (r AspectRatios) Default() (AspectRatioEntry, bool) {
	for _, entry := range r {
		if entry.Value.Checked {
			return entry, true
		}
	}
	return AspectRatioEntry{}, false
}

// Clone returns a deep copy of the list.
func (r AspectRatios) Clone() AspectRatios {
	if r == nil {
		return nil
	}
	out := make(AspectRatios, len(r))
	for i, entry := range r {
		out[i] = entry
		if entry.Value.Ratio != nil {
			ratio := *entry.Value.Ratio
			out[i].Value.Ratio = &ratio
		}
	}
	return out
}

// MarshalJSON keeps declaration order while emitting a flat array.
func (r AspectRatios) MarshalJSON() ([]byte, error) {
	type item struct {
		Key     string   `json:"key"`
		Ratio   *float64 `json:"ratio"`
		Label   string   `json:"label"`
		Checked bool     `json:"checked"`
	}
	items := make([]item, 0, len(r))
	for _, entry := range r {
		items = append(items, item{
			Key:     entry.Key,
			Ratio:   entry.Value.Ratio,
			Label:   entry.Value.Label,
			Checked: entry.Value.Checked,
		})
	}
	return json.Marshal(items)
}

type canonicalRatio struct {
	key     string
	ratio   *float64
	checked bool
}

func ratio(v float64) *float64 { return &v }

var canonicalRatios = []canonicalRatio{
	{key: AspectRatio16x9, ratio: ratio(1.78)},
	{key: AspectRatio4x3, ratio: ratio(1.33)},
	{key: AspectRatioSquare, ratio: ratio(1)},
	{key: AspectRatio2x3, ratio: ratio(0.66)},
	{key: AspectRatioUnconstrained, checked: true},
}

// AspectRatioLabelKey returns the translation key used for a ratio label.
func AspectRatioLabelKey(key string) string {
	return "aspect_ratio." + key
}

// CanonicalAspectRatios builds the five built-in ratios, translating each
// label through t under BundleDomain.
func CanonicalAspectRatios(t Translator) AspectRatios {
	out := make(AspectRatios, 0, len(canonicalRatios))
	for _, def := range canonicalRatios {
		labelKey := AspectRatioLabelKey(def.key)
		label := labelKey
		if t != nil {
			label = t.Translate(labelKey, BundleDomain)
		}
		var value *float64
		if def.ratio != nil {
			value = ratio(*def.ratio)
		}
		out = append(out, AspectRatioEntry{
			Key: def.key,
			Value: AspectRatio{
				Ratio:   value,
				Label:   label,
				Checked: def.checked,
			},
		})
	}
	return out
}
