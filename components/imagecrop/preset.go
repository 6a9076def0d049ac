package imagecrop

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

// Preset is a declarative option override loaded from YAML (or JSON, which
// YAML accepts). Unset keys keep their defaults:
//
//	allow_delete: false
//	max_width: 640
//	aspect_ratios:
//	  - key: "16_9"
//	    ratio: 1.78
//	  - key: free
//	    checked: true
type Preset struct {
	AllowDelete       *bool          `yaml:"allow_delete"`
	DeleteLabel       *string        `yaml:"delete_label"`
	MaxWidth          *int           `yaml:"max_width"`
	MaxHeight         *int           `yaml:"max_height"`
	DownloadURI       *string        `yaml:"download_uri"`
	DownloadLink      *bool          `yaml:"download_link"`
	TranslationDomain *string        `yaml:"translation_domain"`
	AspectRatios      []presetRatio  `yaml:"aspect_ratios"`
	Extra             map[string]any `yaml:",inline"`
}

type presetRatio struct {
	Key     string   `yaml:"key"`
	Ratio   *float64 `yaml:"ratio"`
	Label   string   `yaml:"label"`
	Checked bool     `yaml:"checked"`
}

// ParsePreset decodes a preset document.
func ParsePreset(data []byte) (Preset, error) {
	var preset Preset
	if len(bytes.TrimSpace(data)) == 0 {
		return preset, errors.New("imagecrop: preset document is empty")
	}
	if err := yaml.Unmarshal(data, &preset); err != nil {
		return Preset{}, fmt.Errorf("imagecrop: parse preset: %w", err)
	}
	if len(preset.Extra) > 0 {
		keys := make([]string, 0, len(preset.Extra))
		for key := range preset.Extra {
			keys = append(keys, key)
		}
		return Preset{}, fmt.Errorf("imagecrop: unknown preset keys %v", keys)
	}
	seen := make(map[string]struct{}, len(preset.AspectRatios))
	for i, entry := range preset.AspectRatios {
		key := strings.TrimSpace(entry.Key)
		if key == "" {
			return Preset{}, fmt.Errorf("imagecrop: aspect ratio %d has no key", i)
		}
		if _, dup := seen[key]; dup {
			return Preset{}, fmt.Errorf("imagecrop: duplicate aspect ratio %q", key)
		}
		seen[key] = struct{}{}
		preset.AspectRatios[i].Key = key
	}
	return preset, nil
}

// LoadPresetFS reads and parses a preset from fsys.
func LoadPresetFS(fsys fs.FS, path string) (Preset, error) {
	if fsys == nil {
		return Preset{}, errors.New("imagecrop: preset filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return Preset{}, errors.New("imagecrop: preset path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Preset{}, fmt.Errorf("imagecrop: read preset %s: %w", path, err)
	}
	return ParsePreset(data)
}

// OptionFns converts the preset into option overrides. Custom ratios without
// a label are labelled through t using the aspect_ratio.<key> convention.
func (p Preset) OptionFns(t Translator) []OptionFn {
	var fns []OptionFn
	if p.AllowDelete != nil {
		fns = append(fns, WithAllowDelete(*p.AllowDelete))
	}
	if p.DeleteLabel != nil {
		fns = append(fns, WithDeleteLabel(*p.DeleteLabel))
	}
	if p.MaxWidth != nil {
		fns = append(fns, WithMaxWidth(*p.MaxWidth))
	}
	if p.MaxHeight != nil {
		fns = append(fns, WithMaxHeight(*p.MaxHeight))
	}
	if p.DownloadURI != nil {
		fns = append(fns, WithDownloadURI(*p.DownloadURI))
	}
	if p.DownloadLink != nil {
		fns = append(fns, WithDownloadLink(*p.DownloadLink))
	}
	if p.TranslationDomain != nil {
		fns = append(fns, WithTranslationDomain(*p.TranslationDomain))
	}
	if p.AspectRatios != nil {
		ratios := make(AspectRatios, 0, len(p.AspectRatios))
		for _, entry := range p.AspectRatios {
			label := strings.TrimSpace(entry.Label)
			if label == "" {
				label = AspectRatioLabelKey(entry.Key)
				if t != nil {
					label = t.Translate(label, BundleDomain)
				}
			}
			ratios = append(ratios, AspectRatioEntry{
				Key: entry.Key,
				Value: AspectRatio{
					Ratio:   entry.Ratio,
					Label:   label,
					Checked: entry.Checked,
				},
			})
		}
		fns = append(fns, WithAspectRatios(ratios))
	}
	return fns
}
