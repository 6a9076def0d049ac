package imagecrop

import "strings"

const (
	defaultDeleteLabel = "btn_delete"
	defaultMaxWidth    = 320
	defaultMaxHeight   = 180
)

// Options is the resolved configuration of one image field declaration.
type Options struct {
	AllowDelete       bool         `json:"allowDelete"`
	DeleteLabel       string       `json:"deleteLabel"`
	AspectRatios      AspectRatios `json:"aspectRatios"`
	MaxWidth          int          `json:"maxWidth"`
	MaxHeight         int          `json:"maxHeight"`
	DownloadURI       string       `json:"downloadUri,omitempty"`
	DownloadLink      bool         `json:"downloadLink"`
	TranslationDomain string       `json:"translationDomain"`
}

type OptionFn func(*Options)

// DefaultOptions returns the defaults without aspect ratios. Ratios need a
// translator and are added by NewOptions / Adapter.DeclareOptions.
func DefaultOptions() Options {
	return Options{
		AllowDelete:       true,
		DeleteLabel:       defaultDeleteLabel,
		MaxWidth:          defaultMaxWidth,
		MaxHeight:         defaultMaxHeight,
		DownloadLink:      true,
		TranslationDomain: BundleDomain,
	}
}

// NewOptions resolves options: defaults, then the canonical aspect ratios
// labelled through t, then fns in order.
func NewOptions(t Translator, fns ...OptionFn) Options {
	opts := DefaultOptions()
	opts.AspectRatios = CanonicalAspectRatios(t)
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	return normalizeOptions(opts)
}

func normalizeOptions(opts Options) Options {
	if strings.TrimSpace(opts.DeleteLabel) == "" {
		opts.DeleteLabel = defaultDeleteLabel
	}
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = defaultMaxWidth
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = defaultMaxHeight
	}
	if strings.TrimSpace(opts.TranslationDomain) == "" {
		opts.TranslationDomain = BundleDomain
	}
	opts.DownloadURI = strings.TrimSpace(opts.DownloadURI)
	opts.AspectRatios = opts.AspectRatios.Clone()
	return opts
}

// Clone returns a deep copy of the options.
func (o Options) Clone() Options {
	out := o
	out.AspectRatios = o.AspectRatios.Clone()
	return out
}

func WithAllowDelete(allow bool) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.AllowDelete = allow
	}
}

func WithDeleteLabel(label string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DeleteLabel = label
	}
}

// WithAspectRatios replaces the canonical ratios. A nil slice keeps the
// canonical set; an empty slice disables ratio selection.
func WithAspectRatios(ratios AspectRatios) OptionFn {
	return func(o *Options) {
		if o == nil || ratios == nil {
			return
		}
		o.AspectRatios = ratios.Clone()
	}
}

func WithMaxWidth(width int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxWidth = width
	}
}

func WithMaxHeight(height int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxHeight = height
	}
}

// WithDownloadURI pins the download link instead of resolving it from storage.
func WithDownloadURI(uri string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DownloadURI = uri
	}
}

func WithDownloadLink(enabled bool) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DownloadLink = enabled
	}
}

func WithTranslationDomain(domain string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.TranslationDomain = domain
	}
}
