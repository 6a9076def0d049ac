package imagecrop

import "testing"

func TestNewOptions_Defaults(t *testing.T) {
	opts := NewOptions(nil)

	if !opts.AllowDelete {
		t.Fatalf("expected allowDelete default true")
	}
	if opts.DeleteLabel != "btn_delete" {
		t.Fatalf("unexpected delete label: %q", opts.DeleteLabel)
	}
	if opts.MaxWidth != 320 || opts.MaxHeight != 180 {
		t.Fatalf("unexpected dimensions: %dx%d", opts.MaxWidth, opts.MaxHeight)
	}
	if !opts.DownloadLink {
		t.Fatalf("expected downloadLink default true")
	}
	if opts.DownloadURI != "" {
		t.Fatalf("expected empty download uri, got %q", opts.DownloadURI)
	}
	if opts.TranslationDomain != "PrestaImageBundle" {
		t.Fatalf("unexpected translation domain: %q", opts.TranslationDomain)
	}
	if len(opts.AspectRatios) != 5 {
		t.Fatalf("expected 5 canonical ratios, got %d", len(opts.AspectRatios))
	}
}

func TestNewOptions_Overrides(t *testing.T) {
	square := 1.0
	opts := NewOptions(nil,
		WithAllowDelete(false),
		WithDeleteLabel("remove"),
		WithMaxWidth(640),
		WithMaxHeight(480),
		WithDownloadLink(false),
		WithDownloadURI(" /files/photo.png "),
		WithTranslationDomain("admin"),
		WithAspectRatios(AspectRatios{{Key: "1", Value: AspectRatio{Ratio: &square, Label: "Square", Checked: true}}}),
		nil,
	)

	if opts.AllowDelete || opts.DownloadLink {
		t.Fatalf("expected booleans overridden: %#v", opts)
	}
	if opts.DeleteLabel != "remove" || opts.TranslationDomain != "admin" {
		t.Fatalf("unexpected strings: %#v", opts)
	}
	if opts.MaxWidth != 640 || opts.MaxHeight != 480 {
		t.Fatalf("unexpected dimensions: %dx%d", opts.MaxWidth, opts.MaxHeight)
	}
	if opts.DownloadURI != "/files/photo.png" {
		t.Fatalf("expected trimmed download uri, got %q", opts.DownloadURI)
	}
	if len(opts.AspectRatios) != 1 || opts.AspectRatios[0].Value.Label != "Square" {
		t.Fatalf("unexpected ratios: %#v", opts.AspectRatios)
	}

	square = 2
	if *opts.AspectRatios[0].Value.Ratio != 1 {
		t.Fatalf("options share ratio storage with caller")
	}
}

func TestNewOptions_ClampsInvalidValues(t *testing.T) {
	opts := NewOptions(nil,
		WithDeleteLabel("  "),
		WithMaxWidth(-1),
		WithMaxHeight(0),
		WithTranslationDomain(""),
		WithAspectRatios(nil),
	)

	if opts.DeleteLabel != "btn_delete" {
		t.Fatalf("expected default delete label, got %q", opts.DeleteLabel)
	}
	if opts.MaxWidth != 320 || opts.MaxHeight != 180 {
		t.Fatalf("expected default dimensions, got %dx%d", opts.MaxWidth, opts.MaxHeight)
	}
	if opts.TranslationDomain != BundleDomain {
		t.Fatalf("expected default domain, got %q", opts.TranslationDomain)
	}
	if len(opts.AspectRatios) != 5 {
		t.Fatalf("expected nil ratios to keep canonical set, got %d", len(opts.AspectRatios))
	}
}

func TestNewOptions_EmptyRatiosDisableSelection(t *testing.T) {
	opts := NewOptions(nil, WithAspectRatios(AspectRatios{}))
	if opts.AspectRatios == nil || len(opts.AspectRatios) != 0 {
		t.Fatalf("expected empty ratio list, got %#v", opts.AspectRatios)
	}
}
