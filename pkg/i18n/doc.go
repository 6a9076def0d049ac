// Package i18n provides the YAML message catalog used to translate widget
// labels. Catalog files are named <domain>.<locale>.yaml and hold nested maps
// whose paths become dotted keys:
//
//	aspect_ratio:
//	  16_9: "16:9"
//	btn_delete: Delete
//
// Locales are matched with golang.org/x/text/language, so "fr-CA" reads the
// "fr" catalog and unknown locales fall back to the catalog default.
package i18n
