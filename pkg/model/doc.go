// Package model defines the typed form model consumed by renderers. Fields
// nest through Field.Nested so compound widgets (such as the image cropper
// with its hidden base64 carrier and delete checkbox) stay a single entry in
// FormModel.Fields. Metadata carries binding directives (`mapped`,
// `translationDomain`, `widget`) while UIHints surfaces renderer-facing
// directives such as `inputType`, `class`, and `widget`.
package model
