package components

// Canonical component names used by the vanilla renderer and default registry.
const (
	NameInput     = "input"
	NameHidden    = "hidden"
	NameCheckbox  = "checkbox"
	NameObject    = "object"
	NameImageCrop = "image-crop"
)
