package imagecrop

// DeleteState tracks the delete checkbox lifecycle of one form instance.
type DeleteState int

const (
	// NoDeleteField: no checkbox attached (delete disabled, no entity, or no stored file).
	NoDeleteField DeleteState = iota
	// DeleteFieldPresent: checkbox attached during initial binding.
	DeleteFieldPresent
	// Removed: checkbox was checked and the upload was removed.
	Removed
	// Kept: submission finished without removing the upload.
	Kept
)

func (s DeleteState) String() string {
	switch s {
	case NoDeleteField:
		return "no-delete-field"
	case DeleteFieldPresent:
		return "delete-field-present"
	case Removed:
		return "removed"
	case Kept:
		return "kept"
	default:
		return "unknown"
	}
}
