// Package storage persists image field files and implements the collaborators
// the image crop adapter delegates to: Resolver locates a stored file for an
// entity field and UploadHandler writes or removes it.
//
// Entities record the stored file name per field either by implementing
// Uploadable or by tagging a string field:
//
//	type Profile struct {
//		ID    int
//		Photo string `imagefield:"photo"`
//	}
package storage
