// Package imagecrop provides an image upload form field: a hidden base64
// carrier fed by a client-side cropper, a set of crop aspect ratios, and a
// delete checkbox that only appears when the bound entity already has a
// stored file.
//
// The Adapter is declared once and drives each request through two hooks,
// OnInitialBind and OnPostSubmit, delegating storage lookups and upload
// removal to injected collaborators. A small net/http handler serves the
// configured aspect ratios as JSON for the cropper runtime.
package imagecrop
