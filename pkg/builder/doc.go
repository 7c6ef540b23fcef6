// Package builder defines the builder form model: the simplified, UI-editable
// representation of the subset of connector manifests a form can express.
//
// The form model differs from the manifest in three places. Request
// parameters, headers and body (and the OAuth refresh body) are ordered
// key/value pair lists instead of mappings. Substream slicers reference their
// parent by stream id instead of embedding it. Configuration inputs implied by
// the authenticator ("inferred inputs") are derived on demand rather than
// stored, with only per-key definition overrides kept in the form.
package builder
