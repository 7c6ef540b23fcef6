// Package convert maps builder form values to connector manifests and back.
//
// The forward direction (ToManifest) is total: every form produces a
// manifest. Substream slicers are expanded by inlining the referenced parent
// stream; a missing or cyclic reference yields a SubstreamSlicer without
// parent configs, and an inline schema that is not valid JSON is dropped.
//
// The reverse direction (ToBuilderFormValues) is partial. It fails on the
// first manifest construct the form cannot express and reports it as a
// *ManifestCompatibilityError scoped to the offending stream. Substream
// slicers are rejected in this direction.
package convert
