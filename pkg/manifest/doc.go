// Package manifest models the declarative connector manifest: a JSON (or YAML)
// document describing how a generic data-pull connector authenticates, builds
// requests, paginates, extracts records and slices a stream into repeated
// requests.
//
// Every polymorphic component of the manifest is keyed on a `type`
// discriminant and modelled as a sealed interface (Authenticator,
// StreamSlicer, Paginator, PaginationStrategy, SchemaLoader, Retriever). Each
// union carries an Unknown variant so decoding never fails on a kind this
// package does not know about; callers decide whether such a value is
// acceptable. Custom variants keep any extra fields they were decoded with and
// emit them again on encode.
//
// Mappings that are unordered on the wire (request parameters, headers, body,
// OAuth refresh body, spec properties) are held in insertion-ordered maps so a
// decoded document re-encodes in its original key order.
package manifest
