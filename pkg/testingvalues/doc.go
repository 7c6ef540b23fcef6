// Package testingvalues checks the configuration a user tests a connector with
// against the connector's connection specification.
//
// The connection specification is a draft-07 JSON Schema. It is compiled with
// kin-openapi, which covers the keywords the builder emits (type, required,
// properties, additionalProperties, format, enum) and reports every violation
// with its location.
package testingvalues
