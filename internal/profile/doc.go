// Package profile reads and writes the configuration document that carries a
// recipe and the list of eater types, in JSON or YAML. Documents are merged
// over a base profile and validated before they reach the calculator.
package profile
