// Package logging centralizes slog construction and the structured attribute
// conventions used across clipforge: component labeling, job correlation
// fields, and progress log sampling.
package logging
