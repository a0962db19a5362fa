// Package diag defines the error taxonomy of the config pipeline and renders
// failures into human-readable lines.
//
// Decode failures are reported as DecodeError values grouped in a DecodeErrors
// list. Each carries the stage that failed, the field path inside the document,
// an optional source location and optional "Did you mean?" suggestions.
// Constraint violations are reported separately as ValidationErrors, because a
// decoded instance may exist and still be invalid.
//
// Rendering:
//
//	Unrecognized field at: address.zip; ...
//	    Did you mean?:
//	      - zipCode
//	      - city
//
// Use Render to turn any pipeline error into output lines.
package diag
