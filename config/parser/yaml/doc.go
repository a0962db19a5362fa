// Package yaml provides the YAML document parser for the config package.
//
// This package uses github.com/goccy/go-yaml to turn YAML text into a generic
// document tree (maps, sequences and scalars) that the mapper then binds to a
// typed target. Syntax errors are reported as diag.DecodeError values carrying
// the line and column goccy/go-yaml attaches to the offending token.
//
// Usage:
//
//	parser := yaml.NewParser()
//	doc, err := parser.Parse(data, "api:permissions")
//
// Section Conversion:
//   - Empty section "" -> parse entire document
//   - Single key "key" -> "$.key"
//   - Nested section "api:permissions" -> "$.api.permissions"
package yaml
