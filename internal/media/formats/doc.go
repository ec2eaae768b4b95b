// Package formats owns the static media tables: file-extension kinds, codec
// maps, container compatibility overrides, and quality tier parameters.
//
// Everything here is immutable lookup data. The conversion runner and the
// organizer consult these tables instead of branching on format strings.
package formats
