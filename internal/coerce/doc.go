// Package coerce normalizes loosely-typed caller input into the canonical
// value types the operation machinery expects. Marks may arrive as bare
// type strings, maps, or Mark values; nodes as templates or JSON-shaped
// maps; properties as maps or shorthand strings. Text is normalized to
// Unicode NFC so equal-looking input produces equal stored values.
//
// The applier never receives un-normalized values: the transform layer and
// the codec run everything through this package before an operation record
// is constructed.
package coerce
