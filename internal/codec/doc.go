// Package codec serializes documents, states, and operation logs as JSON.
//
// Documents round-trip through the same JSON shape the coercion layer
// accepts, so a decoded tree preserves keys, spans, marks and properties.
// Operations use one record per line (or a JSON array), tagged by their
// wire name:
//
//	{"type":"insert_text","path":[0,0],"offset":5,"text":", world"}
//
// Decoding an unknown operation tag is fatal, mirroring the applier's
// closed-set guarantee for persisted logs.
package codec
