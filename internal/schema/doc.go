// Package schema provides the declarative validation rule set and the
// normalizer that repairs a document subtree against it.
//
// A schema is a list of rules, each matching nodes by kind and type and
// constraining what children they may hold. Rules are typically loaded
// from YAML:
//
//	rules:
//	  - match: { kind: block, type: paragraph }
//	    children:
//	      - kinds: [text, inline]
//	    merge_adjacent_texts: true
//	  - match: { kind: document }
//	    children:
//	      - kinds: [block]
//	    min_children: 1
//
// The transform layer invokes the normalizer after every semantic edit
// (unless suppressed) on the smallest sufficient ancestor scope. Repairs
// are themselves expressed as operations, so selections stay consistent
// while the normalizer removes disallowed children or merges siblings.
package schema
