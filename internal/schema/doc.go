// Package schema models the typed property surface of a declared type.
//
// A type declaration (TypeDecl) lists raw method declarations. Extraction
// walks the declaration and its supertypes most-specific-first, classifies
// methods into accessor roles (getter, boolean getter, setter), aggregates
// them per property name, and produces an immutable Schema.
//
// # Invariants
//
//   - Schemas are immutable once extracted and cached by the Registry.
//   - Property order is the first-appearance order of property names across
//     the linearized method walk; it never changes after extraction.
//   - An accessor's declaration chain is ordered most-specific-first.
//
// Properties whose getter chain is marked unmanaged are excluded from the
// schema entirely; their raw methods remain visible via AllMethods.
package schema
