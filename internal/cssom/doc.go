/*
Package cssom models the host document's style sheets.

# Overview

A Document holds an ordered collection of StyleSheet objects, the way
document.styleSheets does in a browser. Each StyleSheet exposes:

  - CSSRules: the rule list, or ErrSecurity when the sheet was loaded
    cross-origin without CORS
  - Rules: the legacy alias of CSSRules, same semantics
  - CSSText: a raw-text accessor, only present after a fallback repair
  - Href: the source address

# Accessor facade

Browsers let a repair monkey-patch the accessors of an existing sheet
object. Go has no such thing, so every StyleSheet carries a facade that
selects which source its accessors read from:

	VariantNative         the sheet's own accessor (may raise ErrSecurity)
	VariantReplacedSheet  rules of an in-memory sheet built from fetched text
	VariantRawText        native accessor unchanged, CSSText serves fetched text

Overrides are permanent. Once a sheet serves a replacement it never goes
back to its native accessor.

# Construction

A Constructor builds an in-memory sheet from text. Parser uses the douceur
CSS parser; Unsupported models an environment without dynamic sheet
construction and always fails with ErrConstructUnsupported.
*/
package cssom
