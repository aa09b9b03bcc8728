package cssom

import (
	"errors"
	"strings"
	"sync"

	"github.com/aymerick/douceur/css"
)

// ErrSecurity is what reading the rules of a cross-origin sheet loaded
// without CORS yields.
var ErrSecurity = errors.New("cssom: SecurityError: cannot access rules of cross-origin style sheet")

// RuleList is the ordered rule collection of a sheet.
type RuleList []*css.Rule

// Text renders the rules back to CSS, one rule per line.
func (l RuleList) Text() string {
	parts := make([]string, 0, len(l))
	for _, rule := range l {
		parts = append(parts, rule.String())
	}
	return strings.Join(parts, "\n")
}

// Strings renders each rule separately.
func (l RuleList) Strings() []string {
	out := make([]string, 0, len(l))
	for _, rule := range l {
		out = append(out, rule.String())
	}
	return out
}

// RuleAccessor is a sheet's native rule-list getter.
type RuleAccessor func() (RuleList, error)

// Accessible returns a native accessor that serves rules.
func Accessible(rules RuleList) RuleAccessor {
	return func() (RuleList, error) {
		return rules, nil
	}
}

// CrossOrigin returns a native accessor that always raises ErrSecurity.
func CrossOrigin() RuleAccessor {
	return func() (RuleList, error) {
		return nil, ErrSecurity
	}
}

// Owner identifies what attached a sheet to the document.
type Owner string

const (
	OwnerLink        Owner = "link"
	OwnerStyle       Owner = "style"
	OwnerConstructed Owner = "constructed"
)

// Variant is the accessor facade a sheet currently serves through.
type Variant int

const (
	VariantNative Variant = iota
	VariantReplacedSheet
	VariantRawText
)

func (v Variant) String() string {
	switch v {
	case VariantNative:
		return "native"
	case VariantReplacedSheet:
		return "replaced-sheet"
	case VariantRawText:
		return "raw-text-only"
	default:
		return "unknown"
	}
}

// StyleSheet is one document-attached sheet. Identity is the pointer: two
// sheets with the same href are different sheets.
type StyleSheet struct {
	href   string
	owner  Owner
	native RuleAccessor

	mu       sync.RWMutex
	replaced *StyleSheet
	rawText  *string
}

// NewStyleSheet creates a sheet with a native accessor. A nil accessor
// serves an empty rule list.
func NewStyleSheet(href string, owner Owner, native RuleAccessor) *StyleSheet {
	if native == nil {
		native = Accessible(nil)
	}
	return &StyleSheet{
		href:   href,
		owner:  owner,
		native: native,
	}
}

// Href returns the source address; empty for inline and constructed sheets.
func (s *StyleSheet) Href() string {
	return s.href
}

// Owner returns what attached the sheet.
func (s *StyleSheet) Owner() Owner {
	return s.owner
}

// CSSRules returns the rule list through the current facade.
func (s *StyleSheet) CSSRules() (RuleList, error) {
	s.mu.RLock()
	replaced := s.replaced
	s.mu.RUnlock()

	if replaced != nil {
		return replaced.CSSRules()
	}
	return s.native()
}

// Rules is the legacy alias of CSSRules.
func (s *StyleSheet) Rules() (RuleList, error) {
	return s.CSSRules()
}

// CSSText returns the raw text attached by a fallback repair.
func (s *StyleSheet) CSSText() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.rawText == nil {
		return "", false
	}
	return *s.rawText, true
}

// Variant reports which facade the accessors currently use.
func (s *StyleSheet) Variant() Variant {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.replaced != nil:
		return VariantReplacedSheet
	case s.rawText != nil:
		return VariantRawText
	default:
		return VariantNative
	}
}

// OverrideRules makes CSSRules and Rules serve replacement's rules from now
// on. Only the first replacement is kept.
func (s *StyleSheet) OverrideRules(replacement *StyleSheet) bool {
	if replacement == nil || replacement == s {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.replaced != nil {
		return false
	}
	s.replaced = replacement
	return true
}

// OverrideCSSText attaches raw text for best-effort consumers. Only the
// first text is kept.
func (s *StyleSheet) OverrideCSSText(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rawText != nil {
		return false
	}
	s.rawText = &text
	return true
}
