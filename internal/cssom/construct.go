package cssom

import (
	"errors"
	"fmt"

	"github.com/aymerick/douceur/parser"
)

// ErrConstructUnsupported is returned where in-memory sheets cannot be built.
var ErrConstructUnsupported = errors.New("cssom: style sheet construction unsupported")

// Constructor builds an in-memory style sheet from CSS text.
type Constructor interface {
	Construct(text string) (*StyleSheet, error)
}

// Parser constructs sheets with the douceur CSS parser.
type Parser struct{}

// Construct parses text into a new accessible sheet.
func (Parser) Construct(text string) (*StyleSheet, error) {
	sheet, err := parser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("cssom: parse style sheet: %w", err)
	}
	return NewStyleSheet("", OwnerConstructed, Accessible(RuleList(sheet.Rules))), nil
}

// Unsupported is a Constructor for environments without dynamic sheet
// construction.
type Unsupported struct{}

// Construct always fails.
func (Unsupported) Construct(string) (*StyleSheet, error) {
	return nil, ErrConstructUnsupported
}

// ConstructorFunc adapts a function to Constructor.
type ConstructorFunc func(text string) (*StyleSheet, error)

// Construct calls f.
func (f ConstructorFunc) Construct(text string) (*StyleSheet, error) {
	return f(text)
}
