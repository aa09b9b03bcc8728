package harvest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/sheetguard/internal/cssom"
	"github.com/GriffinCanCode/sheetguard/internal/logging"
	"github.com/GriffinCanCode/sheetguard/internal/shared/id"
	"github.com/GriffinCanCode/sheetguard/internal/stylesheet"
)

// Sheet is one serialized style sheet.
type Sheet struct {
	Href         string   `json:"href,omitempty"`
	Owner        string   `json:"owner"`
	Variant      string   `json:"variant"`
	Rules        []string `json:"rules,omitempty"`
	CSSText      string   `json:"css_text,omitempty"`
	Inaccessible bool     `json:"inaccessible,omitempty"`
}

// Payload is what one flush produces.
type Payload struct {
	ID                         string    `json:"id"`
	SessionID                  string    `json:"session_id"`
	URL                        string    `json:"url,omitempty"`
	Timestamp                  time.Time `json:"timestamp"`
	Sheets                     []Sheet   `json:"sheets"`
	InlinedAllStylesheets      bool      `json:"inlined_all_stylesheets"`
	InvalidStylesheetsDetected bool      `json:"invalid_stylesheets_detected"`
}

// Harvester drives one evaluator on behalf of a recording session.
type Harvester struct {
	doc       stylesheet.Document
	eval      *stylesheet.Evaluator
	sessionID uuid.UUID
	url       string
	logger    *logging.Logger
}

// Option configures a Harvester.
type Option func(*Harvester)

// WithSessionID pins the session instead of generating one.
func WithSessionID(sessionID uuid.UUID) Option {
	return func(h *Harvester) {
		h.sessionID = sessionID
	}
}

// WithURL records the page URL in every payload.
func WithURL(url string) Option {
	return func(h *Harvester) {
		h.url = url
	}
}

// New creates a harvester for doc, which must be the document eval scans.
func New(doc stylesheet.Document, eval *stylesheet.Evaluator, logger *logging.Logger, opts ...Option) *Harvester {
	h := &Harvester{
		doc:       doc,
		eval:      eval,
		sessionID: uuid.New(),
		logger:    logger.Named("harvest"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SessionID returns the recording session.
func (h *Harvester) SessionID() uuid.UUID {
	return h.sessionID
}

// Observe reacts to a DOM mutation.
func (h *Harvester) Observe() int {
	return h.eval.Evaluate()
}

// Flush evaluates, waits for the outstanding repairs and snapshots every
// sheet. The payload is complete only when no repair failed.
func (h *Harvester) Flush(ctx context.Context) (*Payload, error) {
	h.eval.Evaluate()

	failed, err := h.eval.Fix(ctx)
	if err != nil {
		return nil, fmt.Errorf("wait for repairs: %w", err)
	}

	p := &Payload{
		ID:                         id.NewPayloadID().String(),
		SessionID:                  h.sessionID.String(),
		URL:                        h.url,
		Timestamp:                  time.Now().UTC(),
		InlinedAllStylesheets:      !failed,
		InvalidStylesheetsDetected: h.eval.InvalidStylesheetsDetected(),
	}
	if h.doc != nil {
		for _, sheet := range h.doc.StyleSheets() {
			p.Sheets = append(p.Sheets, snapshot(sheet))
		}
	}

	h.logger.Info("harvested",
		zap.String("payload_id", p.ID),
		zap.Int("sheets", len(p.Sheets)),
		zap.Bool("inlined_all_stylesheets", p.InlinedAllStylesheets),
		zap.Bool("invalid_stylesheets_detected", p.InvalidStylesheetsDetected),
	)
	return p, nil
}

func snapshot(sheet *cssom.StyleSheet) Sheet {
	s := Sheet{
		Href:    sheet.Href(),
		Owner:   string(sheet.Owner()),
		Variant: sheet.Variant().String(),
	}
	if rules, err := sheet.CSSRules(); err == nil {
		s.Rules = rules.Strings()
		return s
	}
	if text, ok := sheet.CSSText(); ok {
		s.CSSText = text
		return s
	}
	s.Inaccessible = true
	return s
}
