package stylesheet

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/sheetguard/internal/cssom"
	"github.com/GriffinCanCode/sheetguard/internal/fetch"
	"github.com/GriffinCanCode/sheetguard/internal/logging"
	"github.com/GriffinCanCode/sheetguard/internal/monitoring"
	"github.com/GriffinCanCode/sheetguard/internal/weakset"
)

// Document is the host document's style sheet collection.
type Document interface {
	StyleSheets() []*cssom.StyleSheet
}

// Fetcher retrieves a sheet's source out of band.
type Fetcher interface {
	Fetch(ctx context.Context, href string) (*fetch.Response, error)
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger.Named("stylesheet")
	}
}

// WithMetrics records scan, repair and fix metrics.
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(e *Evaluator) {
		e.metrics = metrics
	}
}

// WithConstructor replaces the default douceur-backed constructor.
func WithConstructor(c cssom.Constructor) Option {
	return func(e *Evaluator) {
		e.constructor = c
	}
}

// WithContext sets the context repair fetches run under. Repairs outlive
// the Evaluate call that starts them, so this is the evaluator's lifetime,
// not a request's.
func WithContext(ctx context.Context) Option {
	return func(e *Evaluator) {
		e.ctx = ctx
	}
}

// Evaluator tracks the style sheets of one document.
type Evaluator struct {
	doc         Document
	fetcher     Fetcher
	constructor cssom.Constructor
	logger      *logging.Logger
	metrics     *monitoring.Metrics
	ctx         context.Context

	// called with the batch size once Fix has taken its snapshot
	batchTaken func(size int)

	mu              sync.Mutex
	checked         *weakset.Set[cssom.StyleSheet]
	pending         []*repair
	seq             uint64
	invalidDetected bool
	lastFixFailed   bool
}

// New creates an evaluator for doc. A nil doc means there is no browsing
// context: Evaluate always returns 0.
func New(doc Document, fetcher Fetcher, opts ...Option) *Evaluator {
	e := &Evaluator{
		doc:         doc,
		fetcher:     fetcher,
		constructor: cssom.Parser{},
		logger:      logging.NewNop(),
		ctx:         context.Background(),
		checked:     weakset.New[cssom.StyleSheet](),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate scans every sheet not seen before and starts a repair for each
// one whose rules cannot be read. It returns how many such sheets this call
// found.
func (e *Evaluator) Evaluate() int {
	if e.doc == nil {
		return 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	scanned, incompletes := 0, 0
	for _, sheet := range e.doc.StyleSheets() {
		if !e.checked.Add(sheet) {
			continue
		}
		scanned++

		if _, err := sheet.CSSRules(); err == nil {
			continue
		}
		incompletes++
		r := e.schedule(sheet)
		e.logger.Info("inaccessible style sheet",
			zap.String("href", sheet.Href()),
			zap.Stringer("repair_id", r.id),
		)
	}

	if incompletes > 0 {
		e.invalidDetected = true
	}
	e.metrics.RecordScan(scanned, incompletes)
	return incompletes
}

// Fix waits for every repair scheduled before the call, then reports
// whether any repair failed since the previous Fix. The failure flag is
// cleared. If ctx ends first, Fix returns ctx.Err() and leaves both the
// pending repairs and the flag untouched.
func (e *Evaluator) Fix(ctx context.Context) (bool, error) {
	start := time.Now()

	e.mu.Lock()
	batch := append([]*repair(nil), e.pending...)
	e.mu.Unlock()

	if e.batchTaken != nil {
		e.batchTaken(len(batch))
	}

	for _, r := range batch {
		// settled tasks never lose to an expired ctx
		select {
		case <-r.done:
			continue
		default:
		}
		select {
		case <-r.done:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	e.mu.Lock()
	drained := 0
	if len(batch) > 0 {
		drained = e.drain(batch[len(batch)-1].seq)
	}
	failed := e.lastFixFailed
	e.lastFixFailed = false
	e.mu.Unlock()

	if drained > 0 {
		e.logger.Debug("repair batch settled",
			zap.Int("repairs", drained),
			zap.Bool("failed", failed),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	e.metrics.RecordFix(failed, time.Since(start))
	return failed, nil
}

// InvalidStylesheetsDetected reports whether any inaccessible sheet has ever
// been found.
func (e *Evaluator) InvalidStylesheetsDetected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.invalidDetected
}

// Pending returns the number of repairs not yet drained by Fix.
func (e *Evaluator) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// Checked reports whether sheet has been scanned.
func (e *Evaluator) Checked(sheet *cssom.StyleSheet) bool {
	return e.checked.Has(sheet)
}

// drain drops pending repairs up to and including seq. Callers hold e.mu.
func (e *Evaluator) drain(seq uint64) int {
	n := 0
	for n < len(e.pending) && e.pending[n].seq <= seq {
		n++
	}
	e.pending = append([]*repair(nil), e.pending[n:]...)
	return n
}

func (e *Evaluator) markFailed() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastFixFailed = true
}
