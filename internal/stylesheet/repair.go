package stylesheet

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/sheetguard/internal/cssom"
	"github.com/GriffinCanCode/sheetguard/internal/shared/id"
)

// Outcome is the terminal state of a repair task.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeRepaired
	OutcomeRawText
	OutcomeRejected
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeRepaired:
		return "repaired"
	case OutcomeRawText:
		return "raw_text"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type repair struct {
	id     id.RepairID
	seq    uint64
	target *cssom.StyleSheet
	href   string
	done   chan struct{}

	// written before done is closed
	outcome Outcome
}

// schedule records a repair for sheet and starts it. Callers hold e.mu.
func (e *Evaluator) schedule(sheet *cssom.StyleSheet) *repair {
	e.seq++
	r := &repair{
		id:     id.NewRepairID(),
		seq:    e.seq,
		target: sheet,
		href:   sheet.Href(),
		done:   make(chan struct{}),
	}
	e.pending = append(e.pending, r)
	go e.run(r)
	return r
}

func (e *Evaluator) run(r *repair) {
	defer close(r.done)

	logger := e.logger.With(zap.Stringer("repair_id", r.id), zap.String("href", r.href))

	defer func() {
		if p := recover(); p != nil {
			logger.Error("repair panicked", zap.Any("panic", p))
			r.outcome = OutcomeFailed
			e.markFailed()
			e.metrics.RecordRepair(r.outcome.String())
		}
	}()

	outcome, err := e.repair(r)
	r.outcome = outcome
	if outcome != OutcomeRepaired {
		e.markFailed()
	}
	e.metrics.RecordRepair(outcome.String())

	if err != nil {
		logger.Warn("style sheet repair failed", zap.Stringer("outcome", outcome), zap.Error(err))
		return
	}
	logger.Info("style sheet repaired", zap.Stringer("outcome", outcome))
}

// repair fetches the sheet's source and attaches it to the target. A
// non-nil error always comes with a failing outcome.
func (e *Evaluator) repair(r *repair) (Outcome, error) {
	if e.fetcher == nil {
		return OutcomeFailed, fmt.Errorf("no fetcher configured")
	}

	resp, err := e.fetcher.Fetch(e.ctx, r.href)
	if err != nil {
		return OutcomeFailed, err
	}
	if !resp.OK() {
		return OutcomeRejected, fmt.Errorf("unexpected status %d", resp.Status)
	}

	text, err := resp.Text()
	if err != nil {
		return OutcomeFailed, err
	}

	sheet, err := e.constructor.Construct(text)
	if err != nil {
		r.target.OverrideCSSText(text)
		return OutcomeRawText, fmt.Errorf("construct replacement sheet (%s): %w", resp.DetectedType(), err)
	}

	r.target.OverrideRules(sheet)
	return OutcomeRepaired, nil
}
