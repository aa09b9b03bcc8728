/*
Package stylesheet detects style sheets whose rules cannot be read because of
cross-origin loading restrictions, and repairs them so a session-replay
recorder can still serialize their rules.

# Lifecycle

One Evaluator per host document. The recorder composes two calls:

	n := eval.Evaluate()          // on every DOM mutation; never blocks
	...
	failed, err := eval.Fix(ctx)  // at each flush boundary

Evaluate scans every sheet it has not seen before. A sheet whose CSSRules
accessor fails is counted, and a repair goroutine is started for it. Fix
waits for the repairs scheduled before it was called and reports whether any
of them failed.

# Per-sheet states

	unchecked -> checked-accessible
	unchecked -> checked-inaccessible -> repairing -> repaired
	                                               -> raw_text   (constructor failed, text attached)
	                                               -> rejected   (non-2xx response)
	                                               -> failed     (network error, undecodable body)

All terminal states are final: repairs are never retried, and a sheet is
scanned at most once. Membership is by object identity and does not keep
sheets alive (see internal/weakset).

# Signals

InvalidStylesheetsDetected is sticky: once any inaccessible sheet is seen it
stays true. Fix's result covers only the batch it observed; anything other
than repaired, in any task, makes it true. Network failures and error
responses are deliberately reported the same way.

# Known window

A repair scheduled by Evaluate while a Fix is already waiting is not part of
that Fix's batch. It stays pending and is awaited by the next Fix. Callers
must treat Fix's result as applying to the batch it saw, not as "everything
is repaired now".
*/
package stylesheet
