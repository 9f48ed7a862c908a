package coordination

import "sync"

// AllResult is the value an All completion resolves with: every input's
// value and error, in input order.
type AllResult struct {
	Values []any
	Errs   []error
}

// All resolves once every completion in cs has resolved, collecting all
// of their values and errors — it never short-circuits on the first
// error, since the spec's "all" waits for every outstanding request to
// settle before the caller observes the combined result.
func All(loop Loop, cs []*Completion) *Completion {
	out := NewCompletion(loop)
	if len(cs) == 0 {
		out.Resolve(&AllResult{}, nil)
		return out
	}

	var mu sync.Mutex
	values := make([]any, len(cs))
	errs := make([]error, len(cs))
	remaining := len(cs)

	for i, c := range cs {
		i := i
		Await(c, func(value any, err error) {
			mu.Lock()
			values[i], errs[i] = value, err
			remaining--
			done := remaining == 0
			mu.Unlock()
			if done {
				out.Resolve(&AllResult{Values: values, Errs: errs}, nil)
			}
		})
	}
	return out
}

// AnyResult is the value an Any or Race completion resolves with: the
// index and value of the winning completion.
type AnyResult struct {
	Index int
	Value any
}

// Any resolves with the first completion in cs to fulfill, cancelling
// every other completion once a fulfillment wins. A rejection is not
// terminal for Any: it keeps waiting for a later fulfillment, and only
// rejects itself once every completion has settled unsuccessfully,
// carrying the last of those errors.
func Any(loop Loop, cs []*Completion) *Completion {
	out := NewCompletion(loop)
	if len(cs) == 0 {
		out.Resolve(nil, nil)
		return out
	}

	var mu sync.Mutex
	remaining := len(cs)
	var lastErr error

	for i, c := range cs {
		i := i
		Await(c, func(value any, err error) {
			if out.Resolved() {
				return
			}
			if err == nil {
				out.Resolve(&AnyResult{Index: i, Value: value}, nil)
				cancelOthers(cs, i)
				return
			}
			mu.Lock()
			remaining--
			lastErr = err
			done := remaining == 0
			mu.Unlock()
			if done {
				out.Resolve(nil, lastErr)
			}
		})
	}
	return out
}

// Race resolves with the first completion in cs to reach any terminal
// state at all — fulfilled or rejected — cancelling the rest. Unlike Any,
// a rejection wins immediately instead of being held until every sibling
// has failed.
func Race(loop Loop, cs []*Completion) *Completion {
	out := NewCompletion(loop)
	if len(cs) == 0 {
		out.Resolve(nil, nil)
		return out
	}
	for i, c := range cs {
		i := i
		Await(c, func(value any, err error) {
			if out.Resolved() {
				return
			}
			out.Resolve(&AnyResult{Index: i, Value: value}, err)
			cancelOthers(cs, i)
		})
	}
	return out
}

// cancelOthers cancels every completion in cs except the one at index
// winner, via CancelAll (a no-op against already-settled completions).
func cancelOthers(cs []*Completion, winner int) {
	others := make([]*Completion, 0, len(cs)-1)
	for j, c := range cs {
		if j != winner {
			others = append(others, c)
		}
	}
	CancelAll(others)
}
