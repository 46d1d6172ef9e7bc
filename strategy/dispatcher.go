// Package strategy implements the save strategies and the dispatcher that
// selects, validates and runs them.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fwojciec/clipsave"
)

// Ensure Dispatcher can serve the privileged side of a relay.
var _ clipsave.RequestHandler = (*Dispatcher)(nil)

// Dispatcher is a registry of named strategies. Strategies that run
// privileged are relayed to another execution context when a Relay is set.
type Dispatcher struct {
	// Relay, if set, carries privileged saves to the context that may
	// perform them. When nil every strategy runs in-process.
	Relay clipsave.Relay

	mu         sync.RWMutex
	strategies map[string]clipsave.Strategy
	order      []string
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{strategies: make(map[string]clipsave.Strategy)}
}

// Register adds s under its descriptor name.
// Returns EINVALID if the name is empty or already registered.
func (d *Dispatcher) Register(s clipsave.Strategy) error {
	name := s.Descriptor().Name
	if name == "" {
		return clipsave.Errorf(clipsave.EINVALID, "strategy name required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.strategies[name]; ok {
		return clipsave.Errorf(clipsave.EINVALID, "strategy %q already registered", name)
	}
	d.strategies[name] = s
	d.order = append(d.order, name)
	return nil
}

// Get returns the strategy registered under name.
func (d *Dispatcher) Get(name string) (clipsave.Strategy, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.strategies[name]
	return s, ok
}

// Descriptors lists registered strategies in registration order.
func (d *Dispatcher) Descriptors() []clipsave.StrategyDescriptor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]clipsave.StrategyDescriptor, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.strategies[name].Descriptor())
	}
	return out
}

// Dispatch saves sc with the named strategy and always returns a result.
// Unknown strategies and invalid configuration fail with a validation
// result; relay failures and missing responses fail as unknown.
func (d *Dispatcher) Dispatch(ctx context.Context, sc *clipsave.SaveContext, name string) *clipsave.SaveResult {
	s, failure := d.lookup(sc, name)
	if failure != nil {
		return failure
	}

	if s.Descriptor().RunsPrivileged && d.Relay != nil {
		return d.relay(ctx, sc, name)
	}
	return execute(ctx, s, sc)
}

// Handle runs save requests in-process. It is the receiving end of a relay
// and never relays further.
func (d *Dispatcher) Handle(ctx context.Context, req clipsave.Request) clipsave.Response {
	switch req := req.(type) {
	case *clipsave.SaveRequest:
		s, failure := d.lookup(req.Context, req.Strategy)
		if failure != nil {
			return &clipsave.SaveResponse{Result: failure}
		}
		return &clipsave.SaveResponse{Result: execute(ctx, s, req.Context)}
	case *clipsave.PingRequest:
		return &clipsave.PongResponse{}
	}
	return nil
}

// lookup finds and validates the strategy for sc.
func (d *Dispatcher) lookup(sc *clipsave.SaveContext, name string) (clipsave.Strategy, *clipsave.SaveResult) {
	s, ok := d.Get(name)
	if !ok {
		return nil, clipsave.NewFailureResult(clipsave.Errorf(clipsave.EINVALID, "unknown save strategy %q", name))
	}
	if sc == nil {
		return nil, clipsave.NewFailureResult(clipsave.Errorf(clipsave.EINVALID, "save context required"))
	}
	if err := s.Validate(sc.Config); err != nil {
		return nil, clipsave.NewFailureResult(clipsave.Errorf(clipsave.EINVALID, "%s", joinMessages(err)))
	}
	return s, nil
}

func (d *Dispatcher) relay(ctx context.Context, sc *clipsave.SaveContext, name string) *clipsave.SaveResult {
	resp, err := d.Relay.Send(ctx, &clipsave.SaveRequest{Context: sc, Strategy: name})
	if err != nil {
		return unknownFailure(fmt.Sprintf("relay %q: %s", name, reasonOf(err)))
	}
	sr, ok := resp.(*clipsave.SaveResponse)
	if !ok || sr == nil || sr.Result == nil {
		return unknownFailure(fmt.Sprintf("no response from privileged context for %q", name))
	}
	return sr.Result
}

// execute runs s.Save, turning panics and nil results into unknown failures.
func execute(ctx context.Context, s clipsave.Strategy, sc *clipsave.SaveContext) (result *clipsave.SaveResult) {
	name := s.Descriptor().Name
	defer func() {
		if r := recover(); r != nil {
			result = unknownFailure(fmt.Sprintf("strategy %q failed: %v", name, r))
		}
	}()

	result = s.Save(ctx, sc)
	if result == nil {
		result = unknownFailure(fmt.Sprintf("strategy %q returned no result", name))
	}
	return result
}

func unknownFailure(reason string) *clipsave.SaveResult {
	result := clipsave.NewFailureResult(errors.New(reason))
	result.FailureKind = clipsave.FailureUnknown
	return result
}

// joinMessages flattens an errors.Join tree into "a; b; c".
func joinMessages(err error) string {
	var msgs []string
	var walk func(error)
	walk = func(err error) {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				walk(e)
			}
			return
		}
		msgs = append(msgs, reasonOf(err))
	}
	walk(err)
	return strings.Join(msgs, "; ")
}

// reasonOf returns the message of an application error or the full text of
// any other error.
func reasonOf(err error) string {
	if clipsave.ErrorCode(err) == clipsave.EINTERNAL {
		return err.Error()
	}
	return clipsave.ErrorMessage(err)
}
