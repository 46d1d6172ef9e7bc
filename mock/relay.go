package mock

import (
	"context"

	"github.com/fwojciec/clipsave"
)

var _ clipsave.Relay = (*Relay)(nil)

// Relay is a mock implementation of clipsave.Relay.
type Relay struct {
	SendFn func(ctx context.Context, req clipsave.Request) (clipsave.Response, error)
}

func (r *Relay) Send(ctx context.Context, req clipsave.Request) (clipsave.Response, error) {
	return r.SendFn(ctx, req)
}

var _ clipsave.RequestHandler = (*RequestHandler)(nil)

// RequestHandler is a mock implementation of clipsave.RequestHandler.
type RequestHandler struct {
	HandleFn func(ctx context.Context, req clipsave.Request) clipsave.Response
}

func (h *RequestHandler) Handle(ctx context.Context, req clipsave.Request) clipsave.Response {
	return h.HandleFn(ctx, req)
}
