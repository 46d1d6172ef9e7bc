// Package relay carries requests from an ordinary execution context to a
// privileged one running in its own goroutine.
package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/clipsave"
)

// DefaultTimeout bounds how long a Client waits for a response.
const DefaultTimeout = 150 * time.Second

// envelope is one in-flight request and the slot for its single answer.
type envelope struct {
	req   clipsave.Request
	reply chan clipsave.Response
}

// Server runs a RequestHandler in the privileged context. Handlers run
// under the server's lifetime, not the sender's, so a sender that stops
// waiting does not abort work already started.
type Server struct {
	Handler clipsave.RequestHandler

	reqs    chan envelope
	closing chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once
}

// NewServer creates a Server for h. Call Open before sending requests.
func NewServer(h clipsave.RequestHandler) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		Handler: h,
		reqs:    make(chan envelope),
		closing: make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Open starts the receive loop.
func (s *Server) Open() error {
	if s.Handler == nil {
		return clipsave.Errorf(clipsave.EINVALID, "relay handler required")
	}
	s.wg.Add(1)
	go s.serve()
	return nil
}

// Close stops accepting requests, cancels running handlers and waits for
// them to return.
func (s *Server) Close() error {
	s.once.Do(func() {
		close(s.closing)
		s.cancel()
	})
	s.wg.Wait()
	return nil
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		select {
		case env := <-s.reqs:
			s.wg.Add(1)
			go s.handle(env)
		case <-s.closing:
			return
		}
	}
}

// handle answers env exactly once, with nil if the handler panics.
func (s *Server) handle(env envelope) {
	defer s.wg.Done()

	var resp clipsave.Response
	defer func() {
		if r := recover(); r != nil {
			resp = nil
		}
		env.reply <- resp
	}()
	resp = s.Handler.Handle(s.ctx, env.req)
}

// Ensure Client implements clipsave.Relay.
var _ clipsave.Relay = (*Client)(nil)

// Client sends requests to a Server.
type Client struct {
	server  *Server
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets how long Send waits for a response.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient creates a Client bound to s.
func NewClient(s *Server, opts ...Option) *Client {
	c := &Client{
		server:  s,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send delivers req and waits for its response. A nil response with a nil
// error means the handler produced no answer.
//
// Returns ECLOSED if the server is closed, ETIMEOUT when the timeout
// elapses and EINTERRUPTED when ctx is canceled.
func (c *Client) Send(ctx context.Context, req clipsave.Request) (clipsave.Response, error) {
	if req == nil {
		return nil, clipsave.Errorf(clipsave.EINVALID, "relay request required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	env := envelope{req: req, reply: make(chan clipsave.Response, 1)}
	select {
	case c.server.reqs <- env:
	case <-c.server.closing:
		return nil, clipsave.Errorf(clipsave.ECLOSED, "relay closed")
	case <-ctx.Done():
		return nil, waitError(ctx, req)
	}

	select {
	case resp := <-env.reply:
		return resp, nil
	case <-c.server.closing:
		return nil, clipsave.Errorf(clipsave.ECLOSED, "relay closed")
	case <-ctx.Done():
		return nil, waitError(ctx, req)
	}
}

func waitError(ctx context.Context, req clipsave.Request) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return clipsave.Errorf(clipsave.ETIMEOUT, "no response to %s", describe(req))
	}
	return clipsave.Errorf(clipsave.EINTERRUPTED, "%s canceled", describe(req))
}

func describe(req clipsave.Request) string {
	switch req := req.(type) {
	case *clipsave.SaveRequest:
		return fmt.Sprintf("save request for %q", req.Strategy)
	case *clipsave.PingRequest:
		return "ping"
	}
	return "request"
}
