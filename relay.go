package clipsave

import "context"

// Request is a message sent through a Relay. The set of requests is closed:
// only types in this package implement it.
type Request interface {
	isRequest()
}

// Response is a message answering a Request. The set of responses is closed.
type Response interface {
	isResponse()
}

// SaveRequest asks the privileged context to run a strategy.
type SaveRequest struct {
	Context  *SaveContext
	Strategy string
}

// PingRequest checks that the privileged context is listening.
type PingRequest struct{}

// SaveResponse carries the result of a SaveRequest.
type SaveResponse struct {
	Result *SaveResult
}

// PongResponse answers a PingRequest.
type PongResponse struct{}

func (*SaveRequest) isRequest() {}
func (*PingRequest) isRequest() {}
func (*SaveResponse) isResponse() {}
func (*PongResponse) isResponse() {}

// Relay delivers one request to another execution context and waits for at
// most one response.
type Relay interface {
	Send(ctx context.Context, req Request) (Response, error)
}

// RequestHandler answers requests on the receiving side of a Relay.
type RequestHandler interface {
	Handle(ctx context.Context, req Request) Response
}
