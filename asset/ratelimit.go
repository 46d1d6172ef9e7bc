package asset

import (
	"context"
	"sync"

	"github.com/fwojciec/clipsave"
	"golang.org/x/time/rate"
)

// DefaultBurst is the number of requests a host may receive back to back
// before the limiter starts spacing them out.
const DefaultBurst = 4

var _ clipsave.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter throttles asset requests per host with token buckets.
// Images embedded in one page often share a CDN host, so bursts to that host
// are bounded while other hosts proceed independently.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewDomainLimiter creates a DomainLimiter allowing rps requests per second
// to each host with the given burst. A non-positive rps disables limiting.
func NewDomainLimiter(rps float64, burst int) *DomainLimiter {
	if burst <= 0 {
		burst = DefaultBurst
	}
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

// Wait blocks until a request to host is allowed or ctx is done.
func (d *DomainLimiter) Wait(ctx context.Context, host string) error {
	return d.limiter(host).Wait(ctx)
}

func (d *DomainLimiter) limiter(host string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()

	l, ok := d.limiters[host]
	if !ok {
		l = rate.NewLimiter(d.limit, d.burst)
		d.limiters[host] = l
	}
	return l
}
