package mock

import (
	"context"

	"github.com/fwojciec/clipsave"
)

var _ clipsave.Strategy = (*Strategy)(nil)

// Strategy is a mock implementation of clipsave.Strategy.
type Strategy struct {
	DescriptorFn func() clipsave.StrategyDescriptor
	ValidateFn   func(cfg clipsave.SaveConfig) error
	SaveFn       func(ctx context.Context, sc *clipsave.SaveContext) *clipsave.SaveResult
}

func (s *Strategy) Descriptor() clipsave.StrategyDescriptor {
	return s.DescriptorFn()
}

func (s *Strategy) Validate(cfg clipsave.SaveConfig) error {
	return s.ValidateFn(cfg)
}

func (s *Strategy) Save(ctx context.Context, sc *clipsave.SaveContext) *clipsave.SaveResult {
	return s.SaveFn(ctx, sc)
}
