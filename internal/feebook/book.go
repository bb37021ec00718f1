// Package feebook resolves the fee schedule in force for a platform.
package feebook

import (
	"context"

	"ecom-auditor/internal/profit"

	"go.uber.org/zap"
)

// Book returns the active fee schedule of a platform.
type Book interface {
	Schedule(ctx context.Context, p profit.Platform) (profit.FeeStructure, error)
}

// Static serves the built-in defaults.
type Static struct{}

func (Static) Schedule(_ context.Context, p profit.Platform) (profit.FeeStructure, error) {
	if !p.Valid() {
		return profit.FeeStructure{}, profit.ErrUnknownPlatform
	}
	return profit.DefaultFees(p), nil
}

// Resolver adapts a Book to the lookup function profit.Calculator.Compare
// expects. Lookup failures fall back to the defaults and are logged.
func Resolver(ctx context.Context, b Book, logger *zap.Logger) func(profit.Platform) profit.FeeStructure {
	return func(p profit.Platform) profit.FeeStructure {
		fees, err := b.Schedule(ctx, p)
		if err != nil {
			logger.Warn("Fee schedule lookup failed, using defaults",
				zap.String("platform", string(p)),
				zap.Error(err))
			return profit.DefaultFees(p)
		}
		return fees
	}
}
