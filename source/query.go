package source

import (
	"context"

	"github.com/viant/phoenixgrid/grid"
	"github.com/viant/phoenixgrid/spectrum"
)

// DefaultParallelism bounds concurrent spectrum loads in Spectrum.
const DefaultParallelism = 4

// Spectrum resolves q on idx with mode, loads the selected nodes from src
// with at most parallel concurrent loads and combines them. The weighted
// records are returned alongside the result.
func Spectrum(ctx context.Context, src Source, idx *grid.Index, q grid.Query, mode grid.Mode, parallel int, opts ...spectrum.Option) (*spectrum.Spectrum, []grid.WeightedRecord, error) {
	weighted, err := grid.Select(idx, q, mode)
	if err != nil {
		return nil, nil, err
	}
	if parallel <= 0 {
		parallel = DefaultParallelism
	}
	resolved, err := spectrum.Prefetch(ctx, weighted, src, parallel)
	if err != nil {
		return nil, weighted, err
	}
	s, err := spectrum.Combine(ctx, weighted, resolved, opts...)
	if err != nil {
		return nil, weighted, err
	}
	return s, weighted, nil
}
