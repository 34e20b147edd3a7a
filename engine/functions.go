package engine

import (
	"database/sql/driver"
	"fmt"
	"math"
	"sync"

	sqlite "modernc.org/sqlite"
)

var registerOnce sync.Once
var registerErr error

// RegisterGridFunctions registers grid_l2 with the
// driver so they are available on connections opened after this call.
// Existing open connections will not see new functions. Repeated calls are
// no-ops.
//
//	grid_l2(teff, logg, feh, alpha, qteff, qlogg, qfeh, qalpha)
//	    raw Euclidean distance between a record and a query point
func RegisterGridFunctions() error {
	registerOnce.Do(func() {
		if err := sqlite.RegisterDeterministicScalarFunction("grid_l2", 8, gridL2Impl); err != nil {
			registerErr = fmt.Errorf("register grid_l2: %w", err)
		}
	})
	return registerErr
}

func asFloat(name string, arg driver.Value) (float64, bool, error) {
	switch v := arg.(type) {
	case nil:
		return 0, false, nil
	case int64:
		return float64(v), true, nil
	case float64:
		return v, true, nil
	default:
		return 0, false, fmt.Errorf("%s: unsupported argument type %T; want number", name, arg)
	}
}

func gridL2Impl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 8 {
		return nil, fmt.Errorf("grid_l2: expected 8 arguments, got %d", len(args))
	}
	var point [8]float64
	for i, arg := range args {
		v, ok, err := asFloat("grid_l2", arg)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		point[i] = v
	}
	var sum float64
	for i := 0; i < 4; i++ {
		d := point[i] - point[i+4]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}
