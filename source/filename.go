package source

import (
	"fmt"
	"path"
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/viant/phoenixgrid/grid"
)

// HiRes file names encode the grid node:
//
//	lte05800-4.50-0.0.PHOENIX-ACES-AGSS-COND-2011-HiRes.fits
//	lte05800-4.50-0.5.Alpha=+0.20.PHOENIX-ACES-AGSS-COND-2011-HiRes.fits
//
// The gravity field is written with a leading minus sign that is not part
// of the value.
var (
	patternWithAlpha    = regexp.MustCompile(`^lte(\d{5})([+-][0-9]+\.[0-9]+)([+-][0-9]+\.[0-9]+)\.Alpha=([+-][0-9]+\.[0-9]+)\..*\.fits$`)
	patternWithoutAlpha = regexp.MustCompile(`^lte(\d{5})([+-][0-9]+\.[0-9]+)([+-][0-9]+\.[0-9]+)\..*\.fits$`)
)

// ParseFilename extracts the grid node from a HiRes file name or path. ok is
// false for names that do not follow the pattern. The returned record's
// locator is the input unchanged.
func ParseFilename(name string) (rec grid.Record, ok bool) {
	base := path.Base(name)
	var m []string
	if m = patternWithAlpha.FindStringSubmatch(base); m == nil {
		if m = patternWithoutAlpha.FindStringSubmatch(base); m == nil {
			return grid.Record{}, false
		}
		m = append(m, "+0.0")
	}
	teff, err := strconv.Atoi(m[1])
	if err != nil {
		return grid.Record{}, false
	}
	values := make([]float64, 3)
	for i, field := range m[2:5] {
		d, err := decimal.NewFromString(field)
		if err != nil {
			return grid.Record{}, false
		}
		if i == 0 {
			d = d.Neg()
		}
		// +0 folds the negative zero of "-0.0" into 0.
		values[i] = d.InexactFloat64() + 0
	}
	return grid.Record{Teff: teff, Logg: values[0], FeH: values[1], Alpha: values[2], Locator: name}, true
}

// FormatFilename renders the HiRes file name of a node for model, the
// inverse of ParseFilename.
func FormatFilename(k grid.Key, model string) string {
	logg := "-" + decimal.NewFromFloat(k.Logg).StringFixed(2)
	if k.Logg < 0 {
		logg = "+" + decimal.NewFromFloat(k.Logg).Neg().StringFixed(2)
	}
	feh := signed(k.FeH, 1)
	if k.FeH == 0 {
		feh = "-0.0"
	}
	name := fmt.Sprintf("lte%05d%s%s", k.Teff, logg, feh)
	if k.Alpha != 0 {
		name += ".Alpha=" + signed(k.Alpha, 2)
	}
	return name + "." + model + "-HiRes.fits"
}

func signed(v float64, places int32) string {
	d := decimal.NewFromFloat(v)
	if d.Sign() < 0 {
		return d.StringFixed(places)
	}
	return "+" + d.StringFixed(places)
}
