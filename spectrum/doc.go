// Package spectrum holds sampled spectra, the Loader capability that produces
// them for grid records, unit handling and the weighted combination used to
// build an interpolated spectrum.
//
// Example:
//
//	weighted, _ := grid.Interpolate(idx, grid.Point(5777, 4.44, 0))
//	s, err := spectrum.Combine(ctx, weighted, src)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(len(s.Wavelength), s.FluxUnit)
package spectrum
