// Command phoenix queries PHOENIX stellar atmosphere grids.
//
// Usage:
//
//	phoenix [global flags] <command> [flags]
//
// Examples:
//
//	phoenix sources
//	phoenix axes -source synphot
//	phoenix nearest -teff 5777 -logg 4.44 -feh 0.0
//	phoenix weights -teff 5777 -logg 4.44 -json
//	phoenix spectrum -source synphot -teff 5777 -logg 4.44 -out sun.fits
//	phoenix download -teff 5777 -logg 4.44 -dir ./models
//	phoenix serve -addr :8080
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
