// Package e carries the error helpers shared by the storage packages.
package e

import "fmt"

// Wrap prefixes err with msg, typically the caller location from
// whereami.WhereAmI().
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
