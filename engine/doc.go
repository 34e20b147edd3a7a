// Package engine provides helpers for working with the modernc.org/sqlite
// driver in this module: opening connections and registering the SQL scalar
// functions used to rank grid records inside queries. Other packages share
// the same driver instance through it.
package engine
