// Package catalog memoises grid listings in SQLite. Listing a remote grid
// means crawling hundreds of directory pages, so a Store keeps the records of
// each source together with the time they were listed, and Cached serves a
// listing from the store while it is fresh.
package catalog
