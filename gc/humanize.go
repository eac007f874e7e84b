package gc

import "github.com/dustin/go-humanize"

// humanizeBytes renders a reclaimed-byte count the way production log
// lines do — friggdb's own logging leans on humanize-style formatting
// for anything byte-denominated rather than printing a bare integer.
func humanizeBytes(n uintptr) string {
	return humanize.Bytes(uint64(n))
}
