package scstate

import (
	"fmt"
	"strings"

	"github.com/andreyvit/scstate/codec"
	"github.com/andreyvit/scstate/kvo"
)

var dumpSep = strings.Repeat("=", 80)

// Dump returns every stored pair, one per line, in key order.
func (db *DB) Dump() string {
	var s string
	err := db.read(func(b storageBucket) error {
		s = kvo.Dump(entries(b, nil))
		return nil
	})
	if err != nil {
		return fmt.Sprintf("** ERROR: %v\n", err)
	}
	return s
}

// DumpContract returns the state partition of one contract with keys shown
// relative to its root.
func (db *DB) DumpContract(contract string) string {
	root, err := db.roots.Root(contract)
	if err != nil {
		return fmt.Sprintf("** ERROR: %v\n", err)
	}
	var buf strings.Builder
	fmt.Fprintln(&buf, dumpSep)
	fmt.Fprintf(&buf, "%s (%s, root %s)\n", contract, codec.HnameFromName(contract), hexstr(root))
	err = db.read(func(b storageBucket) error {
		buf.WriteString(kvo.Dump(func(yield func([]byte, []byte) bool) {
			for k, v := range entries(b, root) {
				if !yield(k[len(root):], v) {
					return
				}
			}
		}))
		return nil
	})
	if err != nil {
		fmt.Fprintf(&buf, "** ERROR: %v\n", err)
	}
	return buf.String()
}
