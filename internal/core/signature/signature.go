// Package signature derives the stable content identity used to
// deduplicate annotations across sync runs.
package signature

import (
	"fmt"
	"hash/fnv"
)

// Fields are joined with the ASCII unit separator, which cannot occur
// in node IDs or category IDs.
const sep = "\x1f"

// Compute returns the sync signature for an annotation: a 16-hex-digit
// FNV-1a hash over (item ID, category ID, body). It is a pure function
// of its inputs; equal inputs yield equal output across runs and
// restarts. This is a dedup key, not a cryptographic commitment.
func Compute(itemID, categoryID, body string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(itemID))
	_, _ = h.Write([]byte(sep))
	_, _ = h.Write([]byte(categoryID))
	_, _ = h.Write([]byte(sep))
	_, _ = h.Write([]byte(body))

	return fmt.Sprintf("%016x", h.Sum64())
}
