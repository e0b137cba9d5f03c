package geo

import (
	"crypto/md5"
	"fmt"
)

// ColorFromKey derives a stable "#rrggbb" color from a grouping key, so every street of
// one district is painted the same. Channels come from the low 24 bits of the key's MD5 digest.
func ColorFromKey(key string) string {
	sum := md5.Sum([]byte(key))
	n := len(sum)

	return fmt.Sprintf("#%02x%02x%02x", sum[n-3], sum[n-2], sum[n-1])
}
