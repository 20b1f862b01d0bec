package config

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
)

// Hash computes the canonical config_hash stamped onto every scored row
// (spec.md §4.1, P4/P8/P9): an MD5 digest of the options payload's
// canonical JSON encoding. encoding/json already emits object keys in a
// fixed order (struct field declaration order, or sorted for maps), so two
// calls with equal values always produce equal bytes.
func Hash(options any) (string, error) {
	b, err := json.Marshal(options)
	if err != nil {
		return "", err
	}
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:]), nil
}

// MustHash panics on marshal failure; only safe for values whose encoding
// is known not to fail (no channels, funcs, or cyclic structures), which
// holds for every Config payload type in this package.
func MustHash(options any) string {
	h, err := Hash(options)
	if err != nil {
		panic(err)
	}
	return h
}
