// Package utils provides general-purpose helper utilities used across
// different parts of the application: content hashing for sync change
// detection and UUID generation for record identifiers.
package utils

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"hash"
	"sync"
)

// hasherPool is a package-level pool of reusable SHA-256 hash instances.
// Avoids repeated allocations of hash.Hash in hashing-heavy sync rounds.
var hasherPool = sync.Pool{
	New: func() any {
		return sha256.New()
	},
}

// HashPayload computes the canonical content hash of a record payload.
//
// The payload is first normalised: JSON is decoded and re-encoded so that
// object field order and insignificant whitespace do not affect the result.
// Two payloads that differ only in field order therefore hash identically on
// every platform, which is what the change detector relies on.
//
// Malformed payloads never cause an error; they are hashed over their raw
// byte form instead.
func HashPayload(payload []byte) string {
	canon, err := canonicalizeJSON(payload)
	if err != nil {
		canon = payload
	}

	h := hasherPool.Get().(hash.Hash)
	h.Reset()

	h.Write(canon)
	sum := h.Sum(nil)

	h.Reset()
	hasherPool.Put(h)

	return hex.EncodeToString(sum)
}

// canonicalizeJSON re-encodes a JSON document in canonical form: object keys
// sorted (encoding/json marshals maps in key order) and numbers kept in
// their original textual form via json.Number, so re-encoding is lossless.
func canonicalizeJSON(payload []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	return json.Marshal(doc)
}
