package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHashPayload_Deterministic verifies that hashing the same payload twice
// yields the same digest.
func TestHashPayload_Deterministic(t *testing.T) {
	payload := []byte(`{"name":"Report","tags":["work"]}`)

	first := HashPayload(payload)
	second := HashPayload(payload)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

// TestHashPayload_FieldOrderIrrelevant verifies that object field order does
// not affect the hash.
func TestHashPayload_FieldOrderIrrelevant(t *testing.T) {
	a := []byte(`{"name":"Report","tags":["work"],"done":false}`)
	b := []byte(`{"done":false,"tags":["work"],"name":"Report"}`)

	assert.Equal(t, HashPayload(a), HashPayload(b))
}

// TestHashPayload_WhitespaceIrrelevant verifies that formatting differences
// do not affect the hash.
func TestHashPayload_WhitespaceIrrelevant(t *testing.T) {
	a := []byte(`{"name":"Report"}`)
	b := []byte("{\n  \"name\": \"Report\"\n}")

	assert.Equal(t, HashPayload(a), HashPayload(b))
}

// TestHashPayload_ContentSensitive verifies that a changed field value
// changes the hash.
func TestHashPayload_ContentSensitive(t *testing.T) {
	a := []byte(`{"name":"Report","tags":["work"]}`)
	b := []byte(`{"name":"Report","tags":["work","urgent"]}`)

	assert.NotEqual(t, HashPayload(a), HashPayload(b))
}

// TestHashPayload_NumberFormPreserved verifies that numbers keep their
// textual form during canonicalization, so semantically tricky values like
// large integers do not collapse.
func TestHashPayload_NumberFormPreserved(t *testing.T) {
	a := []byte(`{"amount":9007199254740993}`)
	b := []byte(`{"amount":9007199254740992}`)

	assert.NotEqual(t, HashPayload(a), HashPayload(b))
}

// TestHashPayload_MalformedPayload verifies that invalid JSON is hashed over
// its raw bytes instead of erroring.
func TestHashPayload_MalformedPayload(t *testing.T) {
	raw := []byte("\x00\x01not-json")

	first := HashPayload(raw)
	second := HashPayload(raw)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, HashPayload([]byte("other-bytes")))
}

// TestHashPayload_ArrayOrderSignificant verifies that array element order is
// content, not formatting: reordering elements changes the hash.
func TestHashPayload_ArrayOrderSignificant(t *testing.T) {
	a := []byte(`{"tags":["work","urgent"]}`)
	b := []byte(`{"tags":["urgent","work"]}`)

	assert.NotEqual(t, HashPayload(a), HashPayload(b))
}
