package sync

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ChecksumBuilder assembles the flat field map a sync checksum is hashed
// from. Keys are sorted before hashing, so insertion order never affects
// the result. Unset optional fields are omitted entirely; an empty string
// is a value. That single rule keeps null/empty ambiguity from causing
// spurious re-syncs.
type ChecksumBuilder struct {
	fields map[string]string
}

func NewChecksumBuilder() *ChecksumBuilder {
	return &ChecksumBuilder{fields: make(map[string]string)}
}

func (b *ChecksumBuilder) Set(key, value string) {
	b.fields[key] = value
}

// SetOptional skips nil pointers instead of writing a sentinel.
func (b *ChecksumBuilder) SetOptional(key string, value *string) {
	if value != nil {
		b.fields[key] = *value
	}
}

func (b *ChecksumBuilder) SetBool(key string, value bool) {
	b.fields[key] = strconv.FormatBool(value)
}

func (b *ChecksumBuilder) SetInt(key string, value int) {
	b.fields[key] = strconv.Itoa(value)
}

// SetPrice formats with two decimals so 12.3 and 12.30 hash identically.
func (b *ChecksumBuilder) SetPrice(key string, value float64) {
	b.fields[key] = strconv.FormatFloat(value, 'f', 2, 64)
}

func (b *ChecksumBuilder) SetFloat(key string, value float64) {
	b.fields[key] = strconv.FormatFloat(value, 'f', -1, 64)
}

func (b *ChecksumBuilder) SetOptionalFloat(key string, value *float64) {
	if value != nil {
		b.SetFloat(key, *value)
	}
}

// SetInts joins ids in ascending order, so the set is what matters, not
// the order assignments were loaded in.
func (b *ChecksumBuilder) SetInts(key string, values []int) {
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, v := range sorted {
		parts[i] = strconv.Itoa(v)
	}
	b.fields[key] = strings.Join(parts, ",")
}

// Fields returns a copy of the assembled map, used as the stored snapshot
// for changed-field reporting.
func (b *ChecksumBuilder) Fields() map[string]string {
	snapshot := make(map[string]string, len(b.fields))
	for k, v := range b.fields {
		snapshot[k] = v
	}
	return snapshot
}

// Sum serializes the sorted key/value pairs and hashes them. Same logical
// state always yields the same string.
func (b *ChecksumBuilder) Sum() string {
	return ChecksumOf(b.fields)
}

// ChecksumOf hashes an already-assembled field map.
func ChecksumOf(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%s\n", k, fields[k])
	}
	return hex.EncodeToString(h.Sum(nil))
}
