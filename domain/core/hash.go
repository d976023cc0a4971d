package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// SpecHash identifies an indice definition independently of map ordering.
type SpecHash Hash

func (h SpecHash) String() string { return Hash(h).String() }

// ComputeSpecHash hashes sorted key/value pairs followed by the ordered variable list.
func ComputeSpecHash(params map[string]string, variables []VariableKey) SpecHash {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteByte('=')
		data.WriteString(params[key])
		data.WriteByte(';')
	}
	data.WriteByte('|')
	for _, v := range variables {
		data.WriteString(fmt.Sprintf("%s;", v))
	}

	return SpecHash(NewHash([]byte(data.String())))
}
