// Package keyspace derives storage keys for per-account buckets.
//
// Keys have the form "mf:user:<accountID>:<kind>". Kinds come from a closed
// set and never contain the separator, so the kind suffix is unambiguous and
// two different account ids can never produce the same key.
package keyspace

import (
	"errors"
	"strings"
)

type Kind string

const (
	Settings Kind = "settings"
	Routines Kind = "routines"
	Streak   Kind = "streak"
	Profile  Kind = "profile"
)

const prefix = "mf:user:"

var (
	ErrEmptyAccount = errors.New("keyspace: empty account id")
	ErrUnknownKind  = errors.New("keyspace: unknown bucket kind")
)

var (
	ordered = []Kind{Settings, Routines, Streak, Profile}
	kinds   = map[Kind]struct{}{Settings: {}, Routines: {}, Streak: {}, Profile: {}}
)

func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// Key returns the storage key for an account's bucket.
func Key(accountID string, kind Kind) (string, error) {
	if accountID == "" {
		return "", ErrEmptyAccount
	}
	if !kind.Valid() {
		return "", ErrUnknownKind
	}
	return prefix + accountID + ":" + string(kind), nil
}

// AllKeys returns the keys of every bucket kind for one account. Stores use
// it to drop an account's data without scanning by prefix, since a prefix of
// one id can be a prefix of another.
func AllKeys(accountID string) ([]string, error) {
	out := make([]string, 0, len(ordered))
	for _, k := range ordered {
		key, err := Key(accountID, k)
		if err != nil {
			return nil, err
		}
		out = append(out, key)
	}
	return out, nil
}

// Parse splits a key produced by Key back into its parts.
func Parse(key string) (accountID string, kind Kind, ok bool) {
	rest, found := strings.CutPrefix(key, prefix)
	if !found {
		return "", "", false
	}
	i := strings.LastIndexByte(rest, ':')
	if i <= 0 {
		return "", "", false
	}
	kind = Kind(rest[i+1:])
	if !kind.Valid() {
		return "", "", false
	}
	return rest[:i], kind, true
}
