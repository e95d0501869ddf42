package union

import (
	"strconv"
	"strings"
)

// Delimiter separates a registry key from the mount id that owns it.
const Delimiter = "__id:"

// Key identifies one registry entry: the key a widget declared and the id of
// the mount that injected it.
type Key struct {
	Base string
	ID   uint64
}

// String renders the key as Base + Delimiter + ID.
func (k Key) String() string {
	return Suffix(k.ID, k.Base)
}

// ParseKey recovers a Key from its string form. The suffix is split at the
// last delimiter, so a base that itself contains the delimiter survives the
// round trip. Returns false if s carries no numeric suffix.
func ParseKey(s string) (Key, bool) {
	i := strings.LastIndex(s, Delimiter)
	if i < 0 {
		return Key{Base: s}, false
	}
	id, err := strconv.ParseUint(s[i+len(Delimiter):], 10, 64)
	if err != nil {
		return Key{Base: s}, false
	}
	return Key{Base: s[:i], ID: id}, true
}

// Suffix appends the mount id to value.
func Suffix(id uint64, value string) string {
	return value + Delimiter + strconv.FormatUint(id, 10)
}

// RemoveSuffix strips the mount id from key. Keys without a suffix are
// returned unchanged.
func RemoveSuffix(key string) string {
	k, ok := ParseKey(key)
	if !ok {
		return key
	}
	return k.Base
}

// SuffixReducers renames every key of reducers, nested maps included.
func SuffixReducers(id uint64, reducers Reducers) Reducers {
	out := make(Reducers, len(reducers))
	for key, node := range reducers {
		if nested, ok := node.(Reducers); ok {
			node = SuffixReducers(id, nested)
		}
		out[Suffix(id, key)] = node
	}
	return out
}

// RemoveSuffixFromKeys strips mount ids from every key, nested maps included.
// When two entries collapse onto the same key the one injected by the newer
// mount wins.
func RemoveSuffixFromKeys(reducers Reducers) Reducers {
	out := make(Reducers, len(reducers))
	owner := make(map[string]uint64, len(reducers))
	for key, node := range reducers {
		k, _ := ParseKey(key)
		if prev, seen := owner[k.Base]; seen && prev > k.ID {
			continue
		}
		if nested, ok := node.(Reducers); ok {
			node = RemoveSuffixFromKeys(nested)
		}
		owner[k.Base] = k.ID
		out[k.Base] = node
	}
	return out
}

// SuffixEpics renames every epic key.
func SuffixEpics(id uint64, epics Epics) Epics {
	out := make(Epics, len(epics))
	for key, epic := range epics {
		out[Suffix(id, key)] = epic
	}
	return out
}
