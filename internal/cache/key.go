package cache

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// MakeKey builds "<prefix>:<hash>" from the semantic input of a call.
//
// Strings are hashed as given. Anything else goes through encoding/json, which
// emits struct fields in declaration order and map keys sorted, so equal
// values always yield equal keys. The hash is a 32-bit multiply-add over the
// runes; collisions only ever make two callers share an idempotent result.
func MakeKey(prefix string, data any) string {
	return prefix + ":" + strconv.FormatInt(int64(hashString(canonical(data))), 10)
}

func canonical(data any) string {
	switch v := data.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return "null"
	}

	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Sprintf("%#v", data)
	}
	return string(b)
}

// hashString computes h = h*31 + c with int32 wraparound.
func hashString(s string) int32 {
	var h int32
	for _, r := range s {
		h = h*31 + int32(r)
	}
	return h
}
