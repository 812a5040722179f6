// codec.go converts JSON payload columns to and from Go values and
// implements the structural merge used by partial updates.
//
// Payload columns (questionObject, answerObject, configs, groups) are
// stored as JSON text. Association lists come back from SQLite as
// json_group_array text and are decoded here too.
//
// Merge is for opaque payload objects only. Association lists
// (questionIds, studentIds, tags) follow the union rule of the association
// maintainer and never pass through Merge.

package store

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/jpl-au/exambank/internal/validate"
)

// Merge returns base overlaid with patch. Keys present in both whose values
// are both objects are merged recursively; otherwise the patch value wins,
// including explicit nulls. Arrays are replaced wholesale. Neither input is
// modified.
func Merge(base, patch Object) Object {
	out := make(Object, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, pv := range patch {
		pm, pok := asMap(pv)
		bm, bok := asMap(out[k])
		if pok && bok {
			out[k] = map[string]any(Merge(bm, pm))
			continue
		}
		out[k] = pv
	}
	return out
}

// asMap accepts both plain maps (from encoding/json) and Object values
// (from callers building payloads in Go).
func asMap(v any) (Object, bool) {
	switch m := v.(type) {
	case map[string]any:
		return Object(m), true
	case Object:
		return m, true
	}
	return nil, false
}

// mergeOrReplace applies the two-mode update rule for payload objects.
func mergeOrReplace(old, patch Object, replace bool) Object {
	if replace {
		if patch == nil {
			return Object{}
		}
		return patch
	}
	if patch == nil {
		return old
	}
	return Merge(old, patch)
}

// encodeObject serialises a payload, enforcing the payload size limit.
// A nil object is stored as {}.
func encodeObject(field string, o Object, limit int64) (string, error) {
	if o == nil {
		return "{}", nil
	}
	b, err := json.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", field, err)
	}
	if err := validate.Payload(field, b, limit); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUserError, err)
	}
	return string(b), nil
}

// decodeObject parses a payload column. Empty text and JSON null decode to
// an empty object. Numbers stay json.Number so a merge re-encodes keys it
// did not touch exactly as they were stored.
func decodeObject(field, raw string) (Object, error) {
	if raw == "" {
		return Object{}, nil
	}
	var o Object
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&o); err != nil {
		return nil, fmt.Errorf("decode %s: %w", field, err)
	}
	if o == nil {
		o = Object{}
	}
	return o, nil
}

// encodeStrings serialises an ordered string list such as groups.
func encodeStrings(field string, v []string, limit int64) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", field, err)
	}
	if err := validate.Payload(field, b, limit); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUserError, err)
	}
	return string(b), nil
}

// decodeStrings parses a JSON string array, dropping nulls produced by
// json_group_array over outer joins. The result is never nil so lists
// encode as [] rather than null.
func decodeStrings(field, raw string) ([]string, error) {
	out := []string{}
	if raw == "" {
		return out, nil
	}
	var vals []*string
	if err := json.Unmarshal([]byte(raw), &vals); err != nil {
		return nil, fmt.Errorf("decode %s: %w", field, err)
	}
	for _, v := range vals {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out, nil
}

// decodeTags parses a tag text list and sorts it.
func decodeTags(raw string) ([]string, error) {
	tags, err := decodeStrings("tags", raw)
	if err != nil {
		return nil, err
	}
	slices.Sort(tags)
	return tags, nil
}

// jsonList encodes ids for a json_each(?) parameter.
func jsonList(ids []string) string {
	if ids == nil {
		return "[]"
	}
	b, _ := json.Marshal(ids) // []string always marshals
	return string(b)
}

// likeEscaper escapes LIKE wildcards so a pattern matches literally. Queries
// using likePatterns must declare ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePatterns wraps each pattern for substring matching.
func likePatterns(patterns []string) string {
	wrapped := make([]string, len(patterns))
	for i, p := range patterns {
		wrapped[i] = "%" + likeEscaper.Replace(p) + "%"
	}
	return jsonList(wrapped)
}
