package log

import (
	"log/slog"
	"sort"

	"github.com/samber/lo"

	"code.internetisalie.net/sherpa/pkg/propagate"
)

// ContextAttrs converts a propagated context into slog attributes, key-sorted
// so the same context always produces the same attribute sequence.
func ContextAttrs(c propagate.Context) []slog.Attr {
	keys := lo.Keys(c)
	sort.Strings(keys)

	results := make([]slog.Attr, 0, len(keys))
	for _, key := range keys {
		results = append(results, slog.String(key, c[key]))
	}
	return results
}

// MergeAttrs overlays add onto current, replacing same-key attributes and
// recursively merging same-key groups.
func MergeAttrs(current []slog.Attr, add []slog.Attr) []slog.Attr {
	newAttrs := make([]slog.Attr, len(current), len(current)+len(add))
	copy(newAttrs, current)

	for _, addAttr := range add {
		found := false
		for i, parentAttr := range newAttrs {
			if parentAttr.Key == addAttr.Key {
				// merge or replace existing attribute
				if parentAttr.Value.Kind() == slog.KindGroup && addAttr.Value.Kind() == slog.KindGroup {
					newAttrs[i] = slog.Group(addAttr.Key,
						lo.ToAnySlice(MergeAttrs(parentAttr.Value.Group(), addAttr.Value.Group()))...)
				} else {
					newAttrs[i] = addAttr
				}
				found = true
				break
			}
		}
		if !found {
			// no matching attribute found
			newAttrs = append(newAttrs, addAttr)
		}
	}

	return newAttrs
}

// MapAttrs converts a loose field map into slog attributes.
func MapAttrs(values map[string]any) []slog.Attr {
	if len(values) == 0 {
		return nil
	}

	results := make([]slog.Attr, 0, len(values))
	for key, value := range values {
		results = append(results, slog.Any(key, value))
	}
	return results
}
