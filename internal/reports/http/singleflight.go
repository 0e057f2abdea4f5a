package http

import (
	"context"
	"sort"

	"golang.org/x/sync/singleflight"
)

var renderGroup singleflight.Group

// singleflightRender collapses identical concurrent renders. The bool reports
// whether the result was shared with another caller.
func singleflightRender[T any](ctx context.Context, key string, fn func(context.Context) (T, error)) (T, error, bool) {
	resultChan := renderGroup.DoChan(key, func() (interface{}, error) {
		return fn(ctx)
	})
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err(), false
	case res := <-resultChan:
		out, _ := res.Val.(T)
		return out, res.Err, res.Shared
	}
}

// renderKey identifies a render by route and query, ignoring the page
// selector so every page of one preview shares a build.
func renderKey(path string, query map[string][]string) string {
	key := path
	for _, k := range sortedKeys(query) {
		if k == "page" {
			continue
		}
		for _, v := range query[k] {
			key += "&" + k + "=" + v
		}
	}
	return key
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
