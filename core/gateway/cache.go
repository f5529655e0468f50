package gateway

import (
	"strings"
)

// Invalidate removes cached responses whose fingerprint contains pattern.
// An empty pattern clears the whole cache. It returns the number of entries removed.
func (g *Gateway) Invalidate(pattern string) int {
	var n int
	if pattern == "" {
		n = g.cache.Len()
		g.cache.Clear()
	} else {
		n = g.cache.RemoveFunc(func(key string) bool {
			return strings.Contains(key, pattern)
		})
	}
	g.metrics.recordInvalidation(n)
	return n
}

// CacheLen returns the number of cached responses.
func (g *Gateway) CacheLen() int {
	return g.cache.Len()
}

// ResourceFamily returns the invalidation family for path: the first declared
// family that prefixes it, else the path's first segment.
func (g *Gateway) ResourceFamily(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	for _, family := range g.families {
		if path == family || strings.HasPrefix(path, family+"/") {
			return family
		}
	}

	segment := strings.TrimPrefix(path, "/")
	if i := strings.Index(segment, "/"); i >= 0 {
		segment = segment[:i]
	}
	if segment == "" {
		return ""
	}
	return "/" + segment
}

func (g *Gateway) invalidateFamily(path string) {
	family := g.ResourceFamily(path)
	if family == "" {
		// A mutation on the root cannot be narrowed to a family.
		g.Invalidate("")
		return
	}
	g.Invalidate(family)
}

func normalizeFamilies(families []string) []string {
	out := make([]string, 0, len(families))
	for _, f := range families {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if !strings.HasPrefix(f, "/") {
			f = "/" + f
		}
		if f = strings.TrimRight(f, "/"); f != "" {
			out = append(out, f)
		}
	}
	return out
}
