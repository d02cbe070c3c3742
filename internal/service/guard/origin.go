package guard

import "strings"

// AllowList is the set of browser origins permitted to call the chat
// endpoint. It is read-only after construction.
type AllowList struct {
	origins map[string]struct{}
	ordered []string
}

func NewAllowList(origins []string) *AllowList {
	a := &AllowList{origins: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		o = normalizeOrigin(o)
		if o == "" {
			continue
		}
		if _, dup := a.origins[o]; dup {
			continue
		}
		a.origins[o] = struct{}{}
		a.ordered = append(a.ordered, o)
	}
	return a
}

// Allowed reports whether origin is listed. An empty origin is never
// allowed.
func (a *AllowList) Allowed(origin string) bool {
	origin = normalizeOrigin(origin)
	if origin == "" {
		return false
	}
	_, ok := a.origins[origin]
	return ok
}

func (a *AllowList) Origins() []string {
	return append([]string(nil), a.ordered...)
}

// scheme and host are case-insensitive; browsers never send a trailing slash
func normalizeOrigin(origin string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(origin)), "/")
}
