package tenant

import "regexp"

// Resolution carries the chosen tenant id together with where it came from.
type Resolution struct {
	ID     string `json:"id"`
	Source string `json:"source"`
}

const (
	SourceQuery    = "query"
	SourceRoute    = "route"
	SourceFallback = "fallback"

	// Fallback is the demo tenant used when nothing valid was supplied.
	Fallback = "demo"
)

var slugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,50}$`)

// ValidSlug reports whether s is an acceptable tenant slug.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Resolve picks the tenant for a request: query parameter first, then route
// parameter, then the demo fallback. Invalid candidates are skipped, never
// errored on, so the function always yields a usable tenant.
func Resolve(queryParam, routeParam string) Resolution {
	if ValidSlug(queryParam) {
		return Resolution{ID: queryParam, Source: SourceQuery}
	}
	if ValidSlug(routeParam) {
		return Resolution{ID: routeParam, Source: SourceRoute}
	}
	return Resolution{ID: Fallback, Source: SourceFallback}
}
