package registry

import (
	"github.com/Masterminds/semver/v3"
)

// LatestActive picks the highest-versioned active server from a search
// result, typically across multiple published versions of the same name.
// Versions are compared as semver; entries whose version does not parse
// are skipped. When no version parses, the first active entry wins, and
// when nothing is active the result is nil.
func LatestActive(servers []Server) *Server {
	var (
		best        *Server
		bestVersion *semver.Version
		firstActive *Server
	)

	for i := range servers {
		srv := &servers[i]
		if !srv.Active() {
			continue
		}
		if firstActive == nil {
			firstActive = srv
		}
		v, err := semver.NewVersion(srv.Version)
		if err != nil {
			continue
		}
		if bestVersion == nil || v.GreaterThan(bestVersion) {
			best = srv
			bestVersion = v
		}
	}

	if best != nil {
		return best
	}
	return firstActive
}
