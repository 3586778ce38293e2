package proxy

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sort"
	"strings"

	"github.com/aussiebroadwan/meshauth/pkg/httpx"
)

// Route binds a path prefix to a downstream service.
type Route struct {
	Prefix string
	Target *url.URL
}

// ParseRoutes parses a comma-separated "prefix=url" route table, e.g.
// "/auth=http://user:8081,/v1/users=http://user:8081".
func ParseRoutes(spec string) ([]Route, error) {
	var routes []Route
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		prefix, target, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("proxy: malformed route %q, want prefix=url", entry)
		}
		prefix = strings.TrimSpace(prefix)
		if !strings.HasPrefix(prefix, "/") {
			return nil, fmt.Errorf("proxy: route prefix %q must start with /", prefix)
		}

		u, err := url.Parse(strings.TrimSpace(target))
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("proxy: route %q has invalid target url", entry)
		}

		routes = append(routes, Route{Prefix: prefix, Target: u})
	}

	if len(routes) == 0 {
		return nil, fmt.Errorf("proxy: empty route table")
	}

	// Longest prefix wins so /v1/users beats /v1.
	sort.Slice(routes, func(i, j int) bool {
		return len(routes[i].Prefix) > len(routes[j].Prefix)
	})

	return routes, nil
}

// Router strips the public API prefix and forwards requests to the
// downstream service owning the longest matching route prefix.
type Router struct {
	APIPrefix string
	routes    []Route
	proxies   map[string]*httputil.ReverseProxy
}

func NewRouter(apiPrefix string, routes []Route) *Router {
	proxies := make(map[string]*httputil.ReverseProxy, len(routes))
	for _, rt := range routes {
		proxies[rt.Prefix] = httputil.NewSingleHostReverseProxy(rt.Target)
	}

	return &Router{
		APIPrefix: apiPrefix,
		routes:    routes,
		proxies:   proxies,
	}
}

// StripAPIPrefix removes the public prefix ("/api" by default) before route
// matching. Requests outside the prefix are rejected rather than forwarded.
func (rt *Router) StripAPIPrefix() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rt.APIPrefix == "" {
				next.ServeHTTP(w, r)
				return
			}

			stripped := strings.TrimPrefix(r.URL.Path, rt.APIPrefix)
			if stripped == r.URL.Path || !strings.HasPrefix(stripped, "/") {
				http.NotFound(w, r)
				return
			}

			r.URL.Path = stripped
			if r.URL.RawPath != "" {
				r.URL.RawPath = strings.TrimPrefix(r.URL.RawPath, rt.APIPrefix)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for _, route := range rt.routes {
		if strings.HasPrefix(r.URL.Path, route.Prefix) {
			rt.proxies[route.Prefix].ServeHTTP(w, r)
			return
		}
	}
	http.NotFound(w, r)
}
