package tenant

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Resolver extracts a tenant identifier from an HTTP request. An empty
// string with a nil error means the request carries no tenant.
type Resolver interface {
	Resolve(r *http.Request) (string, error)
}

// ResolverFunc adapts a plain function to the Resolver interface.
type ResolverFunc func(r *http.Request) (string, error)

func (f ResolverFunc) Resolve(r *http.Request) (string, error) { return f(r) }

// SubdomainResolver reads the tenant identifier from the request
// subdomain, e.g. "acme" from "acme.nabi.app".
type SubdomainResolver struct {
	// Suffix is the base domain to strip, e.g. ".nabi.app".
	Suffix string
}

// NewSubdomainResolver creates a resolver for the given base domain suffix.
func NewSubdomainResolver(suffix string) *SubdomainResolver {
	return &SubdomainResolver{Suffix: suffix}
}

func (sr *SubdomainResolver) Resolve(r *http.Request) (string, error) {
	host := r.Host
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}

	// A bare domain or www is not a tenant.
	if len(strings.Split(host, ".")) < 3 {
		return "", nil
	}
	if sr.Suffix != "" {
		if !strings.HasSuffix(host, sr.Suffix) {
			return "", nil
		}
		host = strings.TrimSuffix(host, sr.Suffix)
	}

	sub := strings.Split(host, ".")[0]
	if sub == "www" || sub == "" {
		return "", nil
	}
	return sub, nil
}

// HeaderResolver reads the tenant identifier from an HTTP header.
// Intended for internal service-to-service traffic, not public requests.
type HeaderResolver struct {
	HeaderName string
}

// NewHeaderResolver creates a header resolver, defaulting to X-Tenant-ID.
func NewHeaderResolver(headerName string) *HeaderResolver {
	if headerName == "" {
		headerName = "X-Tenant-ID"
	}
	return &HeaderResolver{HeaderName: headerName}
}

func (hr *HeaderResolver) Resolve(r *http.Request) (string, error) {
	return r.Header.Get(hr.HeaderName), nil
}

// PathResolver reads the tenant identifier from a chi route parameter,
// e.g. the {tenant} in /t/{tenant}/companies.
type PathResolver struct {
	Param string
}

// NewPathResolver creates a resolver for the given chi URL parameter name.
func NewPathResolver(param string) *PathResolver {
	if param == "" {
		param = "tenant"
	}
	return &PathResolver{Param: param}
}

func (pr *PathResolver) Resolve(r *http.Request) (string, error) {
	return chi.URLParam(r, pr.Param), nil
}
