package tenant

import "strings"

// mainDomainLabel is never a tenant slug; www.<domain> serves the main site.
const mainDomainLabel = "www"

// Resolver extracts the tenant slug from a request host. LocalAlias is the
// single-label development host (acme.localhost resolves to "acme" even
// though the host only has two labels).
type Resolver struct {
	LocalAlias string
}

func NewResolver() Resolver {
	return Resolver{LocalAlias: "localhost"}
}

// Subdomain returns the tenant slug for the host and whether one was found.
//
//	acme.lvh.me:3000  -> "acme"
//	www.hintboard.io  -> none
//	lvh.me:3000       -> none
//	acme.localhost    -> "acme"
//	localhost:8080    -> none
func (r Resolver) Subdomain(host string) (string, bool) {
	hostname := host
	if i := strings.IndexByte(hostname, ':'); i >= 0 {
		hostname = hostname[:i]
	}
	hostname = strings.ToLower(strings.TrimSpace(hostname))
	if hostname == "" {
		return "", false
	}

	labels := strings.Split(hostname, ".")
	if labels[0] == mainDomainLabel {
		return "", false
	}
	switch {
	case len(labels) == 2 && labels[1] == r.LocalAlias:
		return labels[0], true
	case len(labels) >= 3:
		return labels[0], true
	default:
		return "", false
	}
}
