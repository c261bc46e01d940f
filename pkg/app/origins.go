package app

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultEnvironment is the only deployment environment with a known origin
// list. Other environments fall back to it.
const DefaultEnvironment = "local"

// OriginPolicy enumerates allowed origins per deployment environment and the
// rest of the cross-origin policy.
type OriginPolicy struct {
	Protocols   []string
	Domains     map[string][]string
	Headers     []string
	Credentials bool
	MaxAge      int
}

// DefaultOriginPolicy is the static policy the service ships with.
func DefaultOriginPolicy() OriginPolicy {
	return OriginPolicy{
		Protocols: []string{"http://", "https://"},
		Domains: map[string][]string{
			DefaultEnvironment: {"localhost", "127.0.0.1"},
		},
		Headers: []string{
			"Origin", "X-Requested-With", "Content-Type",
			"Accept", "Authorization", "If-None-Match",
		},
		Credentials: true,
		MaxAge:      600,
	}
}

func (p OriginPolicy) domains(env string) []string {
	if d, ok := p.Domains[env]; ok {
		return d
	}
	return p.Domains[DefaultEnvironment]
}

// Origins expands protocols x domains for env. The result is rebuilt on every
// call and contains no duplicates.
func (p OriginPolicy) Origins(env string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, proto := range p.Protocols {
		for _, domain := range p.domains(env) {
			origin := proto + domain
			if _, dup := seen[origin]; dup {
				continue
			}
			seen[origin] = struct{}{}
			out = append(out, origin)
		}
	}
	return out
}

// Matcher compiles the origins for env into a predicate. An origin matches
// when it is one of the listed scheme+host pairs, with any port.
func (p OriginPolicy) Matcher(env string) (func(origin string) bool, error) {
	origins := p.Origins(env)
	if len(origins) == 0 {
		return nil, fmt.Errorf("no allowed origins for environment %q", env)
	}

	patterns := make([]*regexp.Regexp, 0, len(origins))
	for _, o := range origins {
		scheme, host, ok := strings.Cut(o, "://")
		if !ok || scheme == "" || host == "" || strings.ContainsAny(host, "/ ") {
			return nil, fmt.Errorf("invalid origin %q", o)
		}
		re, err := regexp.Compile("^" + regexp.QuoteMeta(scheme+"://"+host) + `(:[0-9]+)?$`)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, re)
	}

	return func(origin string) bool {
		for _, re := range patterns {
			if re.MatchString(origin) {
				return true
			}
		}
		return false
	}, nil
}
