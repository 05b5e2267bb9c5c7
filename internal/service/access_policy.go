package service

import "strings"

// AccessPolicy decide que emails pueden autenticarse.
// Con ambas listas vacias se permite cualquier email.
type AccessPolicy struct {
	domains map[string]struct{}
	emails  map[string]struct{}
}

func NewAccessPolicy(allowedDomains, allowedEmails []string) *AccessPolicy {
	p := &AccessPolicy{
		domains: make(map[string]struct{}),
		emails:  make(map[string]struct{}),
	}
	for _, d := range allowedDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			p.domains[d] = struct{}{}
		}
	}
	for _, e := range allowedEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			p.emails[e] = struct{}{}
		}
	}
	return p
}

// IsAllowed evalua el email contra las listas configuradas.
func (p *AccessPolicy) IsAllowed(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	if len(p.domains) == 0 && len(p.emails) == 0 {
		return true
	}
	if _, ok := p.emails[email]; ok {
		return true
	}
	// El dominio es lo que sigue al primer "@".
	if at := strings.Index(email, "@"); at >= 0 {
		if _, ok := p.domains[email[at+1:]]; ok {
			return true
		}
	}
	return false
}
