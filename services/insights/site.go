package insights

import (
	"fmt"
	"sort"
)

// Site names one property pair the assistant can answer questions
// about.
type Site struct {
	Name        string `json:"name"`
	GA4Property string `json:"ga4_property"`
	GSCSiteURL  string `json:"gsc_site_url"`
}

// SitesConfig is the shape of the sites config file.
type SitesConfig struct {
	Default string `json:"default"`
	Sites   []Site `json:"sites"`
}

// Registry holds one assistant per site and picks one per request by
// name. The first registered site is the fallback until SetDefault
// overrides it.
type Registry struct {
	services map[string]*Service
	fallback string
}

func NewRegistry() *Registry {
	return &Registry{services: map[string]*Service{}}
}

func (r *Registry) Register(name string, svc *Service) {
	if r.fallback == "" {
		r.fallback = name
	}
	r.services[name] = svc
}

func (r *Registry) SetDefault(name string) error {
	_, ok := r.services[name]
	if !ok {
		return fmt.Errorf("unknown site: %s", name)
	}
	r.fallback = name
	return nil
}

// Get returns the assistant for a site, the default one when name is
// empty.
func (r *Registry) Get(name string) (*Service, error) {
	if name == "" {
		name = r.fallback
	}
	svc, ok := r.services[name]
	if !ok {
		return nil, fmt.Errorf("unknown site: %s", name)
	}
	return svc, nil
}

func (r *Registry) Default() *Service {
	svc := r.services[r.fallback]
	return svc
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
