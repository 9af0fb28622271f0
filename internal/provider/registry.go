package provider

import "fmt"

// Registry is an ordered list of providers.
type Registry []Provider

// Find returns the first provider that supports address.
func (r Registry) Find(address string) (Provider, error) {
	for _, p := range r {
		if p.Supports(address) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, address)
}

// Names lists the registered provider names.
func (r Registry) Names() []string {
	names := make([]string, len(r))
	for i, p := range r {
		names[i] = p.Name()
	}
	return names
}
