package model

import (
	"fmt"
)

type factoryFunc func(cfg ProviderConfig) Provider

var factories = map[string]factoryFunc{}

// RegisterFactory wires a provider type name to its constructor. Provider
// subpackages call this from init.
func RegisterFactory(typ string, f func(cfg ProviderConfig) Provider) {
	factories[typ] = factoryFunc(f)
}

// NewProvider builds the configured backend. Unknown types fail at startup,
// not at request time.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	f, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
	return f(cfg), nil
}

var _ Provider = ProviderFunc(nil)
