//go:build !windows

package discovery

import "errors"

// ErrNoRegistry is returned by every lookup on platforms without a registry.
var ErrNoRegistry = errors.New("registry not available on this platform")

type noRegistry struct{}

// NewRegistry returns a registry that has no keys. The registry-backed
// sources then yield nothing and only the drive scan contributes.
func NewRegistry() Registry {
	return noRegistry{}
}

func (noRegistry) Values(Root, string) ([]Value, error) {
	return nil, ErrNoRegistry
}

func (noRegistry) SubKeys(Root, string) ([]string, error) {
	return nil, ErrNoRegistry
}

func (noRegistry) StringValue(Root, string, string) (string, error) {
	return "", ErrNoRegistry
}
