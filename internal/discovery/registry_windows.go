//go:build windows

package discovery

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

type windowsRegistry struct{}

// NewRegistry returns the live Windows registry.
func NewRegistry() Registry {
	return windowsRegistry{}
}

func hive(root Root) registry.Key {
	if root == CurrentUser {
		return registry.CURRENT_USER
	}
	return registry.LOCAL_MACHINE
}

func (windowsRegistry) Values(root Root, path string) ([]Value, error) {
	k, err := registry.OpenKey(hive(root), path, registry.READ)
	if err != nil {
		return nil, fmt.Errorf("opening %s\\%s: %w", root, path, err)
	}
	defer k.Close()

	names, err := k.ReadValueNames(-1)
	if err != nil {
		return nil, fmt.Errorf("listing values of %s\\%s: %w", root, path, err)
	}

	values := make([]Value, 0, len(names))
	for _, name := range names {
		data, _, err := k.GetStringValue(name)
		if err != nil {
			continue
		}
		values = append(values, Value{Name: name, Data: data})
	}
	return values, nil
}

func (windowsRegistry) SubKeys(root Root, path string) ([]string, error) {
	k, err := registry.OpenKey(hive(root), path, registry.READ)
	if err != nil {
		return nil, fmt.Errorf("opening %s\\%s: %w", root, path, err)
	}
	defer k.Close()

	names, err := k.ReadSubKeyNames(-1)
	if err != nil {
		return nil, fmt.Errorf("listing subkeys of %s\\%s: %w", root, path, err)
	}
	return names, nil
}

func (windowsRegistry) StringValue(root Root, path, name string) (string, error) {
	k, err := registry.OpenKey(hive(root), path, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("opening %s\\%s: %w", root, path, err)
	}
	defer k.Close()

	s, _, err := k.GetStringValue(name)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return s, nil
}
