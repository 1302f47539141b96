package discovery

// Root selects a predefined registry hive.
type Root int

const (
	CurrentUser Root = iota
	LocalMachine
)

// String returns the conventional hive abbreviation.
func (r Root) String() string {
	switch r {
	case CurrentUser:
		return "HKCU"
	case LocalMachine:
		return "HKLM"
	default:
		return "HK?"
	}
}

// Value is one named registry value rendered as text.
type Value struct {
	Name string
	Data string
}

// Registry is the read-only view of the registry the sources need.
// Values skips entries whose data is not a string type.
type Registry interface {
	Values(root Root, path string) ([]Value, error)
	SubKeys(root Root, path string) ([]string, error)
	StringValue(root Root, path, name string) (string, error)
}
