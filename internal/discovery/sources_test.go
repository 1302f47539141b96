package discovery

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRegistry serves values and subkeys from maps keyed by "HIVE\path".
type fakeRegistry struct {
	values  map[string][]Value
	subkeys map[string][]string
	strings map[string]map[string]string
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		values:  map[string][]Value{},
		subkeys: map[string][]string{},
		strings: map[string]map[string]string{},
	}
}

var errMissing = errors.New("key not found")

func fakeKey(root Root, path string) string { return root.String() + `\` + path }

func (f *fakeRegistry) Values(root Root, path string) ([]Value, error) {
	v, ok := f.values[fakeKey(root, path)]
	if !ok {
		return nil, errMissing
	}
	return v, nil
}

func (f *fakeRegistry) SubKeys(root Root, path string) ([]string, error) {
	v, ok := f.subkeys[fakeKey(root, path)]
	if !ok {
		return nil, errMissing
	}
	return v, nil
}

func (f *fakeRegistry) StringValue(root Root, path, name string) (string, error) {
	v, ok := f.strings[fakeKey(root, path)][name]
	if !ok {
		return "", errMissing
	}
	return v, nil
}

func (f *fakeRegistry) setString(root Root, path, name, value string) {
	k := fakeKey(root, path)
	if f.strings[k] == nil {
		f.strings[k] = map[string]string{}
	}
	f.strings[k][name] = value
}

func TestSplitClientRoot(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{`D:\Wuthering Waves Game\Client\Binaries\Win64\Client-Win64-Shipping.exe`, `D:\Wuthering Waves Game`, true},
		{`d:/games/ww/client/binaries/win64/client-win64-shipping.exe`, `d:/games/ww`, true},
		{`E:\WW\CLIENT/Binaries\x.exe`, `E:\WW`, true},
		{`C:\Clients\Client-Win64-Shipping.exe`, "", false},
		{`Client-Win64-Shipping.exe`, "", false},
	}
	for _, tt := range tests {
		got, ok := splitClientRoot(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestMuiCacheSource(t *testing.T) {
	reg := newFakeRegistry()
	reg.values[fakeKey(CurrentUser, muiCacheKey)] = []Value{
		{Name: `D:\Wuthering Waves Game\Client\Binaries\Win64\Client-Win64-Shipping.exe.FriendlyAppName`, Data: "Wuthering Waves"},
		{Name: `C:\Other\Client\Binaries\Win64\Client-Win64-Shipping.exe.FriendlyAppName`, Data: "Some Other Game"},
		{Name: `C:\Program Files\Notepad\notepad.exe.FriendlyAppName`, Data: "Wuthering notes"},
		{Name: `E:\Client-Win64-Shipping.exe.FriendlyAppName`, Data: "WUTHERING WAVES"},
	}

	roots := NewMuiCacheSource(reg, zerolog.Nop()).Discover()

	assert.Equal(t, []string{`D:\Wuthering Waves Game`}, roots)
}

func TestMuiCacheSource_Unavailable(t *testing.T) {
	roots := NewMuiCacheSource(newFakeRegistry(), zerolog.Nop()).Discover()
	assert.Empty(t, roots)
}

func TestFirewallSource(t *testing.T) {
	reg := newFakeRegistry()
	reg.values[fakeKey(LocalMachine, firewallKey)] = []Value{
		{Name: "TCP Query User{A}", Data: `v2.31|Action=Allow|Active=TRUE|Dir=In|Protocol=6|App=F:\Wuthering Waves\Wuthering Waves Game\Client\Binaries\Win64\Client-Win64-Shipping.exe|Name=Wuthering Waves|`},
		{Name: "Other", Data: `v2.31|Action=Allow|App=C:\Tools\tool.exe|Name=tool|`},
		{Name: "Two apps", Data: `v2.31|App=G:\noclientdir\wuthering\Client-Win64-Shipping.exe|App=H:\WW\Client\Client-Win64-Shipping.exe|`},
	}

	roots := NewFirewallSource(reg, zerolog.Nop()).Discover()

	// Rule text is lowercased before splitting; only the first app= counts
	assert.Equal(t, []string{`f:\wuthering waves\wuthering waves game`}, roots)
}

func TestFirewallAppRoot(t *testing.T) {
	root, ok := firewallAppRoot(`v2.31|action=allow|app=c:\ww\client\binaries\client-win64-shipping.exe|name=x`)
	require.True(t, ok)
	assert.Equal(t, `c:\ww`, root)

	_, ok = firewallAppRoot(`v2.31|action=allow|name=wuthering`)
	assert.False(t, ok)
}

func TestUninstallSource(t *testing.T) {
	reg := newFakeRegistry()
	reg.subkeys[fakeKey(LocalMachine, uninstallKey)] = []string{"KRInstall Wuthering Waves", "Notepad++", "Broken"}
	reg.subkeys[fakeKey(LocalMachine, uninstallWOW)] = []string{"WW32"}

	reg.setString(LocalMachine, uninstallKey+`\KRInstall Wuthering Waves`, "DisplayName", "Wuthering Waves")
	reg.setString(LocalMachine, uninstallKey+`\KRInstall Wuthering Waves`, "InstallPath", `D:\Wuthering Waves`)
	reg.setString(LocalMachine, uninstallKey+`\Notepad++`, "DisplayName", "Notepad++")
	reg.setString(LocalMachine, uninstallKey+`\Notepad++`, "InstallPath", `C:\Program Files\Notepad++`)
	reg.setString(LocalMachine, uninstallKey+`\Broken`, "DisplayName", "wuthering waves (broken)")
	reg.setString(LocalMachine, uninstallWOW+`\WW32`, "DisplayName", "WUTHERING WAVES")
	reg.setString(LocalMachine, uninstallWOW+`\WW32`, "InstallPath", `E:\WW`)

	roots := NewUninstallSource(reg, zerolog.Nop()).Discover()

	assert.Equal(t, []string{`D:\Wuthering Waves`, `E:\WW`}, roots)
}

func TestUninstallSource_OneViewMissing(t *testing.T) {
	reg := newFakeRegistry()
	reg.subkeys[fakeKey(LocalMachine, uninstallWOW)] = []string{"WW"}
	reg.setString(LocalMachine, uninstallWOW+`\WW`, "DisplayName", "Wuthering Waves")
	reg.setString(LocalMachine, uninstallWOW+`\WW`, "InstallPath", `E:\WW`)

	roots := NewUninstallSource(reg, zerolog.Nop()).Discover()

	assert.Equal(t, []string{`E:\WW`}, roots)
}

func TestCommonPathSource(t *testing.T) {
	existing := map[string]bool{"C:/": true, "D:/": true}
	for _, p := range []string{
		filepath.Join("C:/", "Games", "Wuthering Waves Game"),
		filepath.Join("D:/", "WeGameApps", "rail_apps", "Wuthering Waves(2002137)"),
		filepath.Join("D:/", "Custom", "WW"),
		// drive root missing
		filepath.Join("Z:/", "Wuthering Waves Game"),
	} {
		existing[p] = true
	}

	src := NewCommonPathSource([]string{"Custom/WW"})
	src.exists = func(p string) bool { return existing[p] }

	roots := src.Discover()

	assert.Equal(t, []string{
		filepath.Join("C:/", "Games", "Wuthering Waves Game"),
		filepath.Join("D:/", "WeGameApps", "rail_apps", "Wuthering Waves(2002137)"),
		filepath.Join("D:/", "Custom", "WW"),
	}, roots)
}

func TestCommonPathSource_DefaultTemplates(t *testing.T) {
	src := NewCommonPathSource(nil)
	assert.Len(t, src.templates, 8)
	assert.Equal(t, "common-paths", src.Name())
}

func TestDefaultOrder(t *testing.T) {
	sources := Default(newFakeRegistry(), nil, zerolog.Nop())

	var names []string
	for _, s := range sources {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"mui-cache", "firewall", "uninstall", "common-paths"}, names)
}
