package discovery

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// vendorMarker identifies game-related registry entries.
	vendorMarker = "wuthering"
	// clientExe is the shipping client binary launched by every launcher.
	clientExe = "client-win64-shipping.exe"
	// clientExeStem is matched against firewall rules, which may omit ".exe".
	clientExeStem = "client-win64-shipping"
)

// Registry locations read by the sources.
const (
	muiCacheKey  = `Software\Classes\Local Settings\Software\Microsoft\Windows\Shell\MuiCache`
	firewallKey  = `SYSTEM\CurrentControlSet\Services\SharedAccess\Parameters\FirewallPolicy\FirewallRules`
	uninstallKey = `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`
	uninstallWOW = `SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`
)

// clientSegment is the "Client" folder between the install root and the
// client binary, e.g. D:\Wuthering Waves Game\Client\Binaries\Win64\...
var clientSegment = regexp.MustCompile(`(?i)[\\/]client[\\/]`)

// Source yields candidate installation roots from one OS signal.
type Source interface {
	Name() string
	Discover() []string
}

// splitClientRoot returns the part of an executable path before the first
// "Client" folder segment.
func splitClientRoot(exePath string) (string, bool) {
	loc := clientSegment.FindStringIndex(exePath)
	if loc == nil {
		return "", false
	}
	return exePath[:loc[0]], true
}

// -- MUI cache --

// MuiCacheSource reads the per-user cache of recently run GUI binaries.
// Value names are "<exe path>.FriendlyAppName" and values the display name.
type MuiCacheSource struct {
	reg Registry
	log zerolog.Logger
}

// NewMuiCacheSource creates a MUI cache source.
func NewMuiCacheSource(reg Registry, log zerolog.Logger) *MuiCacheSource {
	return &MuiCacheSource{reg: reg, log: log}
}

func (s *MuiCacheSource) Name() string { return "mui-cache" }

func (s *MuiCacheSource) Discover() []string {
	values, err := s.reg.Values(CurrentUser, muiCacheKey)
	if err != nil {
		s.log.Debug().Err(err).Msg("mui cache unavailable")
		return nil
	}

	var roots []string
	for _, v := range values {
		if !strings.Contains(strings.ToLower(v.Data), vendorMarker) ||
			!strings.Contains(strings.ToLower(v.Name), clientExe) {
			continue
		}
		if root, ok := splitClientRoot(v.Name); ok {
			roots = append(roots, root)
		}
	}
	return roots
}

// -- Firewall rules --

// FirewallSource reads the Windows Firewall rule list. Each rule is a
// pipe-delimited string such as "v2.30|Action=Allow|App=C:\...\x.exe|Name=...|".
type FirewallSource struct {
	reg Registry
	log zerolog.Logger
}

// NewFirewallSource creates a firewall rule source.
func NewFirewallSource(reg Registry, log zerolog.Logger) *FirewallSource {
	return &FirewallSource{reg: reg, log: log}
}

func (s *FirewallSource) Name() string { return "firewall" }

func (s *FirewallSource) Discover() []string {
	values, err := s.reg.Values(LocalMachine, firewallKey)
	if err != nil {
		s.log.Debug().Err(err).Msg("firewall rules unavailable")
		return nil
	}

	var roots []string
	for _, v := range values {
		rule := strings.ToLower(v.Data)
		if !strings.Contains(rule, vendorMarker) || !strings.Contains(rule, clientExeStem) {
			continue
		}
		if root, ok := firewallAppRoot(rule); ok {
			roots = append(roots, root)
		}
	}
	return roots
}

// firewallAppRoot splits the first app= token of a lowercased rule.
// Later app= tokens are ignored even if the first one does not split.
func firewallAppRoot(rule string) (string, bool) {
	for _, part := range strings.Split(rule, "|") {
		if !strings.HasPrefix(part, "app=") {
			continue
		}
		return splitClientRoot(strings.TrimPrefix(part, "app="))
	}
	return "", false
}

// -- Uninstall registry --

// UninstallSource reads InstallPath from the launcher's uninstall entries,
// in both the native and the WOW64 view.
type UninstallSource struct {
	reg Registry
	log zerolog.Logger
}

// NewUninstallSource creates an installed-applications source.
func NewUninstallSource(reg Registry, log zerolog.Logger) *UninstallSource {
	return &UninstallSource{reg: reg, log: log}
}

func (s *UninstallSource) Name() string { return "uninstall" }

func (s *UninstallSource) Discover() []string {
	var roots []string

	for _, base := range []string{uninstallKey, uninstallWOW} {
		subkeys, err := s.reg.SubKeys(LocalMachine, base)
		if err != nil {
			s.log.Debug().Err(err).Str("key", base).Msg("uninstall key unavailable")
			continue
		}

		for _, sub := range subkeys {
			path := base + `\` + sub

			name, _ := s.reg.StringValue(LocalMachine, path, "DisplayName")
			if !strings.Contains(strings.ToLower(name), vendorMarker) {
				continue
			}

			installPath, _ := s.reg.StringValue(LocalMachine, path, "InstallPath")
			if installPath == "" {
				continue
			}
			roots = append(roots, installPath)
		}
	}
	return roots
}

// -- Common install folders --

// DefaultCommonPaths are drive-relative default install folders of the
// standalone launcher, the Epic Games launcher and WeGame.
var DefaultCommonPaths = []string{
	"Wuthering Waves Game",
	"Wuthering Waves/Wuthering Waves Game",
	"Games/Wuthering Waves Game",
	"Games/Wuthering Waves/Wuthering Waves Game",
	"Program Files/Epic Games/WutheringWavesj3oFh",
	"Program Files/Epic Games/WutheringWavesj3oFh/Wuthering Waves Game",
	"Games/WeGameApps/rail_apps/Wuthering Waves(2002137)",
	"WeGameApps/rail_apps/Wuthering Waves(2002137)",
}

const driveLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// CommonPathSource probes every drive letter for well-known install folders.
type CommonPathSource struct {
	templates []string
	exists    func(path string) bool
}

// NewCommonPathSource creates a drive-scan source over DefaultCommonPaths
// followed by extra. Templates use forward slashes.
func NewCommonPathSource(extra []string) *CommonPathSource {
	templates := make([]string, 0, len(DefaultCommonPaths)+len(extra))
	templates = append(templates, DefaultCommonPaths...)
	templates = append(templates, extra...)
	return &CommonPathSource{templates: templates, exists: pathExists}
}

func (s *CommonPathSource) Name() string { return "common-paths" }

func (s *CommonPathSource) Discover() []string {
	var roots []string
	for _, drive := range driveLetters {
		driveRoot := string(drive) + ":/"
		if !s.exists(driveRoot) {
			continue
		}

		for _, tmpl := range s.templates {
			full := filepath.Join(driveRoot, filepath.FromSlash(tmpl))
			if s.exists(full) {
				roots = append(roots, full)
			}
		}
	}
	return roots
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Default returns the four sources in scan order.
func Default(reg Registry, extraPaths []string, log zerolog.Logger) []Source {
	return []Source{
		NewMuiCacheSource(reg, log),
		NewFirewallSource(reg, log),
		NewUninstallSource(reg, log),
		NewCommonPathSource(extraPaths),
	}
}
