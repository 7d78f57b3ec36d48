// Package manifest defines the declarative provisioning manifest.
//
// The manifest lists what the machine should have — packages, enabled
// units, patched config files, group memberships — and providers
// compile it into ordered steps. Every item may override the failure
// policy; the default comes from the manifest, which itself defaults
// to fatal.
package manifest

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/provis-dev/provision/internal/domain/step"
)

// SchemaVersion is the supported manifest format version.
const SchemaVersion = 1

// Manifest errors.
var (
	ErrUnsupportedVersion = errors.New("unsupported manifest version")
	ErrInvalidManifest    = errors.New("invalid manifest")
)

// Manifest is the parsed provisioning manifest.
type Manifest struct {
	Version  int            `yaml:"version"`
	Defaults Defaults       `yaml:"defaults"`
	Require  []Requirement  `yaml:"require"`
	Pacman   PackageSection `yaml:"pacman"`
	AUR      AURSection     `yaml:"aur"`
	Zypper   PackageSection `yaml:"zypper"`
	Systemd  SystemdSection `yaml:"systemd"`
	Files    FilesSection   `yaml:"files"`
	Groups   GroupsSection  `yaml:"groups"`
}

// Defaults holds manifest-wide defaults.
type Defaults struct {
	Policy string `yaml:"policy"`
}

// DefaultPolicy returns the manifest-wide failure policy.
func (m *Manifest) DefaultPolicy() step.FailurePolicy {
	policy, err := step.ParsePolicy(m.Defaults.Policy, step.PolicyFatal)
	if err != nil {
		return step.PolicyFatal
	}
	return policy
}

// Requirement is a precondition: a binary that must be present,
// optionally at a minimum version.
type Requirement struct {
	Binary      string `yaml:"binary"`
	MinVersion  string `yaml:"min_version"`
	VersionFlag string `yaml:"version_flag"`
	Policy      string `yaml:"policy"`
}

// PackageEntry names a package to install. In YAML it may be written
// as a bare string or as a mapping with a policy override.
type PackageEntry struct {
	Name   string `yaml:"name"`
	Policy string `yaml:"policy"`
}

// UnmarshalYAML accepts either a scalar package name or a mapping.
func (e *PackageEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.Name = node.Value
		return nil
	}

	type raw PackageEntry
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	*e = PackageEntry(r)
	return nil
}

// PackageSection lists packages for a native package manager.
type PackageSection struct {
	Packages []PackageEntry `yaml:"packages"`
}

// AURSection lists AUR packages and the helper to install them with.
type AURSection struct {
	Helper   string         `yaml:"helper"`
	Packages []PackageEntry `yaml:"packages"`
}

// UnitEntry describes a systemd unit to enable and/or start.
type UnitEntry struct {
	Name   string `yaml:"name"`
	Enable *bool  `yaml:"enable"`
	Start  bool   `yaml:"start"`
	Policy string `yaml:"policy"`
}

// ShouldEnable returns whether the unit should be enabled.
// Enabling is the default; set enable: false for start-only units.
func (u UnitEntry) ShouldEnable() bool {
	return u.Enable == nil || *u.Enable
}

// SystemdSection lists systemd units.
type SystemdSection struct {
	Units []UnitEntry `yaml:"units"`
}

// IniEntry patches keys inside one section of an INI-style file.
type IniEntry struct {
	Path    string            `yaml:"path"`
	Section string            `yaml:"section"`
	Keys    map[string]string `yaml:"keys"`
	Policy  string            `yaml:"policy"`
}

// CopyEntry installs a file at a destination, backing up any previous
// content first. Confirm asks before overwriting an existing file.
type CopyEntry struct {
	Source  string `yaml:"source"`
	Dest    string `yaml:"dest"`
	Mode    string `yaml:"mode"`
	Confirm bool   `yaml:"confirm"`
	Policy  string `yaml:"policy"`
}

// FilesSection lists file operations.
type FilesSection struct {
	Ini    []IniEntry  `yaml:"ini"`
	Copies []CopyEntry `yaml:"copies"`
}

// Membership adds a user to a group. An empty user means the invoking
// user, collected via prompt when interactive.
type Membership struct {
	User   string `yaml:"user"`
	Group  string `yaml:"group"`
	Policy string `yaml:"policy"`
}

// GroupsSection lists group memberships.
type GroupsSection struct {
	Memberships []Membership `yaml:"memberships"`
}

// Validate checks structural invariants and policy strings.
func (m *Manifest) Validate() error {
	if m.Version != SchemaVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, m.Version, SchemaVersion)
	}
	if _, err := step.ParsePolicy(m.Defaults.Policy, step.PolicyFatal); err != nil {
		return fmt.Errorf("%w: defaults: %w", ErrInvalidManifest, err)
	}

	for i, req := range m.Require {
		if req.Binary == "" {
			return fmt.Errorf("%w: require[%d]: binary is required", ErrInvalidManifest, i)
		}
		if err := validPolicy(req.Policy); err != nil {
			return fmt.Errorf("%w: require[%d]: %w", ErrInvalidManifest, i, err)
		}
	}
	if err := validPackages("pacman", m.Pacman.Packages); err != nil {
		return err
	}
	if err := validPackages("zypper", m.Zypper.Packages); err != nil {
		return err
	}
	if err := validPackages("aur", m.AUR.Packages); err != nil {
		return err
	}
	for i, unit := range m.Systemd.Units {
		if unit.Name == "" {
			return fmt.Errorf("%w: systemd.units[%d]: name is required", ErrInvalidManifest, i)
		}
		if err := validPolicy(unit.Policy); err != nil {
			return fmt.Errorf("%w: systemd.units[%d]: %w", ErrInvalidManifest, i, err)
		}
	}
	for i, entry := range m.Files.Ini {
		if entry.Path == "" || entry.Section == "" {
			return fmt.Errorf("%w: files.ini[%d]: path and section are required", ErrInvalidManifest, i)
		}
		if len(entry.Keys) == 0 {
			return fmt.Errorf("%w: files.ini[%d]: at least one key is required", ErrInvalidManifest, i)
		}
		if err := validPolicy(entry.Policy); err != nil {
			return fmt.Errorf("%w: files.ini[%d]: %w", ErrInvalidManifest, i, err)
		}
	}
	for i, entry := range m.Files.Copies {
		if entry.Source == "" || entry.Dest == "" {
			return fmt.Errorf("%w: files.copies[%d]: source and dest are required", ErrInvalidManifest, i)
		}
		if err := validPolicy(entry.Policy); err != nil {
			return fmt.Errorf("%w: files.copies[%d]: %w", ErrInvalidManifest, i, err)
		}
	}
	for i, membership := range m.Groups.Memberships {
		if membership.Group == "" {
			return fmt.Errorf("%w: groups.memberships[%d]: group is required", ErrInvalidManifest, i)
		}
		if err := validPolicy(membership.Policy); err != nil {
			return fmt.Errorf("%w: groups.memberships[%d]: %w", ErrInvalidManifest, i, err)
		}
	}

	return nil
}

func validPolicy(value string) error {
	_, err := step.ParsePolicy(value, step.PolicyFatal)
	return err
}

func validPackages(section string, entries []PackageEntry) error {
	for i, entry := range entries {
		if entry.Name == "" {
			return fmt.Errorf("%w: %s.packages[%d]: name is required", ErrInvalidManifest, section, i)
		}
		if err := validPolicy(entry.Policy); err != nil {
			return fmt.Errorf("%w: %s.packages[%d]: %w", ErrInvalidManifest, section, i, err)
		}
	}
	return nil
}
