// Package platform detects the host distribution and selects the
// package manager once at startup.
package platform

import (
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// Distro represents the detected Linux distribution family.
type Distro string

const (
	// DistroArch is Arch Linux and derivatives (EndeavourOS, Manjaro).
	DistroArch Distro = "arch"
	// DistroOpenSUSE is openSUSE Leap or Tumbleweed.
	DistroOpenSUSE Distro = "opensuse"
	// DistroUnknown is an unsupported distribution.
	DistroUnknown Distro = "unknown"
)

// PackageManagerKind is the closed set of supported package managers.
// The kind is selected once at startup and passed explicitly; there is
// no string-keyed dispatch at call sites.
type PackageManagerKind string

const (
	// PkgPacman is the Arch Linux package manager.
	PkgPacman PackageManagerKind = "pacman"
	// PkgZypper is the openSUSE package manager.
	PkgZypper PackageManagerKind = "zypper"
	// PkgAURHelper is a pacman-compatible AUR helper (paru, yay).
	PkgAURHelper PackageManagerKind = "aur-helper"
)

// Platform contains detected host information.
type Platform struct {
	distro   Distro
	arch     string
	hostname string
}

var (
	detected     *Platform
	detectOnce   sync.Once
	testPlatform *Platform // For testing
)

// Detect returns the current platform information.
// Results are cached after the first call.
func Detect() *Platform {
	if testPlatform != nil {
		return testPlatform
	}

	detectOnce.Do(func() {
		detected = detect()
	})
	return detected
}

// SetTestPlatform sets a mock platform for testing.
// Pass nil to reset to actual detection.
func SetTestPlatform(p *Platform) {
	testPlatform = p
}

func detect() *Platform {
	p := &Platform{
		distro: DistroUnknown,
		arch:   runtime.GOARCH,
	}

	if hostname, err := os.Hostname(); err == nil {
		p.hostname = hostname
	}

	data, err := os.ReadFile("/etc/os-release")
	if err != nil {
		return p
	}
	p.distro = parseOSRelease(string(data))

	return p
}

// parseOSRelease maps os-release ID / ID_LIKE fields to a Distro.
func parseOSRelease(content string) Distro {
	var id, idLike string
	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.HasPrefix(line, "ID="):
			id = strings.Trim(strings.TrimPrefix(line, "ID="), "\"")
		case strings.HasPrefix(line, "ID_LIKE="):
			idLike = strings.Trim(strings.TrimPrefix(line, "ID_LIKE="), "\"")
		}
	}

	haystack := strings.ToLower(id + " " + idLike)
	switch {
	case strings.Contains(haystack, "arch"):
		return DistroArch
	case strings.Contains(haystack, "suse"):
		return DistroOpenSUSE
	}
	return DistroUnknown
}

// Distro returns the detected distribution family.
func (p *Platform) Distro() Distro {
	return p.distro
}

// Arch returns the CPU architecture.
func (p *Platform) Arch() string {
	return p.arch
}

// Hostname returns the host name.
func (p *Platform) Hostname() string {
	return p.hostname
}

// IsArch returns true on Arch Linux and derivatives.
func (p *Platform) IsArch() bool {
	return p.distro == DistroArch
}

// IsOpenSUSE returns true on openSUSE.
func (p *Platform) IsOpenSUSE() bool {
	return p.distro == DistroOpenSUSE
}

// NativePackageManager returns the distribution's package manager kind.
// The second return is false on an unsupported distribution.
func (p *Platform) NativePackageManager() (PackageManagerKind, bool) {
	switch p.distro {
	case DistroArch:
		return PkgPacman, true
	case DistroOpenSUSE:
		return PkgZypper, true
	}
	return "", false
}

// HasCommand checks if a command is available in PATH.
func (p *Platform) HasCommand(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// String returns a human-readable description.
func (p *Platform) String() string {
	return string(p.distro) + "/" + p.arch
}

// New creates a Platform with specified values (for testing).
func New(distro Distro, arch string) *Platform {
	return &Platform{distro: distro, arch: arch}
}
