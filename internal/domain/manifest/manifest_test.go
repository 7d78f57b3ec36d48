package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provis-dev/provision/internal/domain/step"
)

const fullManifest = `
version: 1
defaults:
  policy: warn
require:
  - binary: git
    min_version: "2.40"
pacman:
  packages:
    - base-devel
    - name: docker
      policy: fatal
aur:
  helper: paru
  packages:
    - spotify
zypper:
  packages:
    - name: patterns-devel
systemd:
  units:
    - name: docker.service
      start: true
    - name: fstrim.timer
      enable: false
      start: true
files:
  ini:
    - path: ~/.config/kwinrc
      section: Windows
      keys:
        FocusPolicy: FocusFollowsMouse
  copies:
    - source: ./rules/99-backlight.rules
      dest: /etc/udev/rules.d/99-backlight.rules
      mode: "0644"
      confirm: true
groups:
  memberships:
    - group: docker
    - user: alice
      group: wireshark
      policy: warn
`

func TestParse_FullManifest(t *testing.T) {
	t.Parallel()

	m, err := Parse([]byte(fullManifest))
	require.NoError(t, err)

	assert.Equal(t, step.PolicyWarn, m.DefaultPolicy())
	require.Len(t, m.Require, 1)
	assert.Equal(t, "2.40", m.Require[0].MinVersion)

	require.Len(t, m.Pacman.Packages, 2)
	assert.Equal(t, "base-devel", m.Pacman.Packages[0].Name)
	assert.Empty(t, m.Pacman.Packages[0].Policy)
	assert.Equal(t, "docker", m.Pacman.Packages[1].Name)
	assert.Equal(t, "fatal", m.Pacman.Packages[1].Policy)

	assert.Equal(t, "paru", m.AUR.Helper)
	require.Len(t, m.Systemd.Units, 2)
	assert.True(t, m.Systemd.Units[0].ShouldEnable())
	assert.False(t, m.Systemd.Units[1].ShouldEnable())
	assert.True(t, m.Systemd.Units[1].Start)

	require.Len(t, m.Files.Ini, 1)
	assert.Equal(t, "FocusFollowsMouse", m.Files.Ini[0].Keys["FocusPolicy"])
	require.Len(t, m.Files.Copies, 1)
	assert.True(t, m.Files.Copies[0].Confirm)

	require.Len(t, m.Groups.Memberships, 2)
	assert.Empty(t, m.Groups.Memberships[0].User)
	assert.Equal(t, "alice", m.Groups.Memberships[1].User)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("version: 1\npacmen:\n  packages: [git]\n"))
	assert.ErrorIs(t, err, ErrInvalidManifest)
}

func TestParse_RejectsUnsupportedVersion(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("version: 2\n"))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "bad default policy",
			yaml: "version: 1\ndefaults:\n  policy: ignore\n",
		},
		{
			name: "require without binary",
			yaml: "version: 1\nrequire:\n  - min_version: \"1.0\"\n",
		},
		{
			name: "package without name",
			yaml: "version: 1\npacman:\n  packages:\n    - policy: warn\n",
		},
		{
			name: "unit without name",
			yaml: "version: 1\nsystemd:\n  units:\n    - start: true\n",
		},
		{
			name: "ini without keys",
			yaml: "version: 1\nfiles:\n  ini:\n    - path: /tmp/x\n      section: Main\n",
		},
		{
			name: "copy without dest",
			yaml: "version: 1\nfiles:\n  copies:\n    - source: ./x\n",
		},
		{
			name: "membership without group",
			yaml: "version: 1\ngroups:\n  memberships:\n    - user: alice\n",
		},
		{
			name: "bad item policy",
			yaml: "version: 1\npacman:\n  packages:\n    - name: git\n      policy: maybe\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/provision.yaml")
	assert.ErrorIs(t, err, ErrManifestNotFound)
}
