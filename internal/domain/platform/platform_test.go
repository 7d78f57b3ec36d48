package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOSRelease(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    Distro
	}{
		{
			name:    "arch",
			content: "NAME=\"Arch Linux\"\nID=arch\n",
			want:    DistroArch,
		},
		{
			name:    "endeavouros via ID_LIKE",
			content: "NAME=\"EndeavourOS\"\nID=endeavouros\nID_LIKE=arch\n",
			want:    DistroArch,
		},
		{
			name:    "tumbleweed",
			content: "NAME=\"openSUSE Tumbleweed\"\nID=\"opensuse-tumbleweed\"\nID_LIKE=\"opensuse suse\"\n",
			want:    DistroOpenSUSE,
		},
		{
			name:    "leap",
			content: "ID=\"opensuse-leap\"\nID_LIKE=\"suse opensuse\"\n",
			want:    DistroOpenSUSE,
		},
		{
			name:    "debian is unsupported",
			content: "ID=debian\n",
			want:    DistroUnknown,
		},
		{
			name:    "empty",
			content: "",
			want:    DistroUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, parseOSRelease(tt.content))
		})
	}
}

func TestNativePackageManager(t *testing.T) {
	t.Parallel()

	kind, ok := New(DistroArch, "amd64").NativePackageManager()
	assert.True(t, ok)
	assert.Equal(t, PkgPacman, kind)

	kind, ok = New(DistroOpenSUSE, "amd64").NativePackageManager()
	assert.True(t, ok)
	assert.Equal(t, PkgZypper, kind)

	_, ok = New(DistroUnknown, "amd64").NativePackageManager()
	assert.False(t, ok)
}

func TestSetTestPlatform(t *testing.T) {
	SetTestPlatform(New(DistroArch, "arm64"))
	defer SetTestPlatform(nil)

	p := Detect()
	assert.True(t, p.IsArch())
	assert.Equal(t, "arm64", p.Arch())
	assert.Equal(t, "arch/arm64", p.String())
}
