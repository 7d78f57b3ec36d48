package step

import (
	"errors"
	"testing"
)

func TestNewID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "valid simple ID",
			input:   "pacman:install:git",
			wantErr: nil,
		},
		{
			name:    "valid with underscores",
			input:   "files:ini:kwinrc_Windows",
			wantErr: nil,
		},
		{
			name:    "valid with hyphens",
			input:   "zypper:install:patterns-devel",
			wantErr: nil,
		},
		{
			name:    "valid with dots and slashes",
			input:   "files:copy:etc/udev/rules.d/99-backlight.rules",
			wantErr: nil,
		},
		{
			name:    "valid unit name with @",
			input:   "systemd:unit:getty@tty2.service",
			wantErr: nil,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: ErrEmptyID,
		},
		{
			name:    "whitespace only",
			input:   "   ",
			wantErr: ErrEmptyID,
		},
		{
			name:    "contains spaces",
			input:   "pacman install git",
			wantErr: ErrInvalidID,
		},
		{
			name:    "starts with colon",
			input:   ":install:git",
			wantErr: ErrInvalidID,
		},
		{
			name:    "ends with colon",
			input:   "pacman:install:",
			wantErr: ErrInvalidID,
		},
		{
			name:    "segment starts with punctuation",
			input:   "files:copy:-dotfile",
			wantErr: ErrInvalidID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewID(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewID(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewID(%q) unexpected error: %v", tt.input, err)
			}
			if id.IsZero() {
				t.Errorf("NewID(%q) returned zero ID", tt.input)
			}
		})
	}
}

func TestID_Provider(t *testing.T) {
	id := MustNewID("systemd:unit:fstrim.timer")
	if got := id.Provider(); got != "systemd" {
		t.Errorf("Provider() = %q, want %q", got, "systemd")
	}
}

func TestID_Equals(t *testing.T) {
	a := MustNewID("pacman:install:git")
	b := MustNewID("pacman:install:git")
	c := MustNewID("pacman:install:vim")

	if !a.Equals(b) {
		t.Error("expected identical IDs to be equal")
	}
	if a.Equals(c) {
		t.Error("expected different IDs to be unequal")
	}
}

func TestMustNewID_PanicsOnInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid ID")
		}
	}()
	MustNewID(":bad:")
}
