package step

import "testing"

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		fallback FailurePolicy
		want     FailurePolicy
		wantErr  bool
	}{
		{name: "fatal", input: "fatal", fallback: PolicyWarn, want: PolicyFatal},
		{name: "warn", input: "warn", fallback: PolicyFatal, want: PolicyWarn},
		{name: "empty uses fallback", input: "", fallback: PolicyWarn, want: PolicyWarn},
		{name: "unknown", input: "ignore", fallback: PolicyFatal, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePolicy(tt.input, tt.fallback)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePolicy(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePolicy(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParsePolicy(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFailurePolicy_Valid(t *testing.T) {
	if !PolicyFatal.Valid() || !PolicyWarn.Valid() {
		t.Error("expected known policies to be valid")
	}
	if FailurePolicy("ignore").Valid() {
		t.Error("expected unknown policy to be invalid")
	}
}

func TestStatus_Satisfied(t *testing.T) {
	if !StatusSatisfied.Satisfied() {
		t.Error("satisfied should be satisfied")
	}
	if StatusNeedsApply.Satisfied() || StatusUnknown.Satisfied() {
		t.Error("needs-apply and unknown should not be satisfied")
	}
}
