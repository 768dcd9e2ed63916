package types

import "testing"

func TestValidateTarget(t *testing.T) {
	tests := []struct {
		target  string
		kind    TargetKind
		wantErr bool
	}{
		{"8.8.8.8", TargetIP, false},
		{"2001:4860:4860::8888", TargetIP, false},
		{"google.com", TargetHostname, false},
		{"sub.domain-with-dash.example", TargetHostname, false},
		{"trailing.dot.example.", TargetHostname, false},
		{"  8.8.8.8  ", TargetIP, false},
		{"", TargetUnknown, true},
		{"   ", TargetUnknown, true},
		{"not a host!", TargetUnknown, true},
		{"-leading-dash.example", TargetUnknown, true},
		{"trailing-dash-.example", TargetUnknown, true},
		{"under_score.example", TargetUnknown, true},
	}
	for _, tt := range tests {
		kind, err := ValidateTarget(tt.target)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateTarget(%q) error = %v, wantErr %v", tt.target, err, tt.wantErr)
			continue
		}
		if kind != tt.kind {
			t.Errorf("ValidateTarget(%q) kind = %s, want %s", tt.target, kind, tt.kind)
		}
	}
}

func TestValidateTarget_LengthLimits(t *testing.T) {
	longLabel := make([]byte, 64)
	for i := range longLabel {
		longLabel[i] = 'a'
	}
	if _, err := ValidateTarget(string(longLabel) + ".example"); err == nil {
		t.Error("expected 64-char label to be rejected")
	}
	if _, err := ValidateTarget(string(longLabel[:63]) + ".example"); err != nil {
		t.Errorf("63-char label should be valid: %v", err)
	}
}

func TestValidateTargets_PartitionsAndPreservesOrder(t *testing.T) {
	valid, errs := ValidateTargets([]string{"8.8.8.8", "bad target", " google.com ", ""})
	if len(valid) != 2 || valid[0] != "8.8.8.8" || valid[1] != "google.com" {
		t.Errorf("unexpected valid list: %v", valid)
	}
	if len(errs) != 2 {
		t.Errorf("expected 2 errors, got %v", errs)
	}
}
