package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"
)

func TestAskYesNo(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		defaultNo bool
		want      bool
	}{
		{"empty default no", "\n", true, false},
		{"empty default yes", "\n", false, true},
		{"eof default no", "", true, false},
		{"eof default yes", "", false, true},
		{"whitespace only", "   \n", false, true},
		{"y default no", "y\n", true, true},
		{"y default yes", "y\n", false, true},
		{"y padded", "  y \n", true, true},
		{"y without newline", "y", true, true},
		{"upper Y", "Y\n", false, false},
		{"yes", "yes\n", false, false},
		{"n", "n\n", false, false},
		{"no", "no\n", true, false},
		{"garbage", "maybe\n", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := askYesNo(strings.NewReader(tt.input), &out, "Continue?", tt.defaultNo)
			if err != nil {
				t.Fatalf("askYesNo() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("askYesNo(%q, defaultNo=%v) = %v, want %v", tt.input, tt.defaultNo, got, tt.want)
			}
		})
	}
}

func TestAskYesNoPromptSuffix(t *testing.T) {
	var out bytes.Buffer
	if _, err := askYesNo(strings.NewReader("\n"), &out, "Delete?", true); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "Delete? [y/N] " {
		t.Errorf("prompt = %q", got)
	}

	out.Reset()
	if _, err := askYesNo(strings.NewReader("\n"), &out, "Delete?", false); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "Delete? [Y/n] " {
		t.Errorf("prompt = %q", got)
	}
}

func TestAskYesNoReadError(t *testing.T) {
	boom := errors.New("boom")
	_, err := askYesNo(iotest.ErrReader(boom), &bytes.Buffer{}, "Continue?", true)
	if !errors.Is(err, boom) {
		t.Errorf("askYesNo() error = %v, want %v", err, boom)
	}
}
