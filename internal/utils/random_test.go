package utils

import (
	"strings"
	"testing"
)

func TestGenerateReferralCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		code := GenerateReferralCode(8)

		if len(code) != 8 {
			t.Fatalf("code %q has length %d, want 8", code, len(code))
		}
		if code != strings.ToUpper(code) {
			t.Errorf("code %q is not uppercase", code)
		}
		for _, confusable := range []string{"0", "O", "I", "L"} {
			if strings.Contains(code, confusable) {
				t.Errorf("code %q contains confusable character %s", code, confusable)
			}
		}
		seen[code] = true
	}

	// 100 draws over a 36^8 space colliding down to a handful would mean
	// the generator is broken.
	if len(seen) < 95 {
		t.Errorf("only %d distinct codes out of 100", len(seen))
	}
}

func TestGenerateReferralCode_DefaultLength(t *testing.T) {
	code := GenerateReferralCode(0)
	if len(code) != ReferralCodeLength {
		t.Errorf("length = %d, want default %d", len(code), ReferralCodeLength)
	}
}
