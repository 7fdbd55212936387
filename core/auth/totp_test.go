package auth

import (
	"strings"
	"testing"
	"time"
)

func TestComputeAndVerifyTOTP(t *testing.T) {
	secret, err := GenerateTOTPSecret()
	if err != nil {
		t.Fatalf("generate secret: %v", err)
	}
	cfg := DefaultTOTPConfig()
	now := time.Unix(1700000000, 0)
	code, err := ComputeTOTPCode(secret, now, cfg)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}
	ok, err := VerifyTOTP(secret, code, now, cfg)
	if err != nil || !ok {
		t.Fatalf("expected code to verify, ok=%v err=%v", ok, err)
	}
	// One period earlier still verifies inside the skew window.
	ok, err = VerifyTOTP(secret, code, now.Add(30*time.Second), cfg)
	if err != nil || !ok {
		t.Fatalf("expected code to verify within skew, ok=%v err=%v", ok, err)
	}
	// Two periods out falls outside skew=1.
	ok, _ = VerifyTOTP(secret, code, now.Add(90*time.Second), cfg)
	if ok {
		t.Fatalf("expected code to fail outside skew window")
	}
}

func TestVerifyTOTPRejectsMalformedInput(t *testing.T) {
	secret, _ := GenerateTOTPSecret()
	cfg := DefaultTOTPConfig()
	now := time.Now()
	for _, code := range []string{"", "12345", "1234567", "abcdef"} {
		if ok, _ := VerifyTOTP(secret, code, now, cfg); ok {
			t.Fatalf("expected %q to fail verification", code)
		}
	}
	if _, err := VerifyTOTP("not-base32!!", "123456", now, cfg); err == nil {
		t.Fatalf("expected invalid secret error")
	}
}

func TestProvisioningURI(t *testing.T) {
	uri := BuildTOTPProvisioningURI("Clipper", "teststreamer", "JBSWY3DPEHPK3PXP")
	if !strings.HasPrefix(uri, "otpauth://totp/Clipper:teststreamer?") {
		t.Fatalf("unexpected uri prefix: %s", uri)
	}
	for _, frag := range []string{"secret=JBSWY3DPEHPK3PXP", "issuer=Clipper", "algorithm=SHA1", "digits=6", "period=30"} {
		if !strings.Contains(uri, frag) {
			t.Fatalf("uri missing %q: %s", frag, uri)
		}
	}
}
