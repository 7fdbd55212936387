package utils

import "testing"

func TestValidateChannelName(t *testing.T) {
	valid := []string{"teststreamer", "Test_Streamer", "abc123", "A", "_"}
	for _, name := range valid {
		if err := ValidateChannelName(name); err != nil {
			t.Fatalf("expected %q to be valid: %v", name, err)
		}
	}
	invalid := []string{"", "invalid-channel!", "has space", "semi;colon", "../etc/passwd", "name/with/slash", "ümlaut"}
	for _, name := range invalid {
		if err := ValidateChannelName(name); err == nil {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	if err := ValidateUsername("mod_user"); err != nil {
		t.Fatalf("expected valid username: %v", err)
	}
	for _, name := range []string{"ab", "way_too_long_for_a_twitch_login_name", "bad-dash"} {
		if err := ValidateUsername(name); err == nil {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("hunter2hunter2"); err != nil {
		t.Fatalf("expected valid password: %v", err)
	}
	if err := ValidatePassword("short"); err == nil {
		t.Fatalf("expected short password to be rejected")
	}
	if err := ValidatePassword("has space in it"); err == nil {
		t.Fatalf("expected whitespace password to be rejected")
	}
}
