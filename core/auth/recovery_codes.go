package auth

import (
	"encoding/base32"
	"errors"
	"strings"

	"clipper-mock/core/utils"
)

var ErrInvalidRecoveryCode = errors.New("invalid recovery code")

// RecoveryCodeLength is the canonical code length. Verification endpoints
// use it to tell recovery codes apart from 6-digit authenticator codes.
const RecoveryCodeLength = 8

func NormalizeRecoveryCode(raw string) string {
	val := strings.ToUpper(strings.TrimSpace(raw))
	val = strings.ReplaceAll(val, " ", "")
	val = strings.ReplaceAll(val, "-", "")
	return val
}

func GenerateRecoveryCodes(count int) ([]string, error) {
	if count <= 0 {
		count = 10
	}
	out := make([]string, 0, count)
	seen := make(map[string]bool, count)
	for len(out) < count {
		code, err := generateRecoveryCode()
		if err != nil {
			return nil, err
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out, nil
}

func generateRecoveryCode() (string, error) {
	// 8 base32 chars -> 40 bits, enough for one-time codes.
	buf, err := utils.RandBytes(5)
	if err != nil {
		return "", err
	}
	raw := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf)
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if len(raw) < RecoveryCodeLength {
		return "", errors.New("recovery code generation failed")
	}
	return raw[:RecoveryCodeLength], nil
}
