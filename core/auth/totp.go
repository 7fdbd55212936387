package auth

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidTOTPSecret = errors.New("invalid totp secret")

// TOTPConfig carries the RFC 6238 parameters. Skew is how many adjacent
// time steps verification accepts on each side of the current one.
type TOTPConfig struct {
	PeriodSec int64
	Digits    int
	Skew      int64
}

func DefaultTOTPConfig() TOTPConfig {
	return TOTPConfig{PeriodSec: 30, Digits: 6, Skew: 1}
}

// NormalizeTOTPCode strips the spacing authenticator apps display
// between digit groups.
func NormalizeTOTPCode(raw string) string {
	return strings.TrimSpace(strings.ReplaceAll(raw, " ", ""))
}

// VerifyTOTP checks a code against the secret using real TOTP arithmetic.
// The mock verification path never calls this; it exists for the totp-code
// CLI command and for callers that want authenticator-app compatibility.
func VerifyTOTP(secretBase32 string, code string, now time.Time, cfg TOTPConfig) (bool, error) {
	secret, err := decodeTOTPSecret(secretBase32)
	if err != nil {
		return false, err
	}
	code = NormalizeTOTPCode(code)
	digits := totpDigits(cfg)
	if len(code) != digits {
		return false, nil
	}
	if _, err := strconv.Atoi(code); err != nil {
		return false, nil
	}
	counter := totpCounter(now, cfg)
	skew := cfg.Skew
	if skew < 0 {
		skew = 0
	}
	for i := -skew; i <= skew; i++ {
		if hotpCode(secret, counter+i, digits) == code {
			return true, nil
		}
	}
	return false, nil
}

// ComputeTOTPCode returns the code an authenticator app would show for
// the secret at the given instant.
func ComputeTOTPCode(secretBase32 string, now time.Time, cfg TOTPConfig) (string, error) {
	secret, err := decodeTOTPSecret(secretBase32)
	if err != nil {
		return "", err
	}
	return hotpCode(secret, totpCounter(now, cfg), totpDigits(cfg)), nil
}

func totpCounter(now time.Time, cfg TOTPConfig) int64 {
	step := cfg.PeriodSec
	if step <= 0 {
		step = 30
	}
	return now.UTC().Unix() / step
}

func totpDigits(cfg TOTPConfig) int {
	if cfg.Digits <= 0 {
		return 6
	}
	return cfg.Digits
}

// decodeTOTPSecret accepts the loose base32 users paste: mixed case,
// spaces, dashes, no padding. Secrets under 80 bits are rejected.
func decodeTOTPSecret(secretBase32 string) ([]byte, error) {
	val := strings.ToUpper(strings.TrimSpace(secretBase32))
	val = strings.NewReplacer(" ", "", "-", "").Replace(val)
	if val == "" {
		return nil, ErrInvalidTOTPSecret
	}
	b, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(val)
	if err != nil || len(b) < 10 {
		return nil, ErrInvalidTOTPSecret
	}
	return b, nil
}

// hotpCode is RFC 4226 dynamic truncation over HMAC-SHA1.
func hotpCode(secret []byte, counter int64, digits int) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))
	mac := hmac.New(sha1.New, secret)
	_, _ = mac.Write(msg[:])
	sum := mac.Sum(nil)
	offset := sum[len(sum)-1] & 0x0f
	bin := (int(sum[offset])&0x7f)<<24 |
		(int(sum[offset+1])&0xff)<<16 |
		(int(sum[offset+2])&0xff)<<8 |
		(int(sum[offset+3]) & 0xff)
	mod := 1
	for i := 0; i < digits; i++ {
		mod *= 10
	}
	return fmt.Sprintf("%0*d", digits, bin%mod)
}
