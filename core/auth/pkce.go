package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"clipper-mock/core/utils"
)

// CodeChallengeMethodS256 is the only method the mock provider advertises.
const CodeChallengeMethodS256 = "S256"

// GenerateCodeVerifier returns a 43-char URL-safe verifier (RFC 7636 minimum).
func GenerateCodeVerifier() (string, error) {
	buf, err := utils.RandBytes(32)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func ChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(verifier)))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// VerifierMatchesChallenge reports whether the verifier hashes to the
// challenge. Mock token exchange only requires a verifier to be present;
// this exists for callers that opt into strict PKCE checking.
func VerifierMatchesChallenge(verifier, challenge, method string) bool {
	verifier = strings.TrimSpace(verifier)
	challenge = strings.TrimSpace(challenge)
	if verifier == "" || challenge == "" {
		return false
	}
	switch strings.ToUpper(strings.TrimSpace(method)) {
	case "", CodeChallengeMethodS256:
		return utils.ConstantTimeEquals([]byte(ChallengeS256(verifier)), []byte(challenge))
	case "PLAIN":
		return utils.ConstantTimeEquals([]byte(verifier), []byte(challenge))
	default:
		return false
	}
}
