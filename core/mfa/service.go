package mfa

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clipper-mock/core/auth"
	"clipper-mock/core/store"
	"clipper-mock/core/utils"
)

var (
	ErrNotEnrolled     = errors.New("mfa not enrolled")
	ErrAlreadyEnabled  = errors.New("mfa already enabled")
	ErrNoPending       = errors.New("no pending mfa enrollment")
	ErrInvalidCode     = errors.New("invalid mfa code")
	ErrInvalidPassword = errors.New("invalid password")
	ErrLockedOut       = errors.New("mfa locked out")
)

// FieldError marks a validation failure attributable to one request field.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string { return e.Msg }

type Config struct {
	// ExpectedCode is the fixed code that passes verification. Real TOTP
	// arithmetic is never consulted on the verification path.
	ExpectedCode      string
	MaxAttempts       int
	LockoutDuration   time.Duration
	RecoveryCodeCount int
	Issuer            string
}

func (c Config) withDefaults() Config {
	if c.ExpectedCode == "" {
		c.ExpectedCode = "123456"
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = time.Hour
	}
	if c.RecoveryCodeCount <= 0 {
		c.RecoveryCodeCount = 10
	}
	if c.Issuer == "" {
		c.Issuer = "Clipper"
	}
	return c
}

type Service struct {
	users  store.UserStore
	states store.MFAStore
	cfg    Config
	logger *utils.Logger
	now    func() time.Time
}

func NewService(users store.UserStore, states store.MFAStore, cfg Config, logger *utils.Logger) *Service {
	return &Service{
		users:  users,
		states: states,
		cfg:    cfg.withDefaults(),
		logger: logger,
		now:    time.Now,
	}
}

type Enrollment struct {
	Secret          string
	ProvisioningURI string
	RecoveryCodes   []string
}

// Enroll starts (or restarts) enrollment: fresh secret, fresh recovery
// codes. Nothing is enabled until the pending secret is verified.
func (s *Service) Enroll(ctx context.Context, userID string) (*Enrollment, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.MFAEnabled {
		return nil, ErrAlreadyEnabled
	}
	secret, err := auth.GenerateTOTPSecret()
	if err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	codes, err := auth.GenerateRecoveryCodes(s.cfg.RecoveryCodeCount)
	if err != nil {
		return nil, fmt.Errorf("generate recovery codes: %w", err)
	}
	st := &store.MFAState{
		UserID:                 userID,
		PendingSecret:          secret,
		RecoveryCodes:          codes,
		RemainingRecoveryCodes: len(codes),
		RemainingAttempts:      s.cfg.MaxAttempts,
		MaxAttempts:            s.cfg.MaxAttempts,
	}
	if err := s.states.Put(ctx, st); err != nil {
		return nil, err
	}
	s.logger.Printf("MFA enroll started user=%s", userID)
	return &Enrollment{
		Secret:          secret,
		ProvisioningURI: auth.BuildTOTPProvisioningURI(s.cfg.Issuer, u.Username, secret),
		RecoveryCodes:   codes,
	}, nil
}

// VerifyEnrollment confirms the pending secret and enables MFA.
func (s *Service) VerifyEnrollment(ctx context.Context, userID, code string) error {
	st, err := s.states.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoPending
		}
		return err
	}
	if st.PendingSecret == "" {
		return ErrNoPending
	}
	if !s.codeMatches(st, code) {
		return ErrInvalidCode
	}
	st.Secret = st.PendingSecret
	st.PendingSecret = ""
	st.Enabled = true
	st.RemainingAttempts = st.MaxAttempts
	if err := s.states.Put(ctx, st); err != nil {
		return err
	}
	if err := s.users.SetMFAEnabled(ctx, userID, true); err != nil {
		return err
	}
	s.logger.Printf("MFA enabled user=%s", userID)
	return nil
}

type VerifyResult struct {
	OK                     bool
	UsedRecoveryCode       bool
	RemainingAttempts      int
	RemainingRecoveryCodes int
	LockedUntil            *time.Time
}

// Verify checks a challenge code during login. Codes of recovery length
// take the recovery path; anything else must equal the expected code.
// Failures count down the attempt budget; exhausting it locks the account
// for the configured duration.
func (s *Service) Verify(ctx context.Context, userID, code string) (*VerifyResult, error) {
	st, err := s.enabledState(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if st.Locked(now) {
		return &VerifyResult{LockedUntil: st.LockedUntil, RemainingAttempts: st.RemainingAttempts}, ErrLockedOut
	}
	code = auth.NormalizeTOTPCode(code)
	if len(code) == auth.RecoveryCodeLength {
		if res, ok, err := s.consumeRecoveryCode(ctx, st, code); err != nil || ok {
			return res, err
		}
		// Unknown recovery code falls through and burns an attempt.
	} else if s.codeMatches(st, code) {
		st.RemainingAttempts = st.MaxAttempts
		st.LockedUntil = nil
		if err := s.states.Put(ctx, st); err != nil {
			return nil, err
		}
		return &VerifyResult{
			OK:                     true,
			RemainingAttempts:      st.RemainingAttempts,
			RemainingRecoveryCodes: st.RemainingRecoveryCodes,
		}, nil
	}
	return s.recordFailure(ctx, st, now)
}

// UseRecoveryCode redeems a recovery code outside the attempt budget.
// The budget counter drops; the code list itself is not mutated, so
// single-use enforcement stays out of scope.
func (s *Service) UseRecoveryCode(ctx context.Context, userID, code string) (*VerifyResult, error) {
	st, err := s.enabledState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if st.Locked(s.now().UTC()) {
		return &VerifyResult{LockedUntil: st.LockedUntil}, ErrLockedOut
	}
	res, ok, err := s.consumeRecoveryCode(ctx, st, auth.NormalizeRecoveryCode(code))
	if err != nil {
		return nil, err
	}
	if !ok {
		return &VerifyResult{
			RemainingAttempts:      st.RemainingAttempts,
			RemainingRecoveryCodes: st.RemainingRecoveryCodes,
		}, ErrInvalidCode
	}
	return res, nil
}

// RegenerateRecoveryCodes replaces the whole set after re-verification.
func (s *Service) RegenerateRecoveryCodes(ctx context.Context, userID, code string) ([]string, error) {
	st, err := s.enabledState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !s.codeMatches(st, auth.NormalizeTOTPCode(code)) {
		return nil, ErrInvalidCode
	}
	codes, err := auth.GenerateRecoveryCodes(s.cfg.RecoveryCodeCount)
	if err != nil {
		return nil, err
	}
	st.RecoveryCodes = codes
	st.RemainingRecoveryCodes = len(codes)
	if err := s.states.Put(ctx, st); err != nil {
		return nil, err
	}
	s.logger.Printf("MFA recovery codes regenerated user=%s", userID)
	return codes, nil
}

// Disable tears MFA down. Both the account password and a valid code are
// required; a missing field fails with a FieldError naming it.
func (s *Service) Disable(ctx context.Context, userID, password, code string) error {
	if password == "" {
		return &FieldError{Field: "password", Msg: "Password is required"}
	}
	if code == "" {
		return &FieldError{Field: "code", Msg: "MFA code is required"}
	}
	st, err := s.enabledState(ctx, userID)
	if err != nil {
		return err
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	ok, err := auth.VerifyPassword(password, &auth.PasswordHash{Hash: u.PasswordHash, Salt: u.PasswordSalt})
	if err != nil || !ok {
		return ErrInvalidPassword
	}
	if !s.codeMatches(st, auth.NormalizeTOTPCode(code)) {
		return ErrInvalidCode
	}
	if err := s.states.Delete(ctx, userID); err != nil {
		return err
	}
	if err := s.users.SetMFAEnabled(ctx, userID, false); err != nil {
		return err
	}
	s.logger.Printf("MFA disabled user=%s", userID)
	return nil
}

type Status struct {
	Enabled                bool
	PendingEnrollment      bool
	RemainingAttempts      int
	RemainingRecoveryCodes int
	LockedUntil            *time.Time
}

func (s *Service) Status(ctx context.Context, userID string) (*Status, error) {
	st, err := s.states.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &Status{}, nil
		}
		return nil, err
	}
	return &Status{
		Enabled:                st.Enabled,
		PendingEnrollment:      st.PendingSecret != "",
		RemainingAttempts:      st.RemainingAttempts,
		RemainingRecoveryCodes: st.RemainingRecoveryCodes,
		LockedUntil:            st.LockedUntil,
	}, nil
}

// SweepExpiredLockouts clears lapsed lockouts and restores attempt budgets.
func (s *Service) SweepExpiredLockouts(ctx context.Context) (int, error) {
	states, err := s.states.All(ctx)
	if err != nil {
		return 0, err
	}
	now := s.now().UTC()
	cleared := 0
	for _, st := range states {
		if st.LockedUntil == nil || st.Locked(now) {
			continue
		}
		st.LockedUntil = nil
		st.RemainingAttempts = st.MaxAttempts
		if err := s.states.Put(ctx, st); err != nil {
			return cleared, err
		}
		cleared++
	}
	return cleared, nil
}

func (s *Service) enabledState(ctx context.Context, userID string) (*store.MFAState, error) {
	st, err := s.states.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}
	if !st.Enabled {
		return nil, ErrNotEnrolled
	}
	return st, nil
}

func (s *Service) codeMatches(st *store.MFAState, code string) bool {
	expected := st.ExpectedCode
	if expected == "" {
		expected = s.cfg.ExpectedCode
	}
	return utils.ConstantTimeEquals([]byte(code), []byte(expected))
}

func (s *Service) consumeRecoveryCode(ctx context.Context, st *store.MFAState, code string) (*VerifyResult, bool, error) {
	member := false
	for _, c := range st.RecoveryCodes {
		if utils.ConstantTimeEquals([]byte(c), []byte(code)) {
			member = true
		}
	}
	if !member || st.RemainingRecoveryCodes <= 0 {
		return nil, false, nil
	}
	st.RemainingRecoveryCodes--
	st.RemainingAttempts = st.MaxAttempts
	st.LockedUntil = nil
	if err := s.states.Put(ctx, st); err != nil {
		return nil, false, err
	}
	return &VerifyResult{
		OK:                     true,
		UsedRecoveryCode:       true,
		RemainingAttempts:      st.RemainingAttempts,
		RemainingRecoveryCodes: st.RemainingRecoveryCodes,
	}, true, nil
}

func (s *Service) recordFailure(ctx context.Context, st *store.MFAState, now time.Time) (*VerifyResult, error) {
	st.RemainingAttempts--
	if st.RemainingAttempts <= 0 {
		st.RemainingAttempts = 0
		until := now.Add(s.cfg.LockoutDuration)
		st.LockedUntil = &until
		if err := s.states.Put(ctx, st); err != nil {
			return nil, err
		}
		s.logger.Printf("MFA lockout user=%s until=%s", st.UserID, until.Format(time.RFC3339))
		return &VerifyResult{RemainingAttempts: 0, LockedUntil: &until}, ErrLockedOut
	}
	if err := s.states.Put(ctx, st); err != nil {
		return nil, err
	}
	return &VerifyResult{
		RemainingAttempts:      st.RemainingAttempts,
		RemainingRecoveryCodes: st.RemainingRecoveryCodes,
	}, ErrInvalidCode
}
