package mfa

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"clipper-mock/core/auth"
	"clipper-mock/core/store"
	"clipper-mock/core/utils"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st := store.New()
	svc := NewService(st.Users, st.MFA, Config{
		ExpectedCode:      "123456",
		MaxAttempts:       5,
		LockoutDuration:   time.Hour,
		RecoveryCodeCount: 10,
		Issuer:            "Clipper",
	}, utils.NewTestLogger())
	return svc, st
}

func seedUser(t *testing.T, st *store.Store, username string) *store.User {
	t.Helper()
	hash := auth.MustHashPassword("correct-horse-battery")
	u := &store.User{
		Username:     username,
		PasswordHash: hash.Hash,
		PasswordSalt: hash.Salt,
	}
	id, err := st.Users.Seed(context.Background(), u)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	u.ID = id
	return u
}

func enrollAndVerify(t *testing.T, svc *Service, userID string) *Enrollment {
	t.Helper()
	enr, err := svc.Enroll(context.Background(), userID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if err := svc.VerifyEnrollment(context.Background(), userID, "123456"); err != nil {
		t.Fatalf("verify enrollment: %v", err)
	}
	return enr
}

func TestEnrollIssuesSecretAndRecoveryCodes(t *testing.T) {
	svc, st := newTestService(t)
	u := seedUser(t, st, "alice")

	enr, err := svc.Enroll(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if enr.Secret == "" {
		t.Fatal("expected a secret")
	}
	if !strings.HasPrefix(enr.ProvisioningURI, "otpauth://totp/") {
		t.Fatalf("unexpected provisioning URI %q", enr.ProvisioningURI)
	}
	if !strings.Contains(enr.ProvisioningURI, "alice") || !strings.Contains(enr.ProvisioningURI, "Clipper") {
		t.Fatalf("URI missing account or issuer: %q", enr.ProvisioningURI)
	}
	if len(enr.RecoveryCodes) != 10 {
		t.Fatalf("expected 10 recovery codes, got %d", len(enr.RecoveryCodes))
	}
	for _, c := range enr.RecoveryCodes {
		if len(c) != auth.RecoveryCodeLength {
			t.Fatalf("recovery code %q has length %d", c, len(c))
		}
	}

	status, err := svc.Status(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Enabled || !status.PendingEnrollment {
		t.Fatalf("expected pending enrollment, got %+v", status)
	}
}

func TestEnrollTwiceRotatesSecret(t *testing.T) {
	svc, st := newTestService(t)
	u := seedUser(t, st, "alice")

	first, err := svc.Enroll(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("first enroll: %v", err)
	}
	second, err := svc.Enroll(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("second enroll: %v", err)
	}
	if first.Secret == second.Secret {
		t.Fatal("expected a fresh secret on re-enroll")
	}
}

func TestEnrollRejectedWhenAlreadyEnabled(t *testing.T) {
	svc, st := newTestService(t)
	u := seedUser(t, st, "alice")
	enrollAndVerify(t, svc, u.ID)

	if _, err := svc.Enroll(context.Background(), u.ID); !errors.Is(err, ErrAlreadyEnabled) {
		t.Fatalf("expected ErrAlreadyEnabled, got %v", err)
	}
}

func TestVerifyEnrollment(t *testing.T) {
	svc, st := newTestService(t)
	u := seedUser(t, st, "alice")

	if err := svc.VerifyEnrollment(context.Background(), u.ID, "123456"); !errors.Is(err, ErrNoPending) {
		t.Fatalf("expected ErrNoPending before enroll, got %v", err)
	}

	if _, err := svc.Enroll(context.Background(), u.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if err := svc.VerifyEnrollment(context.Background(), u.ID, "000000"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if err := svc.VerifyEnrollment(context.Background(), u.ID, "123456"); err != nil {
		t.Fatalf("verify enrollment: %v", err)
	}

	got, err := st.Users.Get(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if !got.MFAEnabled {
		t.Fatal("user record should be flagged MFA-enabled")
	}
	status, _ := svc.Status(context.Background(), u.ID)
	if !status.Enabled || status.PendingEnrollment {
		t.Fatalf("expected enabled status, got %+v", status)
	}
}

func TestVerifyAcceptsExpectedCode(t *testing.T) {
	svc, st := newTestService(t)
	u := seedUser(t, st, "alice")
	enrollAndVerify(t, svc, u.ID)

	res, err := svc.Verify(context.Background(), u.ID, "123456")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !res.OK || res.UsedRecoveryCode {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.RemainingAttempts != 5 {
		t.Fatalf("expected full attempt budget, got %d", res.RemainingAttempts)
	}
}

func TestVerifyHonorsPerUserExpectedCode(t *testing.T) {
	svc, st := newTestService(t)
	u := seedUser(t, st, "alice")
	enrollAndVerify(t, svc, u.ID)

	state, err := st.MFA.Get(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	state.ExpectedCode = "654321"
	if err := st.MFA.Put(context.Background(), state); err != nil {
		t.Fatalf("put state: %v", err)
	}

	if _, err := svc.Verify(context.Background(), u.ID, "123456"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("default code should no longer pass, got %v", err)
	}
	if res, err := svc.Verify(context.Background(), u.ID, "654321"); err != nil || !res.OK {
		t.Fatalf("override code should pass, got res=%+v err=%v", res, err)
	}
}

func TestVerifyCountsDownAndLocksOut(t *testing.T) {
	svc, st := newTestService(t)
	u := seedUser(t, st, "alice")
	enrollAndVerify(t, svc, u.ID)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	for i := 1; i <= 4; i++ {
		res, err := svc.Verify(context.Background(), u.ID, "000000")
		if !errors.Is(err, ErrInvalidCode) {
			t.Fatalf("attempt %d: expected ErrInvalidCode, got %v", i, err)
		}
		if res.RemainingAttempts != 5-i {
			t.Fatalf("attempt %d: expected %d remaining, got %d", i, 5-i, res.RemainingAttempts)
		}
	}

	res, err := svc.Verify(context.Background(), u.ID, "000000")
	if !errors.Is(err, ErrLockedOut) {
		t.Fatalf("expected ErrLockedOut on final attempt, got %v", err)
	}
	if res.LockedUntil == nil || !res.LockedUntil.Equal(base.Add(time.Hour)) {
		t.Fatalf("unexpected lockout deadline %v", res.LockedUntil)
	}

	// Even the right code is rejected while locked.
	if _, err := svc.Verify(context.Background(), u.ID, "123456"); !errors.Is(err, ErrLockedOut) {
		t.Fatalf("expected ErrLockedOut while locked, got %v", err)
	}

	// Once the window lapses the budget is restored on success.
	svc.now = func() time.Time { return base.Add(2 * time.Hour) }
	got, err := svc.Verify(context.Background(), u.ID, "123456")
	if err != nil || !got.OK {
		t.Fatalf("expected success after lockout expiry, got res=%+v err=%v", got, err)
	}
}

func TestVerifyRecoveryCodeDecrementsBudgetOnly(t *testing.T) {
	svc, st := newTestService(t)
	u := seedUser(t, st, "alice")
	enr := enrollAndVerify(t, svc, u.ID)

	code := enr.RecoveryCodes[0]
	res, err := svc.Verify(context.Background(), u.ID, code)
	if err != nil {
		t.Fatalf("verify recovery: %v", err)
	}
	if !res.OK || !res.UsedRecoveryCode {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.RemainingRecoveryCodes != 9 {
		t.Fatalf("expected 9 remaining, got %d", res.RemainingRecoveryCodes)
	}

	// The code list is left alone, so the same code passes again while
	// the counter lasts.
	res, err = svc.Verify(context.Background(), u.ID, code)
	if err != nil || !res.OK {
		t.Fatalf("expected repeat use to pass, got res=%+v err=%v", res, err)
	}
	if res.RemainingRecoveryCodes != 8 {
		t.Fatalf("expected 8 remaining, got %d", res.RemainingRecoveryCodes)
	}
}

func TestVerifyUnknownRecoveryCodeBurnsAttempt(t *testing.T) {
	svc, st := newTestService(t)
	u := seedUser(t, st, "alice")
	enrollAndVerify(t, svc, u.ID)

	res, err := svc.Verify(context.Background(), u.ID, "AAAAAAAA")
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if res.RemainingAttempts != 4 {
		t.Fatalf("expected 4 remaining attempts, got %d", res.RemainingAttempts)
	}
}

func TestVerifyNotEnrolled(t *testing.T) {
	svc, st := newTestService(t)
	u := seedUser(t, st, "alice")

	if _, err := svc.Verify(context.Background(), u.ID, "123456"); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled, got %v", err)
	}
}

func TestUseRecoveryCode(t *testing.T) {
	svc, st := newTestService(t)
	u := seedUser(t, st, "alice")
	enr := enrollAndVerify(t, svc, u.ID)

	res, err := svc.UseRecoveryCode(context.Background(), u.ID, strings.ToLower(enr.RecoveryCodes[2]))
	if err != nil {
		t.Fatalf("use recovery code: %v", err)
	}
	if !res.OK || !res.UsedRecoveryCode || res.RemainingRecoveryCodes != 9 {
		t.Fatalf("unexpected result %+v", res)
	}

	// Wrong codes on this path do not touch the attempt budget.
	res, err = svc.UseRecoveryCode(context.Background(), u.ID, "WRONGONE")
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if res.RemainingAttempts != 5 {
		t.Fatalf("attempt budget should be untouched, got %d", res.RemainingAttempts)
	}
}

func TestRegenerateRecoveryCodes(t *testing.T) {
	svc, st := newTestService(t)
	u := seedUser(t, st, "alice")
	enr := enrollAndVerify(t, svc, u.ID)

	if _, err := svc.RegenerateRecoveryCodes(context.Background(), u.ID, "000000"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}

	// Spend one code, then regenerate.
	if _, err := svc.UseRecoveryCode(context.Background(), u.ID, enr.RecoveryCodes[0]); err != nil {
		t.Fatalf("use recovery code: %v", err)
	}
	codes, err := svc.RegenerateRecoveryCodes(context.Background(), u.ID, "123456")
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if len(codes) != 10 {
		t.Fatalf("expected 10 fresh codes, got %d", len(codes))
	}
	status, _ := svc.Status(context.Background(), u.ID)
	if status.RemainingRecoveryCodes != 10 {
		t.Fatalf("counter should reset to 10, got %d", status.RemainingRecoveryCodes)
	}
	if codes[0] == enr.RecoveryCodes[0] && codes[1] == enr.RecoveryCodes[1] {
		t.Fatal("expected a new code set")
	}
}

func TestDisable(t *testing.T) {
	svc, st := newTestService(t)
	u := seedUser(t, st, "alice")
	enrollAndVerify(t, svc, u.ID)

	var fieldErr *FieldError
	err := svc.Disable(context.Background(), u.ID, "", "123456")
	if !errors.As(err, &fieldErr) || fieldErr.Field != "password" {
		t.Fatalf("expected password field error, got %v", err)
	}
	err = svc.Disable(context.Background(), u.ID, "correct-horse-battery", "")
	if !errors.As(err, &fieldErr) || fieldErr.Field != "code" {
		t.Fatalf("expected code field error, got %v", err)
	}
	if err := svc.Disable(context.Background(), u.ID, "wrong-password", "123456"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if err := svc.Disable(context.Background(), u.ID, "correct-horse-battery", "000000"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}

	if err := svc.Disable(context.Background(), u.ID, "correct-horse-battery", "123456"); err != nil {
		t.Fatalf("disable: %v", err)
	}
	got, _ := st.Users.Get(context.Background(), u.ID)
	if got.MFAEnabled {
		t.Fatal("user should no longer be flagged MFA-enabled")
	}
	if _, err := st.MFA.Get(context.Background(), u.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("state should be deleted, got %v", err)
	}
	status, _ := svc.Status(context.Background(), u.ID)
	if status.Enabled || status.PendingEnrollment {
		t.Fatalf("expected empty status, got %+v", status)
	}
}

func TestSweepExpiredLockouts(t *testing.T) {
	svc, st := newTestService(t)
	locked := seedUser(t, st, "locked")
	fresh := seedUser(t, st, "fresh")
	enrollAndVerify(t, svc, locked.ID)
	enrollAndVerify(t, svc, fresh.ID)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	for i := 0; i < 5; i++ {
		svc.Verify(context.Background(), locked.ID, "000000")
	}
	if _, err := svc.Verify(context.Background(), locked.ID, "123456"); !errors.Is(err, ErrLockedOut) {
		t.Fatalf("expected lockout, got %v", err)
	}

	// Still inside the window: nothing to sweep.
	n, err := svc.SweepExpiredLockouts(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("expected no-op sweep, got n=%d err=%v", n, err)
	}

	svc.now = func() time.Time { return base.Add(2 * time.Hour) }
	n, err = svc.SweepExpiredLockouts(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 cleared lockout, got %d", n)
	}
	status, _ := svc.Status(context.Background(), locked.ID)
	if status.LockedUntil != nil || status.RemainingAttempts != 5 {
		t.Fatalf("expected restored budget, got %+v", status)
	}
}
