package store

import "time"

// Store aggregates every entity store behind one explicit object. Each test
// or server builds its own with New; this package holds no module-level
// state, so two Stores never share entities, counters, or injected errors.
type Store struct {
	Users      UserStore
	Bans       BanStore
	Moderators ModeratorStore
	Audit      AuditStore
	MFA        MFAStore
	SyncJobs   SyncJobStore

	ins        *Instrumentation
	users      *userStore
	bans       *banStore
	moderators *moderatorStore
	audit      *auditStore
	mfa        *mfaStore
	jobs       *syncJobStore
}

func New() *Store {
	ins := newInstrumentation()
	s := &Store{
		ins:        ins,
		users:      newUserStore(ins),
		bans:       newBanStore(ins),
		moderators: newModeratorStore(ins),
		audit:      newAuditStore(ins),
		mfa:        newMFAStore(ins),
		jobs:       newSyncJobStore(ins),
	}
	s.Users = s.users
	s.Bans = s.bans
	s.Moderators = s.moderators
	s.Audit = s.audit
	s.MFA = s.mfa
	s.SyncJobs = s.jobs
	return s
}

// Calls reports how many times the named op ran, e.g. Calls("bans.list").
func (s *Store) Calls(op string) int {
	return s.ins.Calls(op)
}

// FailNext makes the next call to the named op fail with err.
func (s *Store) FailNext(op string, err error) {
	s.ins.FailNext(op, err)
}

// SimulateLatency delays every store op by d. Zero disables the delay.
func (s *Store) SimulateLatency(d time.Duration) {
	s.ins.SetLatency(d)
}

// Reset drops all entities, call counters, and pending injected errors.
// A configured latency survives.
func (s *Store) Reset() {
	s.users.reset()
	s.bans.reset()
	s.moderators.reset()
	s.audit.reset()
	s.mfa.reset()
	s.jobs.reset()
	s.ins.reset()
}
