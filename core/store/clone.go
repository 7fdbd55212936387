package store

import "time"

// Read paths hand out copies so callers can never alias store-owned state.

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.BanExpiresAt = cloneTime(u.BanExpiresAt)
	return &cp
}

func cloneBan(b *Ban) *Ban {
	if b == nil {
		return nil
	}
	cp := *b
	cp.ExpiresAt = cloneTime(b.ExpiresAt)
	return &cp
}

func cloneModerator(m *Moderator) *Moderator {
	if m == nil {
		return nil
	}
	cp := *m
	cp.Permissions = cloneStrings(m.Permissions)
	return &cp
}

func cloneAuditEntry(e *AuditEntry) *AuditEntry {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Details = cloneStringMap(e.Details)
	return &cp
}

func cloneMFAState(m *MFAState) *MFAState {
	if m == nil {
		return nil
	}
	cp := *m
	cp.RecoveryCodes = cloneStrings(m.RecoveryCodes)
	cp.LockedUntil = cloneTime(m.LockedUntil)
	return &cp
}

func cloneSyncJob(j *SyncJob) *SyncJob {
	if j == nil {
		return nil
	}
	cp := *j
	cp.BanIDs = cloneStrings(j.BanIDs)
	cp.CompletedAt = cloneTime(j.CompletedAt)
	return &cp
}
