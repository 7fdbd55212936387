package store

import (
	"context"
	"testing"
	"time"
)

func seedBanAt(t *testing.T, s *Store, channel, user string, at time.Time) string {
	t.Helper()
	id, err := s.Bans.Seed(context.Background(), &Ban{
		UserID:    user,
		Username:  user,
		ChannelID: channel,
		Reason:    "test",
		CreatedAt: at,
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("seed ban: %v", err)
	}
	return id
}

func TestListBansNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	oldest := seedBanAt(t, s, "chan", "u1", base)
	middle := seedBanAt(t, s, "chan", "u2", base.Add(time.Hour))
	newest := seedBanAt(t, s, "chan", "u3", base.Add(2*time.Hour))

	bans, total, err := s.Bans.List(ctx, BanFilter{ChannelID: "chan"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(bans) != 3 {
		t.Fatalf("expected 3 bans, got total=%d len=%d", total, len(bans))
	}
	if bans[0].ID != newest || bans[1].ID != middle || bans[2].ID != oldest {
		t.Fatalf("expected newest first, got %s, %s, %s", bans[0].UserID, bans[1].UserID, bans[2].UserID)
	}
}

func TestListBansPagination(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedBanAt(t, s, "chan", "u", base.Add(time.Duration(i)*time.Minute))
	}

	page, total, err := s.Bans.List(ctx, BanFilter{ChannelID: "chan", Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
	if len(page) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page))
	}

	empty, total, err := s.Bans.List(ctx, BanFilter{ChannelID: "chan", Offset: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 || len(empty) != 0 {
		t.Fatalf("out-of-range offset: total=%d len=%d", total, len(empty))
	}
}

func TestListBansFilters(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedBanAt(t, s, "chan_a", "u1", time.Now().UTC())
	inactive := seedBanAt(t, s, "chan_a", "u2", time.Now().UTC())
	seedBanAt(t, s, "chan_b", "u1", time.Now().UTC())
	if _, err := s.Bans.Deactivate(ctx, inactive); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	active, total, err := s.Bans.List(ctx, BanFilter{ChannelID: "chan_a", ActiveOnly: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(active) != 1 || active[0].UserID != "u1" {
		t.Fatalf("unexpected active filter result: total=%d", total)
	}

	byUser, total, err := s.Bans.List(ctx, BanFilter{UserID: "u1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(byUser) != 2 {
		t.Fatalf("unexpected user filter result: total=%d", total)
	}
}

func TestDeactivateKeepsRecord(t *testing.T) {
	ctx := context.Background()
	s := New()
	id := seedBanAt(t, s, "chan", "u1", time.Now().UTC())

	b, err := s.Bans.Deactivate(ctx, id)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if b.IsActive {
		t.Fatal("expected ban to be inactive")
	}
	// Record survives; only the flag flips.
	got, err := s.Bans.Get(ctx, id)
	if err != nil {
		t.Fatalf("get after deactivate: %v", err)
	}
	if got.IsActive {
		t.Fatal("expected persisted ban to stay inactive")
	}
	if n, _ := s.Bans.CountActive(ctx, "chan"); n != 0 {
		t.Fatalf("expected 0 active bans, got %d", n)
	}
}

func TestBanExpired(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	if !(&Ban{ExpiresAt: &past}).Expired(now) {
		t.Fatal("past expiry must be expired")
	}
	if (&Ban{ExpiresAt: &future}).Expired(now) {
		t.Fatal("future expiry must not be expired")
	}
	if (&Ban{}).Expired(now) {
		t.Fatal("permanent ban must not be expired")
	}
}
