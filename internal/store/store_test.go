package store

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/decoylabs/scam-honeypot/internal/model"
	"github.com/decoylabs/scam-honeypot/pkg/logger"
)

// newTestStore returns a store with a controllable clock.
func newTestStore(ttl time.Duration) (*Store, *time.Time) {
	s := New(ttl, logger.NewNop())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestGetOrCreate(t *testing.T) {
	t.Run("creates fresh state in screen phase", func(t *testing.T) {
		s, _ := newTestStore(time.Hour)

		st := s.GetOrCreate("conv-1", nil)
		if st.Phase != model.PhaseScreen {
			t.Errorf("Phase = %v, want %v", st.Phase, model.PhaseScreen)
		}
		if len(st.History) != 0 {
			t.Errorf("History = %v, want empty", st.History)
		}
		if s.Len() != 1 {
			t.Errorf("Len() = %d, want 1", s.Len())
		}
	})

	t.Run("seeds history only on first access", func(t *testing.T) {
		s, _ := newTestStore(time.Hour)
		seed := []model.HistoryEntry{
			{Role: model.RoleUser, Message: "your parcel is held"},
			{Role: model.RoleAgent, Message: "which parcel?"},
		}

		st := s.GetOrCreate("conv-1", seed)
		if !reflect.DeepEqual(st.History, seed) {
			t.Fatalf("History = %v, want %v", st.History, seed)
		}

		again := s.GetOrCreate("conv-1", []model.HistoryEntry{{Role: model.RoleUser, Message: "ignored"}})
		if again != st {
			t.Fatal("expected the same state on repeat access")
		}
		if len(again.History) != 2 {
			t.Errorf("History length = %d, want 2 (seed must not re-apply)", len(again.History))
		}
	})

	t.Run("expired state is replaced with a fresh one", func(t *testing.T) {
		s, now := newTestStore(time.Hour)

		st := s.GetOrCreate("conv-1", nil)
		st.Lock()
		st.Phase = model.PhaseHarvest
		st.Append(model.RoleUser, "send the otp", *now)
		st.Unlock()

		*now = now.Add(2 * time.Hour)

		fresh := s.GetOrCreate("conv-1", nil)
		if fresh == st {
			t.Fatal("expected a replacement state after expiry")
		}
		if fresh.Phase != model.PhaseScreen || len(fresh.History) != 0 {
			t.Errorf("fresh state = phase %v history %v, want screen phase and empty history", fresh.Phase, fresh.History)
		}
	})

	t.Run("activity extends the lifetime", func(t *testing.T) {
		s, now := newTestStore(time.Hour)

		st := s.GetOrCreate("conv-1", nil)
		*now = now.Add(45 * time.Minute)
		st.Lock()
		st.Append(model.RoleUser, "hello", *now)
		st.Unlock()

		*now = now.Add(45 * time.Minute)
		if again := s.GetOrCreate("conv-1", nil); again != st {
			t.Error("state expired despite recent activity")
		}
	})

	t.Run("zero ttl disables eviction", func(t *testing.T) {
		s, now := newTestStore(0)

		st := s.GetOrCreate("conv-1", nil)
		*now = now.Add(1000 * time.Hour)
		if again := s.GetOrCreate("conv-1", nil); again != st {
			t.Error("state evicted with eviction disabled")
		}
	})
}

func TestGet(t *testing.T) {
	s, now := newTestStore(time.Hour)

	if _, ok := s.Get("missing"); ok {
		t.Error("Get returned a state for an unknown conversation")
	}

	st := s.GetOrCreate("conv-1", nil)
	got, ok := s.Get("conv-1")
	if !ok || got != st {
		t.Fatal("Get did not return the stored state")
	}

	*now = now.Add(2 * time.Hour)
	if _, ok := s.Get("conv-1"); ok {
		t.Error("Get returned an expired state")
	}
}

func TestMergeExtracted(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	st := s.GetOrCreate("conv-1", nil)

	first := model.ExtractedIntel{
		BankAccounts: []model.IntelItem{{Value: "12345678", Confidence: 0.78, IFSC: "HDFC0001234"}},
		UPIIDs:       []model.IntelItem{{Value: "pay@bank", Confidence: 0.8}},
		URLs:         []model.IntelItem{},
		Amounts:      []model.IntelItem{},
	}

	st.Lock()
	added := s.MergeExtracted(st, first)
	st.Unlock()
	if !reflect.DeepEqual(added, first) {
		t.Errorf("first merge added = %+v, want %+v", added, first)
	}

	// Repeats are dropped; only the new URL comes back.
	second := model.ExtractedIntel{
		BankAccounts: []model.IntelItem{{Value: "12345678", Confidence: 0.78, IFSC: "SBIN0009999"}},
		UPIIDs:       []model.IntelItem{{Value: "pay@bank", Confidence: 0.8}},
		URLs:         []model.IntelItem{{Value: "http://scam.example/pay", Confidence: 0.75}},
		Amounts:      []model.IntelItem{},
	}

	st.Lock()
	added = s.MergeExtracted(st, second)
	st.Unlock()
	if len(added.BankAccounts) != 0 || len(added.UPIIDs) != 0 {
		t.Errorf("duplicate values re-added: %+v", added)
	}
	if !reflect.DeepEqual(added.URLs, second.URLs) {
		t.Errorf("added URLs = %+v, want %+v", added.URLs, second.URLs)
	}

	st.Lock()
	defer st.Unlock()
	if got := st.Extracted.BankAccounts[0].IFSC; got != "HDFC0001234" {
		t.Errorf("first-seen routing tag overwritten: %q", got)
	}
	if n := len(st.Extracted.UPIIDs); n != 1 {
		t.Errorf("UPI count = %d, want 1", n)
	}
}

func TestListOrderingAndPagination(t *testing.T) {
	s, now := newTestStore(time.Hour)

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("conv-%d", i)
		st := s.GetOrCreate(id, nil)
		st.Lock()
		st.Append(model.RoleUser, "hi", now.Add(time.Duration(i)*time.Minute))
		st.Unlock()
	}

	page, total := s.List(2, 0)
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(page) != 2 || page[0].ConversationID != "conv-4" || page[1].ConversationID != "conv-3" {
		t.Errorf("page = %+v, want conv-4 then conv-3", page)
	}

	page, _ = s.List(10, 4)
	if len(page) != 1 || page[0].ConversationID != "conv-0" {
		t.Errorf("offset page = %+v, want just conv-0", page)
	}

	page, _ = s.List(10, 99)
	if len(page) != 0 {
		t.Errorf("out-of-range offset page = %+v, want empty", page)
	}
}
