package locktable

import (
	"sync"
	"testing"
)

func TestTryAcquire_EmptyTable(t *testing.T) {
	table := New()

	res := table.TryAcquire("biz1", "owner", "conn-1")
	if res.Outcome != Granted {
		t.Fatalf("expected Granted, got %v", res.Outcome)
	}
	if res.Holder != "owner" {
		t.Errorf("expected holder owner, got %q", res.Holder)
	}

	holder, ok := table.Holder("biz1")
	if !ok || holder != "owner" {
		t.Errorf("expected table to show owner holding biz1, got %q (ok=%v)", holder, ok)
	}
}

func TestTryAcquire_DeniedNamesHolder(t *testing.T) {
	table := New()
	table.TryAcquire("biz1", "owner", "conn-1")

	res := table.TryAcquire("biz1", "editor", "conn-2")
	if res.Outcome != Denied {
		t.Fatalf("expected Denied, got %v", res.Outcome)
	}
	if res.Holder != "owner" {
		t.Errorf("expected denial to name owner, got %q", res.Holder)
	}

	// Table unchanged.
	if holder, _ := table.Holder("biz1"); holder != "owner" {
		t.Errorf("expected owner to still hold biz1, got %q", holder)
	}
}

func TestTryAcquire_ReacquireIsIdempotent(t *testing.T) {
	table := New()
	table.TryAcquire("biz1", "owner", "conn-1")

	// Same identity, same connection (page refresh).
	res := table.TryAcquire("biz1", "owner", "conn-1")
	if res.Outcome != AlreadyHeld {
		t.Fatalf("expected AlreadyHeld, got %v", res.Outcome)
	}
	if res.Holder != "owner" {
		t.Errorf("expected holder owner, got %q", res.Holder)
	}

	// Same identity from a second connection: still theirs, ownership stays
	// with the original connection.
	res = table.TryAcquire("biz1", "owner", "conn-2")
	if res.Outcome != AlreadyHeld {
		t.Fatalf("expected AlreadyHeld from second connection, got %v", res.Outcome)
	}

	released := table.ForceReleaseAll("conn-2")
	if len(released) != 0 {
		t.Errorf("second connection should not own the lock, released %v", released)
	}
	released = table.ForceReleaseAll("conn-1")
	if len(released) != 1 || released[0] != "biz1" {
		t.Errorf("expected original connection to own the lock, released %v", released)
	}
}

func TestRelease(t *testing.T) {
	table := New()
	table.TryAcquire("biz1", "owner", "conn-1")

	if out := table.Release("biz1", "owner"); out != Released {
		t.Fatalf("expected Released, got %v", out)
	}
	if _, ok := table.Holder("biz1"); ok {
		t.Error("expected biz1 to be unlocked after release")
	}
}

func TestRelease_NotHeldIsNoOp(t *testing.T) {
	table := New()

	if out := table.Release("biz1", "owner"); out != NoOp {
		t.Errorf("releasing an unlocked resource: expected NoOp, got %v", out)
	}

	table.TryAcquire("biz1", "owner", "conn-1")
	if out := table.Release("biz1", "editor"); out != NoOp {
		t.Errorf("releasing someone else's lock: expected NoOp, got %v", out)
	}
	if holder, _ := table.Holder("biz1"); holder != "owner" {
		t.Errorf("expected owner to still hold biz1, got %q", holder)
	}
}

func TestForceReleaseAll_ReleasesEveryLockOfConnection(t *testing.T) {
	table := New()
	table.TryAcquire("biz1", "owner", "conn-1")
	table.TryAcquire("biz2", "owner", "conn-1")
	table.TryAcquire("biz3", "editor", "conn-2")

	released := table.ForceReleaseAll("conn-1")
	if len(released) != 2 {
		t.Fatalf("expected 2 released resources, got %v", released)
	}
	for _, r := range released {
		if r != "biz1" && r != "biz2" {
			t.Errorf("unexpected released resource %q", r)
		}
	}

	if _, ok := table.Holder("biz1"); ok {
		t.Error("biz1 should be unlocked")
	}
	if _, ok := table.Holder("biz2"); ok {
		t.Error("biz2 should be unlocked")
	}
	if holder, _ := table.Holder("biz3"); holder != "editor" {
		t.Errorf("biz3 should remain held by editor, got %q", holder)
	}
}

func TestForceReleaseAll_UnknownConnection(t *testing.T) {
	table := New()
	if released := table.ForceReleaseAll("ghost"); len(released) != 0 {
		t.Errorf("expected no releases, got %v", released)
	}
}

// Run with -race: concurrent acquirers for the same resource must never both
// observe it unlocked.
func TestTryAcquire_MutualExclusion(t *testing.T) {
	table := New()

	const attempts = 64
	var wg sync.WaitGroup
	granted := make(chan string, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			identity := string(rune('a' + n%26))
			connID := identity + "-conn"
			res := table.TryAcquire("biz1", identity, connID)
			if res.Outcome == Granted {
				granted <- identity
			}
		}(i)
	}
	wg.Wait()
	close(granted)

	var winners []string
	for w := range granted {
		winners = append(winners, w)
	}
	if len(winners) != 1 {
		t.Fatalf("expected exactly one granted acquirer, got %d: %v", len(winners), winners)
	}

	holder, ok := table.Holder("biz1")
	if !ok || holder != winners[0] {
		t.Errorf("table holder %q does not match the granted acquirer %q", holder, winners[0])
	}
}
