package app

import (
	"fmt"
	"sync"
	"testing"

	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/core"
	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/domain"
)

func TestRoomTable_LazyCreateEagerDelete(t *testing.T) {
	tbl := NewRoomTable()

	if tbl.Has("r1") {
		t.Fatal("room exists before first join")
	}
	snap, joined := tbl.SnapshotAndAdd("r1", "alice", "s1")
	if len(snap) != 0 {
		t.Fatalf("first joiner snapshot = %v, want empty", snap)
	}
	if !joined {
		t.Fatal("first session did not report identityJoined")
	}
	if !tbl.Has("r1") {
		t.Fatal("room missing after first join")
	}

	left, deleted := tbl.Remove("r1", "alice", "s1")
	if !left || !deleted {
		t.Fatalf("Remove = (%v, %v), want (true, true)", left, deleted)
	}
	if tbl.Has("r1") {
		t.Fatal("empty room still present in the table")
	}
}

func TestRoomTable_SnapshotExcludesJoiner(t *testing.T) {
	tbl := NewRoomTable()

	tbl.SnapshotAndAdd("r1", "alice", "s1")
	snap, joined := tbl.SnapshotAndAdd("r1", "bob", "s2")
	if len(snap) != 1 || snap[0] != "alice" {
		t.Fatalf("bob's snapshot = %v, want [alice]", snap)
	}
	if !joined {
		t.Fatal("bob's first session did not report identityJoined")
	}

	// A second device of an identity already present still never sees itself.
	snap, joined = tbl.SnapshotAndAdd("r1", "alice", "s3")
	if len(snap) != 1 || snap[0] != "bob" {
		t.Fatalf("alice's second-device snapshot = %v, want [bob]", snap)
	}
	if joined {
		t.Fatal("second device reported identityJoined")
	}
}

func TestRoomTable_RemoveUnknownIsNoOp(t *testing.T) {
	tbl := NewRoomTable()

	if left, deleted := tbl.Remove("ghost", "alice", "s1"); left || deleted {
		t.Fatalf("Remove on missing room = (%v, %v), want (false, false)", left, deleted)
	}

	tbl.SnapshotAndAdd("r1", "alice", "s1")
	if left, _ := tbl.Remove("r1", "bob", "s9"); left {
		t.Fatal("Remove of a non-member reported a removal")
	}
	if left, _ := tbl.Remove("r1", "alice", "wrong-sid"); left {
		t.Fatal("Remove with a wrong session reported a removal")
	}
	if !tbl.Has("r1") {
		t.Fatal("no-op removals deleted the room")
	}
}

func TestRoomTable_MultiDeviceMembership(t *testing.T) {
	tbl := NewRoomTable()

	tbl.SnapshotAndAdd("r1", "alice", "s1")
	tbl.SnapshotAndAdd("r1", "alice", "s2")

	members, ok := tbl.Membership("r1")
	if !ok {
		t.Fatal("Membership: room missing")
	}
	if len(members) != 1 || len(members["alice"]) != 2 {
		t.Fatalf("membership = %v, want alice with 2 sessions", members)
	}

	left, deleted := tbl.Remove("r1", "alice", "s1")
	if left || deleted {
		t.Fatalf("Remove of first device = (%v, %v), want (false, false)", left, deleted)
	}
	left, deleted = tbl.Remove("r1", "alice", "s2")
	if !left || !deleted {
		t.Fatalf("Remove of last device = (%v, %v), want (true, true)", left, deleted)
	}
}

func TestRoomTable_ListSortedWithCounts(t *testing.T) {
	tbl := NewRoomTable()

	tbl.SnapshotAndAdd("b", "bob", "s2")
	tbl.SnapshotAndAdd("a", "alice", "s1")
	tbl.SnapshotAndAdd("a", "carol", "s3")

	list := tbl.List()
	if len(list) != 2 {
		t.Fatalf("List = %v, want 2 rooms", list)
	}
	if list[0].ID != "a" || list[0].MemberCount != 2 {
		t.Fatalf("List[0] = %v, want {a 2}", list[0])
	}
	if list[1].ID != "b" || list[1].MemberCount != 1 {
		t.Fatalf("List[1] = %v, want {b 1}", list[1])
	}
}

// Concurrent joins and leaves on one room must never leave an empty room
// behind or lose a member.
func TestRoomTable_ConcurrentChurn(t *testing.T) {
	tbl := NewRoomTable()

	const workers = 16
	const rounds = 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		identity := domain.Identity(fmt.Sprintf("user-%d", w))
		sid := core.SessionID(fmt.Sprintf("sid-%d", w))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				tbl.SnapshotAndAdd("churn", identity, sid)
				tbl.Remove("churn", identity, sid)
			}
		}()
	}
	wg.Wait()

	if tbl.Has("churn") {
		members, _ := tbl.Membership("churn")
		t.Fatalf("room survived full churn with members %v", members)
	}
}
