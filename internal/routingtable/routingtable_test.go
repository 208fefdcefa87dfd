package routingtable

import (
	"testing"

	"ChordDHT/internal/domain"
)

func newTestTable(t *testing.T, bits, succListSize int) (*RoutingTable, domain.Space) {
	t.Helper()
	sp, err := domain.NewSpace(bits, succListSize)
	if err != nil {
		t.Fatalf("NewSpace failed: %v", err)
	}
	self := &domain.Node{ID: sp.FromUint64(1), Addr: "self:1"}
	return New(self, sp), sp
}

func TestInitSingleNode(t *testing.T) {
	rt, _ := newTestTable(t, 8, 3)
	rt.InitSingleNode()

	if succ := rt.FirstSuccessor(); succ == nil || !succ.ID.Equal(rt.Self().ID) {
		t.Fatalf("expected first successor to be self, got %+v", succ)
	}
	if pred := rt.GetPredecessor(); pred == nil || !pred.ID.Equal(rt.Self().ID) {
		t.Fatalf("expected predecessor to be self, got %+v", pred)
	}
	for _, fs := range rt.Fingers() {
		if fs.Node == nil || !fs.Node.ID.Equal(rt.Self().ID) {
			t.Fatalf("expected finger %d to point to self, got %+v", fs.Index, fs.Node)
		}
	}
}

func TestFingerTargetsAreDistinctPowersOfTwoOffsets(t *testing.T) {
	rt, sp := newTestTable(t, 8, 3)
	self := rt.Self().ID
	for i := 0; i < sp.Bits; i++ {
		want, err := sp.FingerStart(self, i)
		if err != nil {
			t.Fatalf("FingerStart(%d) failed: %v", i, err)
		}
		if got := rt.FingerTarget(i); !got.Equal(want) {
			t.Errorf("FingerTarget(%d) = %s, want %s", i, got.ToHexString(false), want.ToHexString(false))
		}
	}
}

func TestPromoteCandidate(t *testing.T) {
	rt, sp := newTestTable(t, 8, 4)
	nodes := []*domain.Node{
		{ID: sp.FromUint64(10), Addr: "n0"},
		{ID: sp.FromUint64(20), Addr: "n1"},
		{ID: sp.FromUint64(30), Addr: "n2"},
		{ID: sp.FromUint64(40), Addr: "n3"},
	}
	rt.SetSuccessorList(nodes)

	rt.PromoteCandidate(2)
	got := rt.SuccessorList()
	if len(got) != 2 || got[0].Addr != "n2" || got[1].Addr != "n3" {
		t.Fatalf("PromoteCandidate(2) produced unexpected list: %+v", got)
	}
}

func TestNextFixIndexRoundRobin(t *testing.T) {
	rt, sp := newTestTable(t, 4, 2) // 4-bit ring -> 4 finger entries
	_ = sp
	seen := make([]int, 0, 8)
	for i := 0; i < 8; i++ {
		seen = append(seen, rt.NextFixIndex())
	}
	want := []int{0, 1, 2, 3, 0, 1, 2, 3}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("NextFixIndex sequence = %v, want %v", seen, want)
		}
	}
}
