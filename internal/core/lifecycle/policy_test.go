package lifecycle

import "testing"

func TestDeletionPolicy(t *testing.T) {
	t.Parallel()

	want := map[EntityKind]DeletionMode{
		KindEmployee:   DeactivateIfReferenced,
		KindStore:      AlwaysDeactivate,
		KindFlavor:     AlwaysDeactivate,
		KindJob:        DeactivateIfReferenced,
		KindAssignment: TerminateIfReferenced,
		KindShift:      RejectIfReferenced,
		KindShiftJob:   AlwaysHardDelete,
	}
	for kind, mode := range want {
		if got := DeletionPolicy(kind); got != mode {
			t.Errorf("%s: expected %s, got %s", kind, mode, got)
		}
	}
}

func TestDecideDeletion(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind       EntityKind
		referenced bool
		want       deletionDecision
	}{
		{KindEmployee, false, decideHardDelete},
		{KindEmployee, true, decideDeactivate},
		{KindStore, false, decideDeactivate},
		{KindFlavor, true, decideDeactivate},
		{KindJob, false, decideHardDelete},
		{KindJob, true, decideDeactivate},
		{KindAssignment, false, decideHardDelete},
		{KindAssignment, true, decideTerminate},
		{KindShift, false, decideHardDelete},
		{KindShift, true, decideReject},
		{KindShiftJob, true, decideHardDelete},
	}
	for _, tc := range cases {
		if got := decideDeletion(tc.kind, tc.referenced); got != tc.want {
			t.Errorf("%s referenced=%v: expected %d, got %d", tc.kind, tc.referenced, tc.want, got)
		}
	}
}
