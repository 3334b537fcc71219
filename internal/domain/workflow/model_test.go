package workflow

import "testing"

func TestTaskRefRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		ref  TaskRef
		want int64
	}{
		{"user", TaskRef{Kind: KindUserApproval, ID: 42}, 42},
		{"user boundary", TaskRef{Kind: KindUserApproval, ID: 99999}, 99999},
		{"org", TaskRef{Kind: KindOrgApproval, ID: 5}, 100005},
		{"org zero", TaskRef{Kind: KindOrgApproval, ID: 0}, 100000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.ref.TaskID()
			if got != tc.want {
				t.Errorf("TaskID() = %d, want %d", got, tc.want)
			}
			back := ParseTaskID(got)
			if back != tc.ref {
				t.Errorf("ParseTaskID(%d) = %+v, want %+v", got, back, tc.ref)
			}
		})
	}
}

func TestParseTaskIDPartition(t *testing.T) {
	// Every id below the offset decodes as a user task, everything at or
	// above decodes as an organization task.
	for _, id := range []int64{1, 7, 99999} {
		if ref := ParseTaskID(id); ref.Kind != KindUserApproval {
			t.Errorf("ParseTaskID(%d).Kind = %s, want %s", id, ref.Kind, KindUserApproval)
		}
	}
	for _, id := range []int64{100000, 100005, 250000} {
		if ref := ParseTaskID(id); ref.Kind != KindOrgApproval {
			t.Errorf("ParseTaskID(%d).Kind = %s, want %s", id, ref.Kind, KindOrgApproval)
		}
	}
}
