package swipe

import (
	"testing"
)

func TestClassify(t *testing.T) {
	th := Thresholds{Swipe: 120, Skip: 60}

	tests := []struct {
		name   string
		dx, dy float64
		want   Decision
	}{
		{name: "right past threshold likes", dx: 150, dy: 0, want: Liked},
		{name: "left past threshold dislikes", dx: -150, dy: 0, want: Disliked},
		{name: "up past threshold skips", dx: 0, dy: -80, want: Skipped},
		{name: "small drag is uncommitted", dx: 10, dy: 5, want: None},
		{name: "exactly at swipe threshold is uncommitted", dx: 120, dy: 0, want: None},
		{name: "exactly at skip threshold is uncommitted", dx: 0, dy: -60, want: None},
		{name: "downward drag never skips", dx: 0, dy: 500, want: None},
		{name: "horizontal wins over vertical", dx: 130, dy: -200, want: Liked},
		{name: "left wins over vertical", dx: -121, dy: -61, want: Disliked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := th.Classify(tt.dx, tt.dy); got != tt.want {
				t.Errorf("Classify(%v, %v) = %v, want %v", tt.dx, tt.dy, got, tt.want)
			}
		})
	}
}

func TestTracker(t *testing.T) {
	tr := NewTracker(DefaultThresholds())

	// Live feedback crosses into "like" and back out before release.
	if got := tr.Move(50, 0); got != None {
		t.Errorf("Move(50, 0) = %v, want none", got)
	}
	if got := tr.Move(200, 0); got != Liked {
		t.Errorf("Move(200, 0) = %v, want liked", got)
	}
	if got := tr.Move(40, -10); got != None {
		t.Errorf("Move(40, -10) = %v, want none", got)
	}

	if got := tr.Release(-130, 0); got != Disliked {
		t.Errorf("Release(-130, 0) = %v, want disliked", got)
	}
	if got := tr.Release(-130, 0); got != None {
		t.Errorf("second Release = %v, want none", got)
	}
}

func TestSessionProgress(t *testing.T) {
	s := NewSession(3, 11, 12, 13, 14, 15)

	s.Commit(Liked, 11)
	s.Commit(Skipped, 12)
	st := s.Commit(Disliked, 13)

	if st.RatedCount != 2 {
		t.Errorf("RatedCount = %d, want 2 (skip excluded)", st.RatedCount)
	}
	if st.Status != InProgress {
		t.Errorf("Status = %v, want in_progress", st.Status)
	}
	if st.CurrentIndex != 3 {
		t.Errorf("CurrentIndex = %d, want 3", st.CurrentIndex)
	}
	if st.CurrentMovieID != 14 {
		t.Errorf("CurrentMovieID = %d, want 14", st.CurrentMovieID)
	}

	st = s.Commit(Liked, 14)
	if st.RatedCount != 3 {
		t.Errorf("RatedCount = %d, want 3", st.RatedCount)
	}
	if st.Status != Completed {
		t.Errorf("Status = %v, want completed", st.Status)
	}
	if _, ok := s.Current(); ok {
		t.Error("Current() should report no candidate on a completed session")
	}

	decisions := s.Decisions()
	want := []Entry{{11, Liked}, {12, Skipped}, {13, Disliked}, {14, Liked}}
	if len(decisions) != len(want) {
		t.Fatalf("len(Decisions) = %d, want %d", len(decisions), len(want))
	}
	for i := range want {
		if decisions[i] != want[i] {
			t.Errorf("Decisions[%d] = %+v, want %+v", i, decisions[i], want[i])
		}
	}
}

func TestSessionRatedCountMatchesDecisions(t *testing.T) {
	s := NewSession(100, 1, 2, 3, 4, 5, 6)
	seq := []Decision{Skipped, Liked, Skipped, Skipped, Disliked, Liked}
	for i, d := range seq {
		s.Commit(d, int64(i+1))
	}

	nonSkip := 0
	for _, e := range s.Decisions() {
		if e.Decision != Skipped {
			nonSkip++
		}
	}
	if got := s.State().RatedCount; got != nonSkip {
		t.Errorf("RatedCount = %d, non-skip decisions = %d", got, nonSkip)
	}
}

func TestSessionExhaustedAndRefill(t *testing.T) {
	s := NewSession(3, 1, 2)

	s.Commit(Liked, 1)
	st := s.Commit(Skipped, 2)
	if st.Status != Exhausted {
		t.Fatalf("Status = %v, want exhausted", st.Status)
	}
	if st.CurrentMovieID != 0 {
		t.Errorf("CurrentMovieID = %d, want 0", st.CurrentMovieID)
	}
	if s.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", s.Remaining())
	}

	s.Refill(3, 4)
	if s.Status() != InProgress {
		t.Fatalf("Status after refill = %v, want in_progress", s.Status())
	}
	if !s.Seen(4) || s.Seen(99) {
		t.Error("Seen() does not reflect the refilled pool")
	}
	s.Commit(Disliked, 3)
	st = s.Commit(Liked, 4)
	if st.Status != Completed {
		t.Errorf("Status = %v, want completed", st.Status)
	}
}

func TestSessionSeen(t *testing.T) {
	s := NewSession(2, 10, 20)

	for _, id := range []int64{10, 20} {
		if !s.Seen(id) {
			t.Errorf("Seen(%d) = false for an initial candidate", id)
		}
	}
	if s.Seen(30) {
		t.Error("Seen(30) = true before it was added")
	}

	s.Commit(Liked, 10)
	if !s.Seen(10) {
		t.Error("a decided candidate must stay seen")
	}

	s.Refill(30, 40)
	for _, id := range []int64{10, 20, 30, 40} {
		if !s.Seen(id) {
			t.Errorf("Seen(%d) = false after refill", id)
		}
	}
	if s.Remaining() != 3 {
		t.Errorf("Remaining() = %d, want 3", s.Remaining())
	}
}

func TestSessionCompletedBeatsExhausted(t *testing.T) {
	s := NewSession(1, 7)
	if st := s.Commit(Liked, 7); st.Status != Completed {
		t.Errorf("Status = %v, want completed when both goal met and pool empty", st.Status)
	}
}

func TestSessionDefaultTarget(t *testing.T) {
	if got := NewSession(0).State().Target; got != DefaultTarget {
		t.Errorf("Target = %d, want %d", got, DefaultTarget)
	}
}

func TestSessionCommitContractViolations(t *testing.T) {
	tests := []struct {
		name string
		run  func(s *Session)
	}{
		{name: "wrong movie", run: func(s *Session) { s.Commit(Liked, 99) }},
		{name: "none decision", run: func(s *Session) { s.Commit(None, 1) }},
		{name: "finished session", run: func(s *Session) {
			s.Commit(Liked, 1)
			s.Commit(Liked, 2)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.run(NewSession(1, 1, 2))
		})
	}
}

func TestDecisionOutcome(t *testing.T) {
	if Liked.Outcome() != "liked" || Disliked.Outcome() != "disliked" || Skipped.Outcome() != "skipped" {
		t.Error("unexpected outcome mapping")
	}
	if None.Outcome() != "" {
		t.Errorf("None.Outcome() = %q, want empty", None.Outcome())
	}
}
