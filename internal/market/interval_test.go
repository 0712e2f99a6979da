package market

import "testing"

func TestIntervalCycleRoundTrip(t *testing.T) {
	for _, iv := range Intervals() {
		if got := iv.Prev().Next(); got != iv {
			t.Errorf("Next(Prev(%v)) = %v, want %v", iv, got, iv)
		}
		if got := iv.Next().Prev(); got != iv {
			t.Errorf("Prev(Next(%v)) = %v, want %v", iv, got, iv)
		}
	}
}

func TestIntervalCycleCoversAll(t *testing.T) {
	all := Intervals()
	seen := make(map[Interval]bool, len(all))

	iv := Interval1D
	for range all {
		if seen[iv] {
			t.Fatalf("interval %v visited twice before cycle completed", iv)
		}
		seen[iv] = true
		iv = iv.Next()
	}

	if iv != Interval1D {
		t.Errorf("cycle does not return to start: ended on %v", iv)
	}
	if len(seen) != len(all) {
		t.Errorf("cycle visited %d intervals, want %d", len(seen), len(all))
	}
}

func TestIntervalNextSequence(t *testing.T) {
	// 6M -> 1Y -> 2Y, the sequence the chart header walks through when the
	// user advances twice from the default window.
	iv := Interval6Mo
	iv = iv.Next()
	if iv != Interval1Y {
		t.Fatalf("Next(6M) = %v, want 1Y", iv)
	}
	iv = iv.Next()
	if iv != Interval2Y {
		t.Fatalf("Next(1Y) = %v, want 2Y", iv)
	}
}

func TestIntervalUnknownDefaultsToCycleStart(t *testing.T) {
	// Out-of-range values resolve to the cycle head, not its neighbors.
	bogus := Interval(99)
	if got := bogus.Next(); got != Interval1D {
		t.Errorf("Next(bogus) = %v, want 1D (cycle start)", got)
	}
	if got := bogus.Prev(); got != Interval1D {
		t.Errorf("Prev(bogus) = %v, want 1D (cycle start)", got)
	}
}

func TestParseInterval(t *testing.T) {
	cases := []struct {
		in      string
		want    Interval
		wantErr bool
	}{
		{"6mo", Interval6Mo, false},
		{"1d", Interval1D, false},
		{"YTD", IntervalYTD, false},
		{" max ", IntervalMax, false},
		{"2y", Interval2Y, false},
		{"fortnight", Interval1D, true},
	}
	for _, tc := range cases {
		got, err := ParseInterval(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseInterval(%q) expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseInterval(%q) returned error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseInterval(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestIntervalDays(t *testing.T) {
	if d := Interval6Mo.Days(); d != 183 {
		t.Errorf("6M days = %d, want 183", d)
	}
	if d := Interval10Y.Days(); d != 3650 {
		t.Errorf("10Y days = %d, want 3650", d)
	}
	if d := IntervalMax.Days(); d != 0 {
		t.Errorf("Max days = %d, want 0 (open-ended)", d)
	}
}
