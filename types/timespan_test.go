package types

import "testing"

func TestTimeSpanCloseIsIdempotent(t *testing.T) {
	s := OpenSpan(0)
	s = s.Close(10)
	s = s.Close(20) // double-close must not move the end

	if s.Ended == nil || *s.Ended != 10 {
		t.Fatalf("expected span closed at 10, got %+v", s)
	}
}

func TestSumElapsedPauseAware(t *testing.T) {
	// start t=0, pause t=10_000, resume t=15_000, now t=20_000
	spans := []TimeSpan{
		OpenSpan(0).Close(10_000),
		OpenSpan(15_000),
	}

	if got := SumElapsed(spans, 20_000); got != 15_000 {
		t.Errorf("elapsed = %d, want 15000", got)
	}
	if got := SumTotal(spans, 20_000); got != 20_000 {
		t.Errorf("total = %d, want 20000", got)
	}
}

func TestBlockKeyStable(t *testing.T) {
	k := NewBlockKey()
	if k.String() == "" {
		t.Fatal("expected non-empty key string")
	}
	if k.String() != k.String() {
		t.Fatal("String() must be stable across calls")
	}
	if NewBlockKey().Equal(k) {
		t.Fatal("two fresh keys must not be equal")
	}
}

func TestMemoryTagHelpers(t *testing.T) {
	if !NewAnchorTag("42").IsAnchor() {
		t.Error("expected anchor tag to report IsAnchor")
	}
	if !NewCustomTag("foo").IsCustom() {
		t.Error("expected custom tag to report IsCustom")
	}
	if TagTimer.IsAnchor() || TagTimer.IsCustom() {
		t.Error("timer tag must not be anchor or custom")
	}
}
