package clock

import "testing"

func TestMockAdvance(t *testing.T) {
	m := NewMock(1000)
	if m.NowMs() != 1000 {
		t.Fatalf("NowMs() = %d, want 1000", m.NowMs())
	}
	m.Advance(500)
	if m.NowMs() != 1500 {
		t.Fatalf("NowMs() = %d, want 1500", m.NowMs())
	}
	m.Set(42)
	if m.NowMs() != 42 {
		t.Fatalf("NowMs() = %d, want 42", m.NowMs())
	}
}

func TestRealAdvances(t *testing.T) {
	var c Clock = Real{}
	a := c.NowMs()
	b := c.NowMs()
	if b < a {
		t.Fatalf("real clock went backwards: %d -> %d", a, b)
	}
}
