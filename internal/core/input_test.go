package core

import (
	"testing"
	"time"
)

func TestInputFrameHitAndHeld(t *testing.T) {
	f := NewInputFrame(time.Unix(0, 0))
	f.Press(ActionConfirm)
	f.Hold(ActionDown)

	if !f.Hit(ActionConfirm) {
		t.Error("pressed key with edge should be a hit")
	}
	if f.Hit(ActionDown) {
		t.Error("held key without edge should not be a hit")
	}
	if !f.Held(ActionDown) {
		t.Error("held key should report Held")
	}
	if !f.AnyChanged() {
		t.Error("frame with an edge should report AnyChanged")
	}
	if f.Held(Action(-1)) || f.Held(actionCount) {
		t.Error("out-of-range actions should read as released")
	}
}

func TestKeyTrackerEdges(t *testing.T) {
	start := time.Unix(100, 0)
	tr := NewKeyTracker(100 * time.Millisecond)

	tr.Press(ActionLeft, start)
	f := tr.Poll(start)
	if !f.Hit(ActionLeft) {
		t.Fatal("first poll after a press should report a rising edge")
	}

	// Still inside the release window: held, no edge.
	f = tr.Poll(start.Add(50 * time.Millisecond))
	if !f.Held(ActionLeft) || f.Key(ActionLeft).Changed {
		t.Errorf("key should be held without edge, got %+v", f.Key(ActionLeft))
	}

	// Window elapsed: falling edge.
	f = tr.Poll(start.Add(150 * time.Millisecond))
	k := f.Key(ActionLeft)
	if k.Pressed || !k.Changed {
		t.Errorf("expected falling edge, got %+v", k)
	}

	// Quiet after release.
	f = tr.Poll(start.Add(200 * time.Millisecond))
	if f.AnyChanged() {
		t.Error("no key should change once released")
	}
}

func TestKeyTrackerRepeatKeepsKeyHeld(t *testing.T) {
	start := time.Unix(100, 0)
	tr := NewKeyTracker(100 * time.Millisecond)

	tr.Press(ActionDown, start)
	tr.Poll(start)
	for i := 1; i <= 5; i++ {
		at := start.Add(time.Duration(i) * 60 * time.Millisecond)
		tr.Press(ActionDown, at)
		f := tr.Poll(at)
		if !f.Held(ActionDown) || f.Key(ActionDown).Changed {
			t.Fatalf("repeat %d should keep the key held without edges", i)
		}
	}
}

func TestKeyTrackerRunes(t *testing.T) {
	tr := NewKeyTracker(100 * time.Millisecond)
	tr.Type('a')
	tr.Type('b')

	f := tr.Poll(time.Unix(0, 0))
	if string(f.Runes) != "ab" {
		t.Errorf("Runes = %q, expected %q", string(f.Runes), "ab")
	}
	f = tr.Poll(time.Unix(1, 0))
	if len(f.Runes) != 0 {
		t.Error("runes should be consumed by the poll that returned them")
	}
}

func TestActionString(t *testing.T) {
	for _, a := range Actions() {
		if a.String() == "Unknown" {
			t.Errorf("action %d has no name", a)
		}
	}
	if Action(99).String() != "Unknown" {
		t.Error("out-of-range action should be Unknown")
	}
}
