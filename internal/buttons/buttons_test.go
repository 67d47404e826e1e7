package buttons

import (
	"reflect"
	"testing"
)

func TestTrackerEmitsEdgesOnly(t *testing.T) {
	tracker := NewTracker(4)

	steps := []struct {
		name   string
		states []bool
		want   []Event
	}{
		{"idle", []bool{false, false, false, false}, nil},
		{"press 1", []bool{false, true, false, false}, []Event{{Key: 1, Pressed: true}}},
		{"held", []bool{false, true, false, false}, nil},
		{"press 3 release 1", []bool{false, false, false, true}, []Event{{Key: 1, Pressed: false}, {Key: 3, Pressed: true}}},
		{"short report", []bool{true}, []Event{{Key: 0, Pressed: true}, {Key: 3, Pressed: false}}},
		{"long report", []bool{true, false, false, false, true, true}, nil},
	}
	for _, step := range steps {
		got := tracker.Update(step.states)
		if !reflect.DeepEqual(got, step.want) {
			t.Fatalf("%s: got %v, want %v", step.name, got, step.want)
		}
	}
}

func TestTrackerSet(t *testing.T) {
	tracker := NewTracker(2)

	if _, ok := tracker.Set(0, false); ok {
		t.Fatal("release of a released key must not emit")
	}
	if ev, ok := tracker.Set(0, true); !ok || ev != (Event{Key: 0, Pressed: true}) {
		t.Fatalf("press = %v, %t", ev, ok)
	}
	if _, ok := tracker.Set(0, true); ok {
		t.Fatal("repeated press must not emit")
	}
	if _, ok := tracker.Set(5, true); ok {
		t.Fatal("out of range key must not emit")
	}

	tracker.Reset()
	if _, ok := tracker.Set(0, true); !ok {
		t.Fatal("press after reset must emit")
	}
}
