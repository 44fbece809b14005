package sky

import "testing"

func TestFilter(t *testing.T) {
	f := NewFilter([]string{"micro", "small", "medium"})
	if f.State() != FilterAll || f.Icon() != "🔍" {
		t.Fatalf("new filter state = %v icon = %s", f.State(), f.Icon())
	}

	f.Toggle("small")
	if !f.Selected("small") {
		t.Error("Toggle should not apply before Apply()")
	}
	if f.Pending("small") {
		t.Error("small should be unchecked in the staged selection")
	}
	f.Apply()
	if f.Selected("small") || f.State() != FilterPartial || f.Icon() != "⚡2" {
		t.Errorf("after apply: selected=%v state=%v icon=%s", f.Selected("small"), f.State(), f.Icon())
	}

	f.SelectNone()
	f.Reset()
	if !f.Pending("micro") {
		t.Error("Reset should restore the applied selection")
	}

	f.SelectNone()
	f.Apply()
	if f.State() != FilterNone || f.Icon() != "🚫" || f.Count() != 0 {
		t.Errorf("none: state=%v icon=%s", f.State(), f.Icon())
	}

	f.SelectAll()
	f.Apply()
	if f.State() != FilterAll {
		t.Errorf("all: state=%v", f.State())
	}

	f.Toggle("unknown")
	if f.Pending("unknown") {
		t.Error("unknown tiers should be ignored")
	}
}

func TestNilFilterSelectsEverything(t *testing.T) {
	var f *Filter
	if !f.Selected("anything") {
		t.Error("nil filter should select every tier")
	}
}
