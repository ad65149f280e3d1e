package layout

import (
	"math"
	"reflect"
	"testing"
)

func TestParamsFor(t *testing.T) {
	tests := []struct {
		class DeviceClass
		want  ScatterParams
	}{
		{Mobile, ScatterParams{MaxRotate: 8, MaxShiftX: 40, MaxShiftY: 40, FocusScale: 1.05}},
		{Tablet, ScatterParams{MaxRotate: 12, MaxShiftX: 150, MaxShiftY: 120, FocusScale: 1.06}},
		{Desktop, ScatterParams{MaxRotate: 15, MaxShiftX: 290, MaxShiftY: 200, FocusScale: 1.08}},
	}

	for _, tt := range tests {
		t.Run(tt.class.String(), func(t *testing.T) {
			if got := ParamsFor(tt.class); got != tt.want {
				t.Errorf("ParamsFor(%v) = %+v, want %+v", tt.class, got, tt.want)
			}
		})
	}
}

func TestPileSeedDeterminism(t *testing.T) {
	cards := mkCards(6)

	a := NewPile(cards, Desktop, 42)
	b := NewPile(cards, Desktop, 42)
	if !reflect.DeepEqual(a.Placements(), b.Placements()) {
		t.Error("same seed should scatter identically")
	}

	c := NewPile(cards, Desktop, 43)
	if reflect.DeepEqual(a.Placements(), c.Placements()) {
		t.Error("different seeds should scatter differently")
	}
}

func TestPileBounds(t *testing.T) {
	for _, class := range []DeviceClass{Mobile, Tablet, Desktop} {
		t.Run(class.String(), func(t *testing.T) {
			params := ParamsFor(class)
			p := NewPile(mkCards(25), class, 7)

			for _, pl := range p.Placements() {
				if math.Abs(pl.Rotation) > params.MaxRotate {
					t.Errorf("card %s rotation %v exceeds ±%v", pl.CardID, pl.Rotation, params.MaxRotate)
				}
				if math.Abs(pl.DX) > params.MaxShiftX {
					t.Errorf("card %s dx %v exceeds ±%v", pl.CardID, pl.DX, params.MaxShiftX)
				}
				if math.Abs(pl.DY) > params.MaxShiftY {
					t.Errorf("card %s dy %v exceeds ±%v", pl.CardID, pl.DY, params.MaxShiftY)
				}
			}
		})
	}
}

func TestPileZOrderIsPermutation(t *testing.T) {
	p := NewPile(mkCards(10), Desktop, 1)

	seen := make(map[int]bool)
	for _, pl := range p.Placements() {
		if pl.Z < 1 || pl.Z > 10 {
			t.Errorf("z = %d out of range [1,10]", pl.Z)
		}
		if seen[pl.Z] {
			t.Errorf("duplicate z %d", pl.Z)
		}
		seen[pl.Z] = true
	}
}

func TestPileFocusRaisesAndDims(t *testing.T) {
	cards := mkCards(5)
	p := NewPile(cards, Desktop, 9)

	if !p.Focus("c2") {
		t.Fatal("Focus(c2) should succeed")
	}

	params := ParamsFor(Desktop)
	for _, st := range p.States() {
		if st.CardID == "c2" {
			if !st.Raised {
				t.Error("focused card should be raised")
			}
			if st.Rotation != 0 {
				t.Errorf("focused rotation = %v, want 0", st.Rotation)
			}
			if st.Scale != params.FocusScale {
				t.Errorf("focused scale = %v, want %v", st.Scale, params.FocusScale)
			}
			if st.Z != len(cards)+1 {
				t.Errorf("focused z = %d, want above all (%d)", st.Z, len(cards)+1)
			}
			if st.Dimmed {
				t.Error("focused card should not be dimmed")
			}
		} else {
			if !st.Dimmed {
				t.Errorf("sibling %s should be dimmed", st.CardID)
			}
			if st.Raised {
				t.Errorf("sibling %s should not be raised", st.CardID)
			}
		}
	}
}

func TestPileBlurRestoresResting(t *testing.T) {
	p := NewPile(mkCards(4), Tablet, 3)
	resting := p.Placements()

	p.Focus("c1")
	p.Blur()

	if _, ok := p.Focused(); ok {
		t.Error("Blur should clear focus")
	}
	for i, st := range p.States() {
		if st.Placement != resting[i] {
			t.Errorf("card %s state %+v, want resting %+v", st.CardID, st.Placement, resting[i])
		}
		if st.Dimmed || st.Raised || st.Scale != 1 {
			t.Errorf("card %s should be fully at rest", st.CardID)
		}
	}
}

func TestPileFocusUnknownCard(t *testing.T) {
	p := NewPile(mkCards(3), Mobile, 5)
	if p.Focus("nope") {
		t.Error("focusing an unknown card should fail")
	}
	if _, ok := p.Focused(); ok {
		t.Error("failed focus should not set a focused card")
	}
}

func TestPileResizeWithinClassIsNoop(t *testing.T) {
	p := NewPile(mkCards(6), Desktop, 11)
	before := p.Placements()

	if p.Resize(1920) {
		t.Error("resize within desktop should be a no-op")
	}
	if !reflect.DeepEqual(before, p.Placements()) {
		t.Error("placements should survive a same-class resize")
	}
}

func TestPileResizeAcrossClassRescatters(t *testing.T) {
	p := NewPile(mkCards(6), Desktop, 11)
	before := p.Placements()

	if !p.Resize(800) {
		t.Fatal("desktop to tablet should re-scatter")
	}
	if p.Class() != Tablet {
		t.Errorf("Class = %v, want Tablet", p.Class())
	}
	if reflect.DeepEqual(before, p.Placements()) {
		t.Error("crossing a class boundary should produce new placements")
	}
}

func TestPileResizeClearsFocus(t *testing.T) {
	p := NewPile(mkCards(4), Desktop, 2)
	p.Focus("c0")

	p.Resize(375)

	if _, ok := p.Focused(); ok {
		t.Error("re-scatter should drop focus")
	}
}

func TestPileSetCards(t *testing.T) {
	p := NewPile(mkCards(3), Desktop, 8)
	p.Focus("c1")

	p.SetCards(mkCards(5))

	if _, ok := p.Focused(); ok {
		t.Error("SetCards should drop focus")
	}
	if got := len(p.Placements()); got != 5 {
		t.Errorf("placements = %d, want 5", got)
	}
}
