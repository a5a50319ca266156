package viterbi

import (
	"reflect"
	"testing"
)

func flyingDecoder() *Decoder {
	return NewDecoder(
		[]float64{0.80, 0.20},
		[][]float64{
			{0.9995, 0.0005},
			{0.0005, 0.9995},
		},
		[][]float64{
			{0.8, 0.2},
			{0.2, 0.8},
		},
	)
}

func TestDecodeEmptySequence(t *testing.T) {
	d := flyingDecoder()
	out := d.Decode(nil)
	if len(out) != 0 {
		t.Fatalf("expected empty path, got %v", out)
	}
}

func TestDecodeAllStanding(t *testing.T) {
	d := flyingDecoder()
	obs := make([]int, 20)
	out := d.Decode(obs)
	for i, s := range out {
		if s != 0 {
			t.Fatalf("index %d: expected state 0 (standing) for all-zero emissions, got %d", i, s)
		}
	}
}

func TestDecodeAllFlying(t *testing.T) {
	d := flyingDecoder()
	obs := make([]int, 20)
	for i := range obs {
		obs[i] = 1
	}
	out := d.Decode(obs)
	for i, s := range out {
		if s != 1 {
			t.Fatalf("index %d: expected state 1 (flying) for all-one emissions, got %d", i, s)
		}
	}
}

func TestDecodeDeterministic(t *testing.T) {
	d := flyingDecoder()
	obs := []int{0, 0, 1, 1, 1, 0, 1, 0, 0, 1}
	a := d.Decode(obs)
	b := d.Decode(obs)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("decode not deterministic: %v vs %v", a, b)
	}
}

func TestDecodeBriefDipStaysStanding(t *testing.T) {
	// With heavily self-biased transitions, a single-step blip should not
	// flip the whole decoded run; the transition cost dominates.
	d := flyingDecoder()
	obs := make([]int, 30)
	obs[15] = 1
	out := d.Decode(obs)
	standingCount := 0
	for _, s := range out {
		if s == 0 {
			standingCount++
		}
	}
	if standingCount < 25 {
		t.Fatalf("expected a single blip to mostly decode as standing, got %d standing out of 30", standingCount)
	}
}

func TestDecodePanicsOnBadObservation(t *testing.T) {
	d := flyingDecoder()
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on out-of-alphabet observation")
		}
	}()
	d.Decode([]int{0, 1, 2})
}

func TestNewDecoderPanicsOnBadShape(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on malformed init probs")
		}
	}()
	NewDecoder([]float64{1.0}, [][]float64{{0.5, 0.5}, {0.5, 0.5}}, [][]float64{{0.5, 0.5}, {0.5, 0.5}})
}

func TestCirclingDecoderMatchesContract(t *testing.T) {
	d := NewDecoder(
		[]float64{0.80, 0.20},
		[][]float64{
			{0.982, 0.018},
			{0.030, 0.970},
		},
		[][]float64{
			{0.942, 0.058},
			{0.093, 0.907},
		},
	)
	obs := append(append(make([]int, 10), ones(20)...), make([]int, 10)...)
	out := d.Decode(obs)
	if len(out) != len(obs) {
		t.Fatalf("expected path length %d, got %d", len(obs), len(out))
	}
	circling := 0
	for _, s := range out[10:30] {
		if s == 1 {
			circling++
		}
	}
	if circling < 15 {
		t.Fatalf("expected most of the middle run decoded as circling, got %d/20", circling)
	}
}

func ones(n int) []int {
	o := make([]int, n)
	for i := range o {
		o[i] = 1
	}
	return o
}
