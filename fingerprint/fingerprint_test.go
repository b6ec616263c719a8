package fingerprint

import "testing"

func TestStructure_IgnoresText(t *testing.T) {
	a := `<html><body><div class="cards-container"><div class="adaptive-card">One</div></div></body></html>`
	b := `<html><body><div class="cards-container"><div class="adaptive-card">Two</div></div></body></html>`

	if Structure(a) != Structure(b) {
		t.Errorf("text-only change moved the fingerprint: distance %d", Distance(Structure(a), Structure(b)))
	}
}

func TestStructure_ClassOrderIrrelevant(t *testing.T) {
	a := `<html><body><div class="adaptive-card glitch-border"></div><canvas></canvas></body></html>`
	b := `<html><body><div class="glitch-border adaptive-card"></div><canvas></canvas></body></html>`

	if Structure(a) != Structure(b) {
		t.Error("class order should not change the fingerprint")
	}
}

func TestStructure_ClassChangeDetected(t *testing.T) {
	a := `<html><body><main><div class="view home"></div><div class="adaptive-card"></div></main></body></html>`
	b := `<html><body><main><div class="view tech"></div><div class="adaptive-card"></div></main></body></html>`

	if Structure(a) == Structure(b) {
		t.Error("switching a view class should change the fingerprint")
	}
}

func TestStructure_Empty(t *testing.T) {
	if fp := Structure(""); fp != 0 {
		t.Errorf("empty document should hash to 0, got %064b", fp)
	}
	if fp := Structure("just some text"); fp != 0 {
		t.Errorf("document without elements should hash to 0, got %064b", fp)
	}
}

func TestStructure_ShortDocument(t *testing.T) {
	fp := Structure("<canvas></canvas>")
	if fp == 0 {
		t.Error("a single element should produce a non-zero fingerprint")
	}
	if fp != Structure("<canvas></canvas>") {
		t.Error("fingerprint is not deterministic")
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want int
	}{
		{"identical", 0xF0, 0xF0, 0},
		{"all different", 0, ^uint64(0), 64},
		{"one bit", 8, 0, 1},
		{"three bits", 0b111, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); got != tt.want {
				t.Errorf("Distance(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
