package abi

import "testing"

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"itanium", Itanium, false},
		{"GCC", Itanium, false},
		{"clang", Itanium, false},
		{"msvc", Microsoft, false},
		{"Microsoft", Microsoft, false},
		{"arm", Itanium, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseMode(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if err == nil && got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestOwnSlots(t *testing.T) {
	tests := []struct {
		name  string
		mode  Mode
		shape Shape
		want  []SlotKind
	}{
		{"itanium no bases", Itanium, Shape{}, []SlotKind{SlotVptr, SlotData}},
		{"itanium virtual only", Itanium, Shape{DirectBases: 2, VirtualDirectBases: 2}, []SlotKind{SlotVptr, SlotData}},
		{"itanium mixed", Itanium, Shape{DirectBases: 2, VirtualDirectBases: 1}, []SlotKind{SlotData}},
		{"itanium non-virtual", Itanium, Shape{DirectBases: 1}, []SlotKind{SlotData}},
		{"msvc no bases", Microsoft, Shape{}, []SlotKind{SlotVfptr, SlotData}},
		{"msvc virtual base", Microsoft, Shape{DirectBases: 1, VirtualDirectBases: 1}, []SlotKind{SlotVbptr, SlotData}},
		{"msvc shared vbptr", Microsoft, Shape{DirectBases: 2, VirtualDirectBases: 1, NonVirtualBaseHasVirtualBases: true}, []SlotKind{SlotData}},
		{"msvc non-virtual", Microsoft, Shape{DirectBases: 1}, []SlotKind{SlotData}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ForMode(tc.mode).OwnSlots(tc.shape)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("slot %d: got %v, want %v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestOwnSizeUsesPointerSize(t *testing.T) {
	target := Target{Mode: Itanium, PointerSize: 4}
	if got := target.OwnSize(Shape{}); got != 8 {
		t.Errorf("got %d, want 8", got)
	}
	if got := ForMode(Microsoft).OwnSize(Shape{}); got != 16 {
		t.Errorf("got %d, want 16", got)
	}
}

func TestValidate(t *testing.T) {
	if err := ForMode(Itanium).Validate(); err != nil {
		t.Errorf("default target: %v", err)
	}
	if err := (Target{Mode: Microsoft, PointerSize: 6}).Validate(); err == nil {
		t.Error("expected error for pointer size 6")
	}
}
