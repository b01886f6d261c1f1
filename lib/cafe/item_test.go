// Copyright 2026 The Cafe Authors
// SPDX-License-Identifier: Apache-2.0

package cafe

import (
	"testing"
	"time"
)

func TestCategoryBrewDuration(t *testing.T) {
	cases := []struct {
		category Category
		want     time.Duration
	}{
		{Tea, 30 * time.Second},
		{Coffee, 45 * time.Second},
		{Category("soda"), 0},
	}
	for _, tc := range cases {
		if got := tc.category.BrewDuration(); got != tc.want {
			t.Errorf("Category(%q).BrewDuration() = %v, want %v", tc.category, got, tc.want)
		}
	}
}

func TestCategoryValid(t *testing.T) {
	if !Tea.Valid() {
		t.Error("Tea should be valid")
	}
	if !Coffee.Valid() {
		t.Error("Coffee should be valid")
	}
	if Category("soda").Valid() {
		t.Error("soda should not be valid")
	}
}

func TestNormalizeCategory(t *testing.T) {
	cases := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{"tea", Tea, false},
		{"  TEA  ", Tea, false},
		{"Coffee", Coffee, false},
		{"soda", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := NormalizeCategory(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("NormalizeCategory(%q) expected error, got nil", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeCategory(%q) unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestItemString(t *testing.T) {
	item := Item{Quantity: 2, Category: Tea}
	if got, want := item.String(), "2 tea"; got != want {
		t.Errorf("Item.String() = %q, want %q", got, want)
	}
}
