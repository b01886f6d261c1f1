// Copyright 2026 The Cafe Authors
// SPDX-License-Identifier: Apache-2.0

package cafe

import (
	"reflect"
	"testing"
)

func TestParseOrderLine(t *testing.T) {
	cases := []struct {
		name        string
		line        string
		wantItems   []Item
		wantSkipped []string
	}{
		{
			name:      "single item",
			line:      "2 tea",
			wantItems: []Item{{Quantity: 2, Category: Tea}},
		},
		{
			name: "two items joined by and",
			line: "2 tea and 1 coffee",
			wantItems: []Item{
				{Quantity: 2, Category: Tea},
				{Quantity: 1, Category: Coffee},
			},
		},
		{
			name:      "leading order token stripped",
			line:      "order 3 coffee",
			wantItems: []Item{{Quantity: 3, Category: Coffee}},
		},
		{
			name:      "case insensitive category and separator",
			line:      "1 TEA AND 2 Coffee",
			wantItems: []Item{{Quantity: 1, Category: Tea}, {Quantity: 2, Category: Coffee}},
		},
		{
			name:        "malformed term skipped, rest still parses",
			line:        "2 tea and a lot of coffee and 1 coffee",
			wantItems:   []Item{{Quantity: 2, Category: Tea}, {Quantity: 1, Category: Coffee}},
			wantSkipped: []string{"a lot of coffee"},
		},
		{
			name:        "unknown category skipped",
			line:        "2 soda",
			wantSkipped: []string{"2 soda"},
		},
		{
			name:        "zero quantity skipped",
			line:        "0 tea",
			wantSkipped: []string{"0 tea"},
		},
		{
			name: "empty line",
			line: "",
		},
		{
			name: "just the order token",
			line: "order",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, skipped := ParseOrderLine(tc.line)
			if !reflect.DeepEqual(items, tc.wantItems) {
				t.Errorf("items = %+v, want %+v", items, tc.wantItems)
			}
			if !reflect.DeepEqual(skipped, tc.wantSkipped) {
				t.Errorf("skipped = %+v, want %+v", skipped, tc.wantSkipped)
			}
		})
	}
}
