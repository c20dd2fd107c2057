package identity

import "testing"

func TestSatisfies(t *testing.T) {
	cases := []struct {
		name     string
		required Policy
		granted  []Policy
		want     bool
	}{
		{"group wildcard", "sale.getById", []Policy{"sale.*"}, true},
		{"other group", "sale.getById", []Policy{"product.*"}, false},
		{"universal", "sale.getById", []Policy{"*.*"}, true},
		{"empty grant", "x.y", nil, false},
		{"exact", "sale.getById", []Policy{"sale.getById"}, true},
		{"other action", "sale.getById", []Policy{"sale.getMany"}, false},
		{"action wildcard any group", "shop.getById", []Policy{"*.getById"}, true},
		{"no hierarchy", "sale.getById", []Policy{"sal.*"}, false},
		{"duplicates harmless", "shop.getById", []Policy{"shop.*", "shop.*"}, true},
		{"malformed grant skipped", "shop.getById", []Policy{"shop", "shop.getById"}, true},
		{"malformed grant only", "shop.getById", []Policy{"*"}, false},
		{"three segments", "shop.getById", []Policy{"shop.getById.x"}, false},
		{"malformed required", "shop", []Policy{"*.*"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Satisfies(tc.required, tc.granted); got != tc.want {
				t.Fatalf("Satisfies(%q, %v) = %v, want %v", tc.required, tc.granted, got, tc.want)
			}
		})
	}
}

func TestPolicySplit(t *testing.T) {
	group, action, ok := PolicyStockLevelGetByID.Split()
	if !ok || group != "stockLevel" || action != "getById" {
		t.Fatalf("unexpected split: %q %q %v", group, action, ok)
	}
	for _, p := range []Policy{"", ".", "a.", ".b", "a.b.c"} {
		if p.Valid() {
			t.Fatalf("expected %q to be invalid", p)
		}
	}
}
