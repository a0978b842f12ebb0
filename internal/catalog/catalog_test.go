package catalog

import (
	"errors"
	"testing"
)

func TestAllPackages(t *testing.T) {
	all := All()
	if len(all) != 3 {
		t.Fatalf("catalog size = %d, want 3", len(all))
	}
	want := map[string]int{"starter": 5, "pro": 15, "unlimited": UnlimitedRoasts}
	for _, p := range all {
		roasts, ok := want[p.ID]
		if !ok {
			t.Fatalf("unexpected package %q", p.ID)
		}
		if p.Roasts != roasts {
			t.Errorf("%s roasts = %d, want %d", p.ID, p.Roasts, roasts)
		}
		delete(want, p.ID)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	first := All()
	first[0].Roasts = 1000
	if got := All()[0].Roasts; got == 1000 {
		t.Fatal("All exposed the backing array")
	}
}

func TestByID(t *testing.T) {
	p, err := ByID("pro")
	if err != nil {
		t.Fatalf("ByID(pro): %v", err)
	}
	if p.Roasts != 15 || p.PriceUSD != 12 {
		t.Fatalf("unexpected pro package: %+v", p)
	}

	if _, err := ByID("mega"); !errors.Is(err, ErrUnknownPackage) {
		t.Fatalf("ByID(mega) err = %v, want ErrUnknownPackage", err)
	}
	if _, err := ByID(""); !errors.Is(err, ErrUnknownPackage) {
		t.Fatalf("ByID(\"\") err = %v, want ErrUnknownPackage", err)
	}
}
