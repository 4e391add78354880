package types

import "testing"

func TestAddressRoundTripThroughDriverValue(t *testing.T) {
	line2 := "Apt 4"
	in := Address{Line1: "1 Main St", Line2: &line2, City: "Pune", PostalCode: "411001", Country: "IN"}

	value, err := in.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var out Address
	if err := out.Scan([]byte(value.(string))); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if out.Line1 != in.Line1 || out.City != in.City || out.Line2 == nil || *out.Line2 != line2 {
		t.Fatalf("unexpected address after scan: %+v", out)
	}
}

func TestAddressScanNilResets(t *testing.T) {
	addr := Address{Line1: "x"}
	if err := addr.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if addr.Line1 != "" {
		t.Fatalf("expected zero address, got %+v", addr)
	}
	if err := addr.Scan(42); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}

func TestAddressMissing(t *testing.T) {
	missing := Address{City: "Pune"}.Missing()
	want := []string{"line1", "postal_code", "country"}
	if len(missing) != len(want) {
		t.Fatalf("expected %v got %v", want, missing)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Fatalf("expected %v got %v", want, missing)
		}
	}
}
