package labelspec

import (
	"errors"
	"testing"
)

func TestValidate_ValidCatalog(t *testing.T) {
	catalog := &Catalog{
		Version: "1.0",
		Labels: []Label{
			{Code: "30256", WidthIn: 2.3125, HeightIn: 4.0, DPI: 300},
		},
	}

	if err := Validate(catalog); err != nil {
		t.Errorf("Expected valid catalog, got error: %v", err)
	}
}

func TestValidate_MissingVersion(t *testing.T) {
	catalog := &Catalog{
		Labels: []Label{
			{Code: "30256", WidthIn: 2.3125, HeightIn: 4.0, DPI: 300},
		},
	}

	if err := Validate(catalog); err == nil {
		t.Error("Expected error for missing version")
	}
}

func TestValidate_InvalidVersion(t *testing.T) {
	catalog := &Catalog{
		Version: "2.0",
		Labels: []Label{
			{Code: "30256", WidthIn: 2.3125, HeightIn: 4.0, DPI: 300},
		},
	}

	if err := Validate(catalog); err == nil {
		t.Error("Expected error for invalid version")
	}
}

func TestValidate_NoLabels(t *testing.T) {
	catalog := &Catalog{Version: "1.0"}

	if err := Validate(catalog); err == nil {
		t.Error("Expected error for empty catalog")
	}
}

func TestValidate_DuplicateCode(t *testing.T) {
	catalog := &Catalog{
		Version: "1.0",
		Labels: []Label{
			{Code: "30256", WidthIn: 2.3125, HeightIn: 4.0, DPI: 300},
			{Code: "30256", WidthIn: 1.125, HeightIn: 3.5, DPI: 300},
		},
	}

	if err := Validate(catalog); err == nil {
		t.Error("Expected error for duplicate label code")
	}
}

func TestValidate_NonPositiveDimensions(t *testing.T) {
	bad := []Label{
		{Code: "a", WidthIn: 0, HeightIn: 4.0, DPI: 300},
		{Code: "b", WidthIn: 2.0, HeightIn: -1, DPI: 300},
		{Code: "c", WidthIn: 2.0, HeightIn: 4.0, DPI: 0},
	}

	for _, label := range bad {
		catalog := &Catalog{Version: "1.0", Labels: []Label{label}}
		if err := Validate(catalog); err == nil {
			t.Errorf("Expected error for label %q with non-positive dimension", label.Code)
		}
	}
}

func TestValidate_MalformedOption(t *testing.T) {
	catalog := &Catalog{
		Version: "1.0",
		Labels: []Label{
			{Code: "30256", WidthIn: 2.3125, HeightIn: 4.0, DPI: 300, Options: []string{"Darkness"}},
		},
	}

	if err := Validate(catalog); err == nil {
		t.Error("Expected error for option without key=value form")
	}
}

func TestGeometry_ShippingLabel(t *testing.T) {
	label := Label{Code: "30256", WidthIn: 2.3125, HeightIn: 4.0, DPI: 300}

	g, err := label.Geometry()
	if err != nil {
		t.Fatalf("Geometry failed: %v", err)
	}

	if g.WidthPx != 694 {
		t.Errorf("Expected width 694px, got %d", g.WidthPx)
	}
	if g.HeightPx != 1200 {
		t.Errorf("Expected height 1200px, got %d", g.HeightPx)
	}
	if !g.Portrait() {
		t.Error("Expected shipping label geometry to be portrait")
	}
}

func TestGeometry_RoundsToAtLeastOne(t *testing.T) {
	label := Label{Code: "tiny", WidthIn: 0.001, HeightIn: 0.001, DPI: 300}

	g, err := label.Geometry()
	if err != nil {
		t.Fatalf("Geometry failed: %v", err)
	}

	if g.WidthPx != 1 || g.HeightPx != 1 {
		t.Errorf("Expected 1x1 floor, got %dx%d", g.WidthPx, g.HeightPx)
	}
}

func TestGeometry_InvalidDimensions(t *testing.T) {
	label := Label{Code: "bad", WidthIn: -2, HeightIn: 4.0, DPI: 300}

	_, err := label.Geometry()
	if err == nil {
		t.Fatal("Expected error for negative width")
	}
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("Expected ErrInvalidGeometry, got %v", err)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	catalog := Builtin()

	data, err := catalog.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(parsed.Labels) != len(catalog.Labels) {
		t.Errorf("Expected %d labels, got %d", len(catalog.Labels), len(parsed.Labels))
	}
}

func TestParse_RejectsInvalid(t *testing.T) {
	_, err := Parse([]byte(`{"version":"1.0","labels":[]}`))
	if err == nil {
		t.Error("Expected error for catalog without labels")
	}

	_, err = Parse([]byte(`not json`))
	if err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestBuiltin_FindsKnownCodes(t *testing.T) {
	catalog := Builtin()

	if err := Validate(catalog); err != nil {
		t.Fatalf("Builtin catalog failed validation: %v", err)
	}

	for _, code := range []string{"30256", "30252", "30334", "99012", "4x6"} {
		if catalog.Find(code) == nil {
			t.Errorf("Expected builtin catalog to contain %s", code)
		}
	}

	if catalog.Find("bogus") != nil {
		t.Error("Expected nil for unknown code")
	}
}
