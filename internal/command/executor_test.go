package command

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/osbock/dymo-picture-print/internal/printer"
)

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()

	manager, err := printer.NewManager(filepath.Join(t.TempDir(), "registry.json"))
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	pool := printer.NewConnectionPool()
	queue := printer.NewPrintQueue(pool, manager, 1)
	t.Cleanup(queue.Stop)

	return NewExecutor(manager, pool, queue, nil)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"print auto photo.png", []string{"print", "auto", "photo.png"}},
		{`print auto text:"HELLO WORLD"`, []string{"print", "auto", "text:HELLO WORLD"}},
		{`printer rename abc 'Warehouse Labeler'`, []string{"printer", "rename", "abc", "Warehouse Labeler"}},
		{`print auto "it's here"`, []string{"print", "auto", "it's here"}},
		{"  spaced   out  ", []string{"spaced", "out"}},
		{"", []string{}},
	}

	for _, tt := range tests {
		got := parseCommand(tt.input)
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("parseCommand(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestParseJobFlags(t *testing.T) {
	flags, err := parseJobFlags([]string{
		"--label", "30252",
		"--algorithm", "atkinson",
		"--brightness", "0.9",
		"--contrast", "1.5",
		"--option", "Darkness=10",
	})
	if err != nil {
		t.Fatalf("parseJobFlags failed: %v", err)
	}

	if flags.label != "30252" {
		t.Errorf("Expected label 30252, got %q", flags.label)
	}
	if flags.pipeline.Dither.Algorithm != "atkinson" {
		t.Errorf("Expected atkinson, got %q", flags.pipeline.Dither.Algorithm)
	}
	if flags.pipeline.Settings.Brightness != 0.9 || flags.pipeline.Settings.Contrast != 1.5 {
		t.Errorf("Unexpected settings: %+v", flags.pipeline.Settings)
	}
	if !reflect.DeepEqual(flags.options, []string{"Darkness=10"}) {
		t.Errorf("Unexpected options: %v", flags.options)
	}
}

func TestParseJobFlags_Defaults(t *testing.T) {
	flags, err := parseJobFlags(nil)
	if err != nil {
		t.Fatalf("parseJobFlags failed: %v", err)
	}
	if flags.pipeline.Dither.Algorithm != "floyd-steinberg" {
		t.Errorf("Expected floyd-steinberg default, got %q", flags.pipeline.Dither.Algorithm)
	}
	if flags.pipeline.Settings.Brightness != 1.2 {
		t.Errorf("Expected default brightness 1.2, got %g", flags.pipeline.Settings.Brightness)
	}
}

func TestParseJobFlags_Errors(t *testing.T) {
	if _, err := parseJobFlags([]string{"stray"}); err == nil {
		t.Error("Expected error for non-flag argument")
	}
	if _, err := parseJobFlags([]string{"--label"}); err == nil {
		t.Error("Expected error for flag without value")
	}
	if _, err := parseJobFlags([]string{"--brightness", "loud"}); err == nil {
		t.Error("Expected error for non-numeric brightness")
	}
	if _, err := parseJobFlags([]string{"--frobnicate", "yes"}); err == nil {
		t.Error("Expected error for unknown flag")
	}
}

func TestExecute_EmptyAndUnknown(t *testing.T) {
	e := newTestExecutor(t)

	if result := e.Execute(""); result.Success {
		t.Error("Expected failure for empty command")
	}
	if result := e.Execute("frobnicate"); result.Success {
		t.Error("Expected failure for unknown command")
	}
}

func TestExecute_Help(t *testing.T) {
	e := newTestExecutor(t)

	result := e.Execute("help")
	if !result.Success {
		t.Fatalf("help failed: %s", result.Error)
	}
	if result.Message == "" {
		t.Error("Expected help text")
	}
}

func TestExecute_LabelList(t *testing.T) {
	e := newTestExecutor(t)

	result := e.Execute("label list")
	if !result.Success {
		t.Fatalf("label list failed: %s", result.Error)
	}

	labels, ok := result.Data["labels"].([]map[string]interface{})
	if !ok || len(labels) == 0 {
		t.Fatal("Expected label entries in result data")
	}

	found := false
	for _, l := range labels {
		if l["code"] == "30256" {
			found = true
			if l["width_px"] != 694 || l["height_px"] != 1200 {
				t.Errorf("Expected 694x1200 for 30256, got %vx%v", l["width_px"], l["height_px"])
			}
		}
	}
	if !found {
		t.Error("Expected builtin label 30256 in listing")
	}
}

func TestExecute_PrintUnknownPrinter(t *testing.T) {
	e := newTestExecutor(t)

	result := e.Execute("print no-such-printer photo.png")
	if result.Success {
		t.Error("Expected failure for unknown printer")
	}
}

func TestExecute_PrinterAddNetworkAndRename(t *testing.T) {
	e := newTestExecutor(t)

	result := e.Execute("printer add-network 10.0.0.5 9100")
	if !result.Success {
		t.Fatalf("add-network failed: %s", result.Error)
	}
	printerID, _ := result.Data["printer_id"].(string)
	if printerID == "" {
		t.Fatal("Expected printer_id in result")
	}

	result = e.Execute(fmt.Sprintf(`printer rename %s "Shipping Desk"`, printerID))
	if !result.Success {
		t.Fatalf("rename failed: %s", result.Error)
	}

	result = e.Execute(fmt.Sprintf("printer set-label %s 30256", printerID))
	if !result.Success {
		t.Fatalf("set-label failed: %s", result.Error)
	}

	if result := e.Execute(fmt.Sprintf("printer set-label %s bogus", printerID)); result.Success {
		t.Error("Expected failure for unknown label code")
	}
}

func TestExecute_Preview(t *testing.T) {
	e := newTestExecutor(t)
	dir := t.TempDir()

	src := filepath.Join(dir, "src.png")
	f, err := os.Create(src)
	if err != nil {
		t.Fatalf("Failed to create source: %v", err)
	}
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 20, 30))); err != nil {
		t.Fatalf("Failed to encode source: %v", err)
	}
	f.Close()

	out := filepath.Join(dir, "out.png")
	result := e.Execute(fmt.Sprintf("preview %s --label 30334 --out %s", src, out))
	if !result.Success {
		t.Fatalf("preview failed: %s", result.Error)
	}

	g, err := os.Open(out)
	if err != nil {
		t.Fatalf("Expected preview file: %v", err)
	}
	defer g.Close()

	img, err := png.Decode(g)
	if err != nil {
		t.Fatalf("Preview is not a valid PNG: %v", err)
	}
	// 30334 is 2.25x1.25in at 300 dpi
	if img.Bounds().Dx() != 675 || img.Bounds().Dy() != 375 {
		t.Errorf("Expected 675x375 preview, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestExecute_PreviewInlineSources(t *testing.T) {
	e := newTestExecutor(t)
	dir := t.TempDir()

	for _, ref := range []string{`text:"SHIP TO|AUSTIN TX"`, `qr:"https://example.com/track/1"`, `barcode:"PKG-0042"`} {
		out := filepath.Join(dir, "out.png")
		result := e.Execute(fmt.Sprintf("preview %s --label 30256 --out %s", ref, out))
		if !result.Success {
			t.Errorf("preview of %s failed: %s", ref, result.Error)
		}
	}
}

func TestExecute_JobList(t *testing.T) {
	e := newTestExecutor(t)

	result := e.Execute("job list")
	if !result.Success {
		t.Fatalf("job list failed: %s", result.Error)
	}

	if result := e.Execute("job status nope"); result.Success {
		t.Error("Expected failure for unknown job")
	}

	if result := e.Execute("job clear"); !result.Success {
		t.Errorf("job clear failed: %s", result.Error)
	}
}
