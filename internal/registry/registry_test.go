package registry

import (
	"os"
	"path/filepath"
	"testing"
)

func tempRegistry(t *testing.T) *Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "printer_registry.json")
	reg, err := New(path)
	if err != nil {
		t.Fatalf("Failed to create registry: %v", err)
	}
	return reg
}

func TestNew(t *testing.T) {
	reg := tempRegistry(t)
	if reg == nil {
		t.Fatal("Registry is nil")
	}
}

func TestGetPrinterID_CUPS(t *testing.T) {
	reg := tempRegistry(t)

	info := PrinterInfo{
		Type:        "cups",
		Queue:       "DYMO_LabelWriter_4XL",
		Description: "CUPS: DYMO_LabelWriter_4XL",
	}

	id1 := reg.GetPrinterID(info)
	if id1 == "" {
		t.Error("Expected non-empty printer ID")
	}

	// Same queue must yield the same ID
	id2 := reg.GetPrinterID(info)
	if id1 != id2 {
		t.Errorf("Expected same ID for same printer: %s != %s", id1, id2)
	}
}

func TestGetPrinterID_USB(t *testing.T) {
	reg := tempRegistry(t)

	info := PrinterInfo{
		Type:        "usb",
		VID:         0x0922, // Dymo
		PID:         0x0028,
		Description: "USB: DYMO LabelWriter 450",
	}

	id1 := reg.GetPrinterID(info)
	id2 := reg.GetPrinterID(info)
	if id1 != id2 {
		t.Errorf("Expected same ID for same printer: %s != %s", id1, id2)
	}

	other := reg.GetPrinterID(PrinterInfo{
		Type: "usb", VID: 0x0922, PID: 0x0029, Description: "USB: DYMO LabelWriter 4XL",
	})
	if other == id1 {
		t.Error("Expected different IDs for different devices")
	}
}

func TestGetPrinterID_PersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")

	reg, err := New(path)
	if err != nil {
		t.Fatalf("Failed to create registry: %v", err)
	}
	info := PrinterInfo{Type: "cups", Queue: "dymo", Description: "CUPS: dymo"}
	id := reg.GetPrinterID(info)

	reloaded, err := New(path)
	if err != nil {
		t.Fatalf("Failed to reload registry: %v", err)
	}
	if got := reloaded.GetPrinterID(info); got != id {
		t.Errorf("Expected persisted ID %s, got %s", id, got)
	}
}

func TestSetPrinterName(t *testing.T) {
	reg := tempRegistry(t)

	id := reg.GetPrinterID(PrinterInfo{Type: "serial", Device: "/dev/ttyUSB0", Description: "Serial: ttyUSB0"})

	if !reg.SetPrinterName(id, "Warehouse Labeler") {
		t.Fatal("Expected SetPrinterName to succeed")
	}
	if got := reg.GetPrinterName(id); got != "Warehouse Labeler" {
		t.Errorf("Expected custom name, got %q", got)
	}

	if reg.SetPrinterName("no-such-id", "x") {
		t.Error("Expected SetPrinterName to fail for unknown ID")
	}
}

func TestSetDefaultLabel(t *testing.T) {
	reg := tempRegistry(t)

	id := reg.GetPrinterID(PrinterInfo{Type: "cups", Queue: "dymo", Description: "CUPS: dymo"})

	if !reg.SetDefaultLabel(id, "30256") {
		t.Fatal("Expected SetDefaultLabel to succeed")
	}
	if got := reg.GetDefaultLabel(id); got != "30256" {
		t.Errorf("Expected default label 30256, got %q", got)
	}
}

func TestRemovePrinter(t *testing.T) {
	reg := tempRegistry(t)

	id := reg.GetPrinterID(PrinterInfo{Type: "network", Host: "10.0.0.5", Port: 9100, Description: "Network: 10.0.0.5:9100"})

	if !reg.RemovePrinter(id) {
		t.Fatal("Expected RemovePrinter to succeed")
	}
	if reg.GetPrinterInfo(id) != nil {
		t.Error("Expected printer gone after removal")
	}
}

func TestNew_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, err := New(path); err == nil {
		t.Error("Expected error for corrupt registry file")
	}
}
