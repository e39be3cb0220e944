package labelspec

import (
	"fmt"
	"strings"
)

// Validate validates a Catalog structure
func Validate(c *Catalog) error {
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected 1.0)", c.Version)
	}

	if len(c.Labels) == 0 {
		return fmt.Errorf("at least one label is required")
	}

	codes := make(map[string]bool)
	for i, label := range c.Labels {
		if err := validateLabel(&label); err != nil {
			return fmt.Errorf("label[%d]: %w", i, err)
		}
		if codes[label.Code] {
			return fmt.Errorf("label[%d]: duplicate code '%s'", i, label.Code)
		}
		codes[label.Code] = true
	}

	return nil
}

func validateLabel(l *Label) error {
	if l.Code == "" {
		return fmt.Errorf("'code' is required")
	}
	if strings.ContainsAny(l.Code, " \t") {
		return fmt.Errorf("code '%s' must not contain whitespace", l.Code)
	}

	if l.WidthIn <= 0 {
		return fmt.Errorf("label '%s': width_in must be positive, got %g", l.Code, l.WidthIn)
	}
	if l.HeightIn <= 0 {
		return fmt.Errorf("label '%s': height_in must be positive, got %g", l.Code, l.HeightIn)
	}
	if l.DPI <= 0 {
		return fmt.Errorf("label '%s': dpi must be positive, got %g", l.Code, l.DPI)
	}

	for _, opt := range l.Options {
		if !strings.Contains(opt, "=") {
			return fmt.Errorf("label '%s': option '%s' must be in key=value form", l.Code, opt)
		}
	}

	return nil
}
