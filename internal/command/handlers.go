package command

import (
	"fmt"
	"image"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/osbock/dymo-picture-print/internal/pipeline"
	"github.com/osbock/dymo-picture-print/internal/source"
	"github.com/osbock/dymo-picture-print/pkg/labelspec"
)

// fallbackLabelCode is used when neither the command nor the printer
// names a label stock. Matches the shipping label the original tooling
// defaulted to.
const fallbackLabelCode = "30256"

// jobFlags are the per-job options shared by print and preview
type jobFlags struct {
	label    string
	out      string
	options  []string
	pipeline pipeline.Options
}

// parseJobFlags consumes --flag value pairs from args
func parseJobFlags(args []string) (jobFlags, error) {
	flags := jobFlags{pipeline: pipeline.DefaultOptions()}

	for i := 0; i < len(args); i++ {
		flag := args[i]
		if !strings.HasPrefix(flag, "--") {
			return flags, fmt.Errorf("unexpected argument: %s", flag)
		}
		if i+1 >= len(args) {
			return flags, fmt.Errorf("flag %s needs a value", flag)
		}
		value := args[i+1]
		i++

		switch flag {
		case "--label":
			flags.label = value
		case "--out":
			flags.out = value
		case "--algorithm":
			flags.pipeline.Dither.Algorithm = value
		case "--brightness":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return flags, fmt.Errorf("invalid brightness: %s", value)
			}
			flags.pipeline.Settings.Brightness = f
		case "--contrast":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return flags, fmt.Errorf("invalid contrast: %s", value)
			}
			flags.pipeline.Settings.Contrast = f
		case "--history":
			n, err := strconv.Atoi(value)
			if err != nil {
				return flags, fmt.Errorf("invalid history: %s", value)
			}
			flags.pipeline.Dither.History = n
		case "--ratio":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return flags, fmt.Errorf("invalid ratio: %s", value)
			}
			flags.pipeline.Dither.Ratio = f
		case "--option":
			flags.options = append(flags.options, value)
		default:
			return flags, fmt.Errorf("unknown flag: %s", flag)
		}
	}

	return flags, nil
}

// ResolveLabel picks the label stock for a job: an explicit code wins,
// then the printer's configured default, then the builtin fallback.
func (e *Executor) ResolveLabel(printerID string, code string) (*labelspec.Label, error) {
	if code == "" && printerID != "" {
		code = e.manager.DefaultLabel(printerID)
	}
	if code == "" {
		code = fallbackLabelCode
	}

	label := e.catalog.Find(code)
	if label == nil {
		return nil, fmt.Errorf("unknown label code: %s", code)
	}
	return label, nil
}

// LoadSource turns a source reference into an image. References can be
// a file path, an http(s) URL, or one of the inline forms
// text:"line|line", qr:"value", barcode:"value".
func LoadSource(ref string, geom labelspec.Geometry) (image.Image, error) {
	switch {
	case strings.HasPrefix(ref, "text:"):
		lines := strings.Split(strings.TrimPrefix(ref, "text:"), "|")
		return source.Text(lines, source.TextOptions{
			Width:  geom.WidthPx,
			Height: geom.HeightPx,
		})
	case strings.HasPrefix(ref, "qr:"):
		size := geom.WidthPx
		if geom.HeightPx < size {
			size = geom.HeightPx
		}
		return source.QR(strings.TrimPrefix(ref, "qr:"), "M", size)
	case strings.HasPrefix(ref, "barcode:"):
		return source.Barcode(strings.TrimPrefix(ref, "barcode:"), "", geom.WidthPx, geom.HeightPx/4)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		resp, err := http.Get(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch image: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("failed to fetch image: HTTP %d", resp.StatusCode)
		}
		return source.FromReader(resp.Body)
	default:
		return source.FromFile(ref)
	}
}

// renderPayload runs the full pipeline for a source reference
func (e *Executor) renderPayload(printerID string, ref string, flags jobFlags) (*pipeline.SpoolPayload, *labelspec.Label, error) {
	label, err := e.ResolveLabel(printerID, flags.label)
	if err != nil {
		return nil, nil, err
	}

	geom, err := label.Geometry()
	if err != nil {
		return nil, nil, err
	}

	img, err := LoadSource(ref, geom)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load source: %w", err)
	}

	buf, err := pipeline.Prepare(img, geom, flags.pipeline)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to process image: %w", err)
	}

	payload, err := pipeline.ToSpoolPayload(buf, label, flags.options)
	if err != nil {
		return nil, nil, err
	}
	return payload, label, nil
}

// handlePrint handles print commands
// Usage: print <printer-id|auto> <source> [--label code] [--algorithm name] [--brightness x] [--contrast x] [--option key=value]
func (e *Executor) handlePrint(args []string) *Result {
	if len(args) < 2 {
		return &Result{
			Success: false,
			Error:   "usage: print <printer-id|auto> <source> [--label code] [--algorithm name]",
		}
	}

	printerID := args[0]
	ref := args[1]

	if printerID == "auto" {
		preferred := e.manager.PreferredPrinter()
		if preferred == nil {
			return &Result{
				Success: false,
				Error:   "no printers detected",
			}
		}
		printerID = preferred.ID
	}

	if e.manager.GetPrinter(printerID) == nil {
		return &Result{
			Success: false,
			Error:   fmt.Sprintf("printer not found: %s", printerID),
		}
	}

	flags, err := parseJobFlags(args[2:])
	if err != nil {
		return &Result{
			Success: false,
			Error:   err.Error(),
		}
	}

	payload, label, err := e.renderPayload(printerID, ref, flags)
	if err != nil {
		return &Result{
			Success: false,
			Error:   err.Error(),
		}
	}

	jobID := e.queue.Enqueue(printerID, label.Code, payload)

	return &Result{
		Success: true,
		Message: fmt.Sprintf("Print job queued: %s", jobID),
		Data: map[string]interface{}{
			"job_id":     jobID,
			"printer_id": printerID,
			"label":      label.Code,
		},
	}
}

// handlePreview renders a source to a PNG without printing
// Usage: preview <source> [--label code] [--algorithm name] [--out path]
func (e *Executor) handlePreview(args []string) *Result {
	if len(args) < 1 {
		return &Result{
			Success: false,
			Error:   "usage: preview <source> [--label code] [--algorithm name] [--out path]",
		}
	}

	ref := args[0]

	flags, err := parseJobFlags(args[1:])
	if err != nil {
		return &Result{
			Success: false,
			Error:   err.Error(),
		}
	}
	if flags.out == "" {
		flags.out = "preview.png"
	}

	payload, label, err := e.renderPayload("", ref, flags)
	if err != nil {
		return &Result{
			Success: false,
			Error:   err.Error(),
		}
	}

	if err := os.WriteFile(flags.out, payload.PNG, 0644); err != nil {
		return &Result{
			Success: false,
			Error:   fmt.Sprintf("failed to write preview: %v", err),
		}
	}

	return &Result{
		Success: true,
		Message: fmt.Sprintf("Preview written: %s (%dx%d)", flags.out, payload.Width, payload.Height),
		Data: map[string]interface{}{
			"path":   flags.out,
			"label":  label.Code,
			"width":  payload.Width,
			"height": payload.Height,
		},
	}
}

// handlePrinter handles printer commands
// Usage: printer list | add-network <host> [port] | rename <id> <name> | set-label <id> <code>
func (e *Executor) handlePrinter(args []string) *Result {
	if len(args) == 0 {
		return &Result{
			Success: false,
			Error:   "usage: printer <list|add-network|rename|set-label>",
		}
	}

	subcommand := args[0]

	switch subcommand {
	case "list":
		printers := e.manager.GetAllPrinters()
		printerList := make([]map[string]interface{}, len(printers))
		for i, p := range printers {
			printerList[i] = map[string]interface{}{
				"id":          p.ID,
				"type":        p.Type,
				"description": p.Description,
				"name":        p.Name,
				"label":       p.Label,
			}
			if p.Type == "cups" {
				printerList[i]["queue"] = p.Queue
			}
			if p.Type == "network" {
				printerList[i]["host"] = p.Host
				printerList[i]["port"] = p.Port
			}
		}
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Found %d printer(s)", len(printers)),
			Data: map[string]interface{}{
				"printers": printerList,
			},
		}

	case "add-network":
		if len(args) < 2 {
			return &Result{
				Success: false,
				Error:   "usage: printer add-network <host> [port]",
			}
		}
		host := args[1]
		port := 9100
		if len(args) >= 3 {
			var err error
			port, err = strconv.Atoi(args[2])
			if err != nil {
				return &Result{
					Success: false,
					Error:   fmt.Sprintf("invalid port: %s", args[2]),
				}
			}
		}
		description := fmt.Sprintf("Network: %s:%d", host, port)
		printerID := e.manager.AddNetworkPrinter(host, port, description)
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Added network printer: %s", description),
			Data: map[string]interface{}{
				"printer_id": printerID,
			},
		}

	case "rename":
		if len(args) < 3 {
			return &Result{
				Success: false,
				Error:   "usage: printer rename <id> <name>",
			}
		}
		printerID := args[1]
		name := args[2]
		if !e.manager.SetPrinterName(printerID, name) {
			return &Result{
				Success: false,
				Error:   fmt.Sprintf("printer not found: %s", printerID),
			}
		}
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Renamed printer %s to %s", printerID, name),
		}

	case "set-label":
		if len(args) < 3 {
			return &Result{
				Success: false,
				Error:   "usage: printer set-label <id> <code>",
			}
		}
		printerID := args[1]
		code := args[2]
		if e.catalog.Find(code) == nil {
			return &Result{
				Success: false,
				Error:   fmt.Sprintf("unknown label code: %s", code),
			}
		}
		if !e.manager.SetDefaultLabel(printerID, code) {
			return &Result{
				Success: false,
				Error:   fmt.Sprintf("printer not found: %s", printerID),
			}
		}
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Printer %s now defaults to label %s", printerID, code),
		}

	default:
		return &Result{
			Success: false,
			Error:   fmt.Sprintf("unknown printer subcommand: %s. Use: list, add-network, rename, set-label", subcommand),
		}
	}
}

// handleLabel handles label catalog commands
// Usage: label list
func (e *Executor) handleLabel(args []string) *Result {
	if len(args) == 0 || args[0] != "list" {
		return &Result{
			Success: false,
			Error:   "usage: label list",
		}
	}

	labels := make([]map[string]interface{}, len(e.catalog.Labels))
	for i := range e.catalog.Labels {
		l := &e.catalog.Labels[i]
		entry := map[string]interface{}{
			"code":      l.Code,
			"name":      l.Name,
			"width_in":  l.WidthIn,
			"height_in": l.HeightIn,
			"dpi":       l.DPI,
			"media":     l.Media,
		}
		if geom, err := l.Geometry(); err == nil {
			entry["width_px"] = geom.WidthPx
			entry["height_px"] = geom.HeightPx
		}
		labels[i] = entry
	}

	return &Result{
		Success: true,
		Message: fmt.Sprintf("Found %d label(s)", len(labels)),
		Data: map[string]interface{}{
			"labels": labels,
		},
	}
}

// handleJob handles job commands
// Usage: job list | status <id> | clear
func (e *Executor) handleJob(args []string) *Result {
	if len(args) == 0 {
		return &Result{
			Success: false,
			Error:   "usage: job <list|status|clear>",
		}
	}

	subcommand := args[0]

	switch subcommand {
	case "list":
		jobs := e.queue.GetAllJobs()
		jobList := make([]map[string]interface{}, len(jobs))
		for i, job := range jobs {
			jobList[i] = map[string]interface{}{
				"id":         job.ID,
				"printer_id": job.PrinterID,
				"label":      job.LabelCode,
				"status":     job.Status,
				"retries":    job.Retries,
				"created_at": job.CreatedAt,
			}
			if job.Error != nil {
				jobList[i]["error"] = job.Error.Error()
			}
		}
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Found %d job(s)", len(jobs)),
			Data: map[string]interface{}{
				"jobs": jobList,
			},
		}

	case "status":
		if len(args) < 2 {
			return &Result{
				Success: false,
				Error:   "usage: job status <id>",
			}
		}
		jobID := args[1]
		job := e.queue.GetJob(jobID)
		if job == nil {
			return &Result{
				Success: false,
				Error:   fmt.Sprintf("job not found: %s", jobID),
			}
		}
		jobData := map[string]interface{}{
			"id":         job.ID,
			"printer_id": job.PrinterID,
			"label":      job.LabelCode,
			"status":     job.Status,
			"retries":    job.Retries,
			"created_at": job.CreatedAt,
		}
		if job.Error != nil {
			jobData["error"] = job.Error.Error()
		}
		return &Result{
			Success: true,
			Data:    jobData,
		}

	case "clear":
		e.queue.ClearCompleted()
		return &Result{
			Success: true,
			Message: "Cleared completed jobs",
		}

	default:
		return &Result{
			Success: false,
			Error:   fmt.Sprintf("unknown job subcommand: %s. Use: list, status, clear", subcommand),
		}
	}
}

// handleDetect handles detect command
// Usage: detect
func (e *Executor) handleDetect(args []string) *Result {
	printers, err := e.manager.DetectPrinters()
	if err != nil {
		return &Result{
			Success: false,
			Error:   fmt.Sprintf("detection failed: %v", err),
		}
	}
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Detected %d printer(s)", len(printers)),
		Data: map[string]interface{}{
			"count": len(printers),
		},
	}
}

// handleHelp handles help command
func (e *Executor) handleHelp(args []string) *Result {
	helpText := `Available Commands:

  print <printer-id|auto> <source> [flags]
    Print an image to a label printer. Sources can be a file path,
    an http(s) URL, or inline: text:"LINE|LINE", qr:"value",
    barcode:"value"

  preview <source> [flags] [--out path]
    Run the pipeline and write the dithered PNG without printing

  Flags for print and preview:
    --label <code>        Label stock (e.g. 30256)
    --algorithm <name>    Dither algorithm (floyd-steinberg, atkinson,
                          bayer, riemersma, ...)
    --brightness <x>      Brightness multiplier (default 1.2)
    --contrast <x>        Contrast multiplier (default 1.0)
    --history <n>         Riemersma error history (2-32)
    --ratio <x>           Riemersma decay ratio (0-1)
    --option <key=value>  Extra spooler option (e.g. Darkness=10)

  printer list
    List all detected printers

  printer add-network <host> [port]
    Add a network printer (default port: 9100)

  printer rename <id> <name>
    Set a custom name for a printer

  printer set-label <id> <code>
    Record which label stock a printer is loaded with

  label list
    List the label catalog

  job list
    List all print jobs

  job status <id>
    Get status of a specific job

  job clear
    Clear completed jobs from the queue

  detect
    Detect/scan for printers

  help
    Show this help message

Examples:
  print auto ./photo.png
  print auto ./photo.png --label 30256 --algorithm atkinson
  print printer-123 qr:"https://example.com" --label 30334
  preview ./photo.png --algorithm riemersma --out check.png
  printer set-label printer-123 30256
`

	return &Result{
		Success: true,
		Message: helpText,
	}
}
