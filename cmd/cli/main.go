package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const (
	defaultServerURL = "http://localhost:9180"
)

func main() {
	var serverURL string
	flag.StringVar(&serverURL, "server", defaultServerURL, "Server URL")
	flag.StringVar(&serverURL, "s", defaultServerURL, "Server URL (short)")
	flag.Parse()

	if flag.NArg() == 0 {
		printUsage()
		os.Exit(1)
	}

	command := joinArgs(flag.Args())
	result := executeCommand(serverURL, command)

	if result.Success {
		printSuccess(result)
		os.Exit(0)
	} else {
		printError(result)
		os.Exit(1)
	}
}

// joinArgs rebuilds the command string, re-quoting arguments that the
// shell already stripped quotes from
func joinArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		if strings.Contains(arg, " ") && !strings.Contains(arg, `"`) {
			arg = `"` + arg + `"`
		}
		quoted[i] = arg
	}
	return strings.Join(quoted, " ")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Picture Print CLI

Usage:
  label-cli [flags] <command>

Flags:
  -s, -server <url>    Server URL (default: %s)

Commands:
  print <printer-id|auto> <source> [--label <code>] [--algorithm <name>]
        [--brightness <f>] [--contrast <f>] [--option key=value]
    Render a source onto a label and queue it for printing.
    Sources: an image path, an http(s) URL, or an inline form:
      text:"line one|line two"
      qr:"https://example.com"
      barcode:"0123456789"

  preview <source> [--label <code>] [--algorithm <name>] [--out <path>]
    Render without printing and write the dithered PNG

  printer list
    List all detected printers

  printer add-network <host> [port]
    Add a network printer (default port: 9100)

  printer rename <id> <name>
    Set a custom name for a printer

  printer set-label <id> <code>
    Set the default label stock loaded in a printer

  label list
    List the known label stocks

  job list
    List all print jobs

  job status <id>
    Get status of a specific job

  job clear
    Clear completed jobs from the queue

  detect
    Detect/scan for printers

  help
    Show help message

Examples:
  label-cli print auto ./photo.png
  label-cli print printer-123 qr:"https://example.com" --label 30334
  label-cli print printer-123 ./photo.png --algorithm atkinson --brightness 1.4
  label-cli preview text:"SHIP TO|123 Main St" --label 30256 --out ship.png
  label-cli printer add-network 192.168.1.100 9100
  label-cli printer set-label printer-123 30252
  label-cli -s http://localhost:8080 printer list

`, defaultServerURL)
}

type CommandResult struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

func executeCommand(serverURL, command string) *CommandResult {
	url := strings.TrimSuffix(serverURL, "/") + "/command"

	reqBody := map[string]string{
		"command": command,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return &CommandResult{
			Success: false,
			Error:   fmt.Sprintf("failed to marshal request: %v", err),
		}
	}

	resp, err := http.Post(url, "application/json", strings.NewReader(string(jsonData)))
	if err != nil {
		return &CommandResult{
			Success: false,
			Error:   fmt.Sprintf("failed to connect to server: %v", err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &CommandResult{
			Success: false,
			Error:   fmt.Sprintf("failed to read response: %v", err),
		}
	}

	var result CommandResult
	if err := json.Unmarshal(body, &result); err != nil {
		return &CommandResult{
			Success: false,
			Error:   fmt.Sprintf("failed to parse response: %v", err),
		}
	}

	return &result
}

func printSuccess(result *CommandResult) {
	if result.Message != "" {
		fmt.Println(result.Message)
	}

	if result.Data != nil {
		if printers, ok := result.Data["printers"].([]interface{}); ok {
			fmt.Println("\nPrinters:")
			for _, p := range printers {
				if printer, ok := p.(map[string]interface{}); ok {
					name := printer["name"]
					if name == "" {
						name = printer["description"]
					}
					line := fmt.Sprintf("  %s: %s (%s)", printer["id"], name, printer["type"])
					if label, ok := printer["label"].(string); ok && label != "" {
						line += fmt.Sprintf(" [label %s]", label)
					}
					fmt.Println(line)
				}
			}
		}

		if labels, ok := result.Data["labels"].([]interface{}); ok {
			fmt.Println("\nLabels:")
			for _, l := range labels {
				if label, ok := l.(map[string]interface{}); ok {
					fmt.Printf("  %-8s %s (%gx%gin, %.0fx%.0fpx)\n",
						label["code"], label["name"],
						label["width_in"], label["height_in"],
						label["width_px"], label["height_px"])
				}
			}
		}

		if jobs, ok := result.Data["jobs"].([]interface{}); ok {
			fmt.Println("\nJobs:")
			for _, j := range jobs {
				if job, ok := j.(map[string]interface{}); ok {
					fmt.Printf("  %s: %s (printer: %s, label: %s)\n",
						job["id"], job["status"], job["printer_id"], job["label"])
				}
			}
		}

		if jobID, ok := result.Data["job_id"].(string); ok {
			fmt.Printf("Job ID: %s\n", jobID)
		}

		if printerID, ok := result.Data["printer_id"].(string); ok {
			fmt.Printf("Printer ID: %s\n", printerID)
		}

		if path, ok := result.Data["path"].(string); ok {
			fmt.Printf("Preview written to %s\n", path)
		}
	}
}

func printError(result *CommandResult) {
	if result.Error != "" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", result.Error)
	} else if result.Message != "" {
		fmt.Fprintf(os.Stderr, "%s\n", result.Message)
	}
}
