package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/osbock/dymo-picture-print/internal/api"
	"github.com/osbock/dymo-picture-print/internal/printer"
	"github.com/osbock/dymo-picture-print/internal/tui"
	"github.com/osbock/dymo-picture-print/pkg/labelspec"
)

// Version is set during build via ldflags
var Version = "dev"

func main() {
	port := getPort()
	registryPath := getRegistryPath()
	headless := hasFlag("--headless")

	catalog, err := loadCatalog()
	if err != nil {
		log.Fatalf("Failed to load label catalog: %v", err)
	}

	// Initialize printer manager
	manager, err := printer.NewManager(registryPath)
	if err != nil {
		log.Fatalf("Failed to create printer manager: %v", err)
	}

	// Detect printers
	printers, err := manager.DetectPrinters()
	if err != nil {
		log.Printf("Warning: printer detection failed: %v", err)
	}

	// Create connection pool
	pool := printer.NewConnectionPool()

	// Create print queue with 3 retries
	queue := printer.NewPrintQueue(pool, manager, 3)
	defer queue.Stop()

	// Start printer monitor
	monitor := printer.NewMonitor(manager, 2*time.Second)

	// Create API server
	server := api.NewServer(manager, pool, queue, catalog)

	manager.OnPrinterAdded(func(p *printer.Printer) {
		server.BroadcastPrinterAdded(p)
	})
	manager.OnPrinterRemoved(func(id string) {
		server.BroadcastPrinterRemoved(id)
	})
	queue.OnJobUpdate(func(job *printer.PrintJob) {
		server.BroadcastJobUpdate(job)
	})

	monitor.Start()
	defer monitor.Stop()

	// Start server in goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("0.0.0.0:%s", port)
		if err := server.Run(addr); err != nil {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if headless {
		fmt.Printf("🖨️  Label server listening on port %s (%d printer(s) detected)\n", port, len(printers))

		select {
		case err := <-serverErrChan:
			log.Fatalf("Server error: %v", err)
		case <-sigChan:
			fmt.Println("🛑 Shutting down...")
			pool.DisconnectAll()
		}
		return
	}

	// Create TUI app
	tuiApp := tui.NewApp(manager, pool, queue, catalog, port)

	// Route logs into the TUI activity pane
	log.SetOutput(tuiApp.LogWriter())
	defer log.SetOutput(os.Stderr)

	tuiApp.AddLog("🖨️  Picture Print starting...", "info")
	if len(printers) > 0 {
		tuiApp.AddLog(fmt.Sprintf("✅ Found %d printer(s)", len(printers)), "info")
	}
	tuiApp.AddLog(fmt.Sprintf("🚀 API server on port %s", port), "info")

	// Run TUI (blocking)
	tuiDone := make(chan struct{})
	go func() {
		if err := tuiApp.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		}
		close(tuiDone)
	}()

	select {
	case err := <-serverErrChan:
		log.Fatalf("Server error: %v", err)
	case <-sigChan:
		pool.DisconnectAll()
		os.Exit(0)
	case <-tuiDone:
		pool.DisconnectAll()
		os.Exit(0)
	}
}

func hasFlag(name string) bool {
	for _, arg := range os.Args[1:] {
		if arg == name {
			return true
		}
	}
	return false
}

func flagValue(name string) string {
	for i, arg := range os.Args {
		if arg == name && i+1 < len(os.Args) {
			return os.Args[i+1]
		}
	}
	return ""
}

func getPort() string {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		return port
	}
	if port := flagValue("--port"); port != "" {
		return port
	}
	return "9180"
}

// loadCatalog reads the catalog file named by --labels or the
// LABEL_CATALOG env var, defaulting to the builtin stocks
func loadCatalog() (*labelspec.Catalog, error) {
	path := flagValue("--labels")
	if path == "" {
		path = os.Getenv("LABEL_CATALOG")
	}
	if path == "" {
		return labelspec.Builtin(), nil
	}

	catalog, err := labelspec.ParseFile(path)
	if err != nil {
		return nil, err
	}
	if err := labelspec.Validate(catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

// getRegistryPath returns the path to the printer registry file. It
// tries the executable's directory first, then the working directory,
// then a per-user config dir.
func getRegistryPath() string {
	if exePath, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exePath)
		registryPath := filepath.Join(exeDir, "printer_registry.json")

		if info, err := os.Stat(exeDir); err == nil && info.IsDir() {
			testFile := filepath.Join(exeDir, ".picture-print-write-test")
			if f, err := os.Create(testFile); err == nil {
				f.Close()
				os.Remove(testFile)
				return registryPath
			}
		}
	}

	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "printer_registry.json")
	}

	var configDir string
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			configDir = filepath.Join(appData, "picture-print")
		} else {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "picture-print")
		}
	} else {
		if home := os.Getenv("HOME"); home != "" {
			configDir = filepath.Join(home, ".config", "picture-print")
		}
	}

	if configDir != "" {
		os.MkdirAll(configDir, 0755)
		return filepath.Join(configDir, "printer_registry.json")
	}

	return "printer_registry.json"
}
