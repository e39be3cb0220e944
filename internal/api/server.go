// Package api handles HTTP and WebSocket API endpoints
package api

import (
	"fmt"
	"image"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/osbock/dymo-picture-print/internal/command"
	"github.com/osbock/dymo-picture-print/internal/pipeline"
	"github.com/osbock/dymo-picture-print/internal/printer"
	"github.com/osbock/dymo-picture-print/internal/source"
	"github.com/osbock/dymo-picture-print/pkg/labelspec"
)

// Server is the API server
type Server struct {
	router   *gin.Engine
	manager  *printer.Manager
	pool     *printer.ConnectionPool
	queue    *printer.PrintQueue
	catalog  *labelspec.Catalog
	executor *command.Executor
	upgrader websocket.Upgrader
}

// NewServer creates a new API server
func NewServer(manager *printer.Manager, pool *printer.ConnectionPool, queue *printer.PrintQueue, catalog *labelspec.Catalog) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.Default()
	router.Use(corsMiddleware())

	if catalog == nil {
		catalog = labelspec.Builtin()
	}

	server := &Server{
		router:   router,
		manager:  manager,
		pool:     pool,
		queue:    queue,
		catalog:  catalog,
		executor: command.NewExecutor(manager, pool, queue, catalog),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	// HTTP API
	s.router.GET("/printers", s.handleGetPrinters)
	s.router.POST("/printer/:id/name", s.handleSetPrinterName)
	s.router.POST("/printer/:id/label", s.handleSetDefaultLabel)
	s.router.POST("/printer/network", s.handleAddNetworkPrinter)
	s.router.GET("/labels", s.handleGetLabels)
	s.router.GET("/label/:code", s.handleGetLabel)
	s.router.POST("/preview", s.handlePreview)
	s.router.POST("/print", s.handlePrint)
	s.router.GET("/jobs", s.handleGetJobs)
	s.router.GET("/job/:id", s.handleGetJob)

	// Command endpoint
	s.router.POST("/command", s.handleCommand)

	// WebSocket
	s.router.GET("/ws", s.handleWebSocket)

	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}

// handleGetPrinters returns all detected printers
func (s *Server) handleGetPrinters(c *gin.Context) {
	printers := s.manager.GetAllPrinters()

	c.JSON(200, gin.H{
		"printers": printers,
	})
}

// handleSetPrinterName sets a custom name for a printer
func (s *Server) handleSetPrinterName(c *gin.Context) {
	printerID := c.Param("id")

	var req struct {
		Name string `json:"name" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "name is required"})
		return
	}

	if !s.manager.SetPrinterName(printerID, req.Name) {
		c.JSON(404, gin.H{"error": "printer not found"})
		return
	}

	c.JSON(200, gin.H{"success": true})
}

// handleSetDefaultLabel records which label stock a printer is loaded with
func (s *Server) handleSetDefaultLabel(c *gin.Context) {
	printerID := c.Param("id")

	var req struct {
		Label string `json:"label" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "label is required"})
		return
	}

	if s.catalog.Find(req.Label) == nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("unknown label code: %s", req.Label)})
		return
	}

	if !s.manager.SetDefaultLabel(printerID, req.Label) {
		c.JSON(404, gin.H{"error": "printer not found"})
		return
	}

	c.JSON(200, gin.H{"success": true})
}

// handleAddNetworkPrinter manually adds a network printer
func (s *Server) handleAddNetworkPrinter(c *gin.Context) {
	var req struct {
		Host        string `json:"host" binding:"required"`
		Port        int    `json:"port"`
		Description string `json:"description"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "host is required"})
		return
	}

	if req.Port == 0 {
		req.Port = 9100
	}
	if req.Description == "" {
		req.Description = fmt.Sprintf("Network: %s:%d", req.Host, req.Port)
	}

	printerID := s.manager.AddNetworkPrinter(req.Host, req.Port, req.Description)

	c.JSON(200, gin.H{
		"success":    true,
		"printer_id": printerID,
		"printer":    s.manager.GetPrinter(printerID),
	})
}

// handleGetLabels returns the label catalog
func (s *Server) handleGetLabels(c *gin.Context) {
	c.JSON(200, gin.H{
		"name":   s.catalog.Name,
		"labels": s.catalog.Labels,
	})
}

// handleGetLabel returns one label with its resolved pixel geometry
func (s *Server) handleGetLabel(c *gin.Context) {
	label := s.catalog.Find(c.Param("code"))
	if label == nil {
		c.JSON(404, gin.H{"error": "label not found"})
		return
	}

	resp := gin.H{"label": label}
	if geom, err := label.Geometry(); err == nil {
		resp["width_px"] = geom.WidthPx
		resp["height_px"] = geom.HeightPx
	}

	c.JSON(200, resp)
}

// renderRequest is the shared request body for print and preview. The
// image comes either as a source reference (path, URL, text:/qr:/
// barcode: inline form) or as base64 PNG/JPEG/GIF data.
type renderRequest struct {
	PrinterID   string                 `json:"printer_id"`
	Source      string                 `json:"source"`
	ImageBase64 string                 `json:"image_base64"`
	Label       string                 `json:"label"`
	Settings    *pipeline.Settings     `json:"settings"`
	Dither      *pipeline.DitherConfig `json:"dither"`
	Options     []string               `json:"options"`
}

// render runs the pipeline for a request
func (s *Server) render(req *renderRequest) (*pipeline.SpoolPayload, *labelspec.Label, error) {
	label, err := s.executor.ResolveLabel(req.PrinterID, req.Label)
	if err != nil {
		return nil, nil, err
	}

	geom, err := label.Geometry()
	if err != nil {
		return nil, nil, err
	}

	var img image.Image
	switch {
	case req.ImageBase64 != "":
		img, err = source.FromBase64(req.ImageBase64)
	case req.Source != "":
		img, err = command.LoadSource(req.Source, geom)
	default:
		return nil, nil, fmt.Errorf("source or image_base64 is required")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load image: %w", err)
	}

	opts := pipeline.DefaultOptions()
	if req.Settings != nil {
		opts.Settings = *req.Settings
	}
	if req.Dither != nil {
		opts.Dither = *req.Dither
	}

	buf, err := pipeline.Prepare(img, geom, opts)
	if err != nil {
		return nil, nil, err
	}

	payload, err := pipeline.ToSpoolPayload(buf, label, req.Options)
	if err != nil {
		return nil, nil, err
	}
	return payload, label, nil
}

// handlePreview runs the pipeline and returns the dithered PNG
func (s *Server) handlePreview(c *gin.Context) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	payload, _, err := s.render(&req)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	c.Data(200, "image/png", payload.PNG)
}

// handlePrint handles a print request
func (s *Server) handlePrint(c *gin.Context) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	printerID := req.PrinterID
	if printerID == "" || printerID == "auto" {
		preferred := s.manager.PreferredPrinter()
		if preferred == nil {
			c.JSON(400, gin.H{"error": "no printers detected"})
			return
		}
		printerID = preferred.ID
		req.PrinterID = printerID
	} else if s.manager.GetPrinter(printerID) == nil {
		c.JSON(404, gin.H{"error": "printer not found"})
		return
	}

	payload, label, err := s.render(&req)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	jobID := s.queue.Enqueue(printerID, label.Code, payload)

	c.JSON(200, gin.H{
		"success":    true,
		"job_id":     jobID,
		"printer_id": printerID,
		"label":      label.Code,
	})
}

// handleGetJobs returns all print jobs
func (s *Server) handleGetJobs(c *gin.Context) {
	jobs := s.queue.GetAllJobs()

	jobsData := make([]map[string]interface{}, len(jobs))
	for i, job := range jobs {
		jobsData[i] = jobJSON(job)
	}

	c.JSON(200, gin.H{"jobs": jobsData})
}

// handleGetJob returns a specific print job
func (s *Server) handleGetJob(c *gin.Context) {
	job := s.queue.GetJob(c.Param("id"))
	if job == nil {
		c.JSON(404, gin.H{"error": "job not found"})
		return
	}

	c.JSON(200, jobJSON(job))
}

func jobJSON(job *printer.PrintJob) map[string]interface{} {
	data := map[string]interface{}{
		"id":         job.ID,
		"printer_id": job.PrinterID,
		"label":      job.LabelCode,
		"status":     job.Status,
		"retries":    job.Retries,
		"created_at": job.CreatedAt,
	}
	if job.Error != nil {
		data["error"] = job.Error.Error()
	}
	return data
}

// handleCommand handles command execution requests
func (s *Server) handleCommand(c *gin.Context) {
	var req struct {
		Command string `json:"command" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "command is required"})
		return
	}

	result := s.executor.Execute(req.Command)

	if result.Success {
		response := gin.H{
			"success": true,
		}
		if result.Message != "" {
			response["message"] = result.Message
		}
		if result.Data != nil {
			response["data"] = result.Data
		}
		c.JSON(200, response)
	} else {
		c.JSON(400, gin.H{
			"success": false,
			"error":   result.Error,
		})
	}
}

// Run starts the API server
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
