package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/osbock/dymo-picture-print/internal/printer"
)

// WebSocket message types
const (
	EventPrint          = "print"
	EventPreview        = "preview"
	EventCommand        = "command"
	EventPrinterAdded   = "printer_added"
	EventPrinterRemoved = "printer_removed"
	EventJobUpdate      = "job_update"
	EventResponse       = "response"
	EventError          = "error"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

// WSClient represents a connected WebSocket client
type WSClient struct {
	conn   *websocket.Conn
	send   chan WSMessage
	server *Server
	mu     sync.Mutex
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		fmt.Printf("WebSocket upgrade failed: %v\n", err)
		return
	}

	client := &WSClient{
		conn:   conn,
		send:   make(chan WSMessage, 256),
		server: s,
	}

	fmt.Println("📡 WebSocket client connected")

	go client.readPump()
	go client.writePump()
}

func (c *WSClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		c.mu.Lock()
		err := c.conn.WriteJSON(msg)
		c.mu.Unlock()

		if err != nil {
			fmt.Printf("WebSocket write error: %v\n", err)
			return
		}
	}
}

func (c *WSClient) handleMessage(msg *WSMessage) {
	switch msg.Event {
	case EventPrint:
		c.handlePrintEvent(msg.Data)
	case EventPreview:
		c.handlePreviewEvent(msg.Data)
	case EventCommand:
		c.handleCommandEvent(msg.Data)
	default:
		c.sendError(fmt.Sprintf("unknown event: %s", msg.Event))
	}
}

// decodeRenderRequest re-marshals the loosely typed event data into the
// same request shape the HTTP endpoints use
func decodeRenderRequest(data map[string]interface{}) (*renderRequest, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var req renderRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("invalid print request: %w", err)
	}
	return &req, nil
}

func (c *WSClient) handlePrintEvent(data map[string]interface{}) {
	req, err := decodeRenderRequest(data)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	printerID := req.PrinterID
	if printerID == "" || printerID == "auto" {
		preferred := c.server.manager.PreferredPrinter()
		if preferred == nil {
			c.sendError("no printers detected")
			return
		}
		printerID = preferred.ID
		req.PrinterID = printerID
	} else if c.server.manager.GetPrinter(printerID) == nil {
		c.sendError(fmt.Sprintf("printer not found: %s", printerID))
		return
	}

	payload, label, err := c.server.render(req)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	jobID := c.server.queue.Enqueue(printerID, label.Code, payload)

	c.sendResponse(map[string]interface{}{
		"success":    true,
		"job_id":     jobID,
		"printer_id": printerID,
		"label":      label.Code,
	})
}

func (c *WSClient) handlePreviewEvent(data map[string]interface{}) {
	req, err := decodeRenderRequest(data)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	payload, label, err := c.server.render(req)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	c.sendResponse(map[string]interface{}{
		"success": true,
		"label":   label.Code,
		"width":   payload.Width,
		"height":  payload.Height,
		"png":     base64.StdEncoding.EncodeToString(payload.PNG),
	})
}

func (c *WSClient) handleCommandEvent(data map[string]interface{}) {
	cmdStr, ok := data["command"].(string)
	if !ok || cmdStr == "" {
		c.sendError("command is required")
		return
	}

	result := c.server.executor.Execute(cmdStr)
	if !result.Success {
		c.sendError(result.Error)
		return
	}

	response := map[string]interface{}{
		"success": true,
	}
	if result.Message != "" {
		response["message"] = result.Message
	}
	for k, v := range result.Data {
		response[k] = v
	}
	c.sendResponse(response)
}

func (c *WSClient) sendResponse(data map[string]interface{}) {
	c.send <- WSMessage{
		Event: EventResponse,
		Data:  data,
	}
}

// Client tracking for broadcasts
var (
	clients   = make(map[*WSClient]bool)
	clientsMu sync.RWMutex
)

func addClient(client *WSClient) {
	clientsMu.Lock()
	clients[client] = true
	clientsMu.Unlock()
}

func removeClient(client *WSClient) {
	clientsMu.Lock()
	delete(clients, client)
	clientsMu.Unlock()
}

func (c *WSClient) readPump() {
	defer func() {
		removeClient(c)
		c.conn.Close()
		fmt.Println("📡 WebSocket client disconnected")
	}()

	addClient(c)

	for {
		var msg WSMessage
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				fmt.Printf("WebSocket error: %v\n", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

func (c *WSClient) sendError(message string) {
	c.send <- WSMessage{
		Event: EventError,
		Data: map[string]interface{}{
			"error": message,
		},
	}
}

// BroadcastPrinterAdded broadcasts a printer added event to all connected clients
func (s *Server) BroadcastPrinterAdded(p *printer.Printer) {
	clientsMu.RLock()
	defer clientsMu.RUnlock()

	message := WSMessage{
		Event: EventPrinterAdded,
		Data: map[string]interface{}{
			"id":          p.ID,
			"type":        p.Type,
			"description": p.Description,
			"name":        p.Name,
			"label":       p.Label,
		},
	}

	for client := range clients {
		select {
		case client.send <- message:
		default:
			// Client send buffer full, skip
		}
	}

	fmt.Printf("📡 Broadcast: Printer added - %s\n", p.Description)
}

// BroadcastPrinterRemoved broadcasts a printer removed event to all connected clients
func (s *Server) BroadcastPrinterRemoved(printerID string) {
	clientsMu.RLock()
	defer clientsMu.RUnlock()

	message := WSMessage{
		Event: EventPrinterRemoved,
		Data: map[string]interface{}{
			"id": printerID,
		},
	}

	for client := range clients {
		select {
		case client.send <- message:
		default:
			// Client send buffer full, skip
		}
	}

	fmt.Printf("📡 Broadcast: Printer removed - %s\n", printerID)
}

// BroadcastJobUpdate broadcasts a job status change to all connected clients
func (s *Server) BroadcastJobUpdate(job *printer.PrintJob) {
	clientsMu.RLock()
	defer clientsMu.RUnlock()

	message := WSMessage{
		Event: EventJobUpdate,
		Data:  jobJSON(job),
	}

	for client := range clients {
		select {
		case client.send <- message:
		default:
			// Client send buffer full, skip
		}
	}
}
