package printer

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/gousb"
	"github.com/osbock/dymo-picture-print/internal/pipeline"
)

// USBConnection represents a USB printer connection
type USBConnection struct {
	ctx      *gousb.Context
	device   *gousb.Device
	iface    *gousb.Interface
	endpoint *gousb.OutEndpoint
	mu       sync.Mutex
}

// ConnectUSB connects to a USB printer. Returns an error if the device
// is gone or no OUT endpoint can be claimed.
func ConnectUSB(vid, pid uint16) (*USBConnection, error) {
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("failed to open USB device: %w", err)
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("device not found: %04X:%04X", vid, pid)
	}

	// The default interface works for most printers; fall back to a full
	// config/interface walk for devices that need it.
	iface, endpoint, err := claimDefault(dev)
	if err != nil {
		iface, endpoint, err = claimAny(dev)
	}
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("failed to connect to USB printer %04X:%04X: %w", vid, pid, err)
	}

	return &USBConnection{
		ctx:      ctx,
		device:   dev,
		iface:    iface,
		endpoint: endpoint,
	}, nil
}

// claimDefault tries interface 0 alt 0, retrying once with kernel
// driver auto-detach
func claimDefault(dev *gousb.Device) (*gousb.Interface, *gousb.OutEndpoint, error) {
	iface, _, err := dev.DefaultInterface()
	if err != nil {
		dev.SetAutoDetach(true)
		iface, _, err = dev.DefaultInterface()
	}
	if err != nil {
		return nil, nil, err
	}

	endpoint, err := outEndpoint(iface)
	if err != nil {
		iface.Close()
		return nil, nil, err
	}
	return iface, endpoint, nil
}

// claimAny walks every configuration and interface looking for a
// claimable OUT endpoint
func claimAny(dev *gousb.Device) (*gousb.Interface, *gousb.OutEndpoint, error) {
	var lastErr error

	for _, cfgDesc := range dev.Desc.Configs {
		cfg, err := dev.Config(cfgDesc.Number)
		if err != nil {
			lastErr = fmt.Errorf("failed to set config %d: %w", cfgDesc.Number, err)
			continue
		}

		for _, ifaceDesc := range cfgDesc.Interfaces {
			iface, err := cfg.Interface(ifaceDesc.Number, 0)
			if err != nil {
				// Some devices need a moment after enumeration
				time.Sleep(100 * time.Millisecond)
				iface, err = cfg.Interface(ifaceDesc.Number, 0)
			}
			if err != nil {
				lastErr = fmt.Errorf("failed to claim interface %d: %w", ifaceDesc.Number, err)
				continue
			}

			endpoint, err := outEndpoint(iface)
			if err != nil {
				lastErr = err
				iface.Close()
				continue
			}
			return iface, endpoint, nil
		}

		cfg.Close()
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no suitable interface/endpoint found")
	}
	return nil, nil, lastErr
}

// outEndpoint finds the first OUT endpoint on a claimed interface
func outEndpoint(iface *gousb.Interface) (*gousb.OutEndpoint, error) {
	for _, epDesc := range iface.Setting.Endpoints {
		if epDesc.Direction == gousb.EndpointDirectionOut {
			if ep, err := iface.OutEndpoint(epDesc.Number); err == nil {
				return ep, nil
			}
		}
	}
	return nil, fmt.Errorf("no OUT endpoint on interface %d", iface.Setting.Number)
}

// Write sends data to the USB printer
func (c *USBConnection) Write(data []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.endpoint.Write(data)
}

// Submit sends the packed raster straight down the wire
func (c *USBConnection) Submit(payload *pipeline.SpoolPayload) error {
	if len(payload.Raster) == 0 {
		return fmt.Errorf("payload has no raster data")
	}

	if _, err := c.Write(payload.Raster); err != nil {
		return fmt.Errorf("failed to write to USB printer: %w", err)
	}

	return nil
}

// Close closes the USB connection
func (c *USBConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.iface != nil {
		c.iface.Close()
	}
	if c.device != nil {
		c.device.Close()
	}
	if c.ctx != nil {
		return c.ctx.Close()
	}

	return nil
}
