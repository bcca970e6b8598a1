// Package usbprobe finds SEGGER J-Link probes attached over USB.
package usbprobe

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/gousb"
)

// VendorIDSegger is the USB vendor ID assigned to SEGGER.
const VendorIDSegger = 0x1366

var knownProducts = map[uint16]string{
	0x0101: "J-Link",
	0x0105: "J-Link (CDC)",
}

// Probe describes a detected J-Link probe.
type Probe struct {
	Description string
	VendorID    uint16
	ProductID   uint16
	Bus         int
	Address     int
}

// Label returns a user-friendly description for the probe.
func (p Probe) Label() string {
	return fmt.Sprintf("%s (%04X:%04X) bus %d addr %d", p.Description, p.VendorID, p.ProductID, p.Bus, p.Address)
}

// Discover enumerates attached USB devices and returns the J-Link probes.
// Devices are inspected by descriptor only and never opened. Access errors
// from devices that cannot be read are ignored.
func Discover(ctx context.Context) ([]Probe, error) {
	var results []Probe
	usb := gousb.NewContext()
	defer usb.Close()

	_, err := usb.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		if p, ok := classify(desc); ok {
			results = append(results, p)
		}
		return false
	})
	if err != nil && !errors.Is(err, gousb.ErrorAccess) {
		return results, err
	}
	return results, ctx.Err()
}

func classify(desc *gousb.DeviceDesc) (Probe, bool) {
	if uint16(desc.Vendor) != VendorIDSegger {
		return Probe{}, false
	}
	pid := uint16(desc.Product)
	name, ok := knownProducts[pid]
	if !ok {
		name = "J-Link"
	}
	return Probe{
		Description: name,
		VendorID:    VendorIDSegger,
		ProductID:   pid,
		Bus:         desc.Bus,
		Address:     desc.Address,
	}, true
}
