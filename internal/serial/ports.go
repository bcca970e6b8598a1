package serial

import (
	"strings"

	"go.bug.st/serial/enumerator"
)

// SeggerVID is the USB vendor ID of SEGGER J-Link probes.
const SeggerVID = "1366"

// PortInfo holds details about a serial port.
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
}

// IsJLink reports whether the port is a J-Link virtual COM port.
func (p PortInfo) IsJLink() bool {
	return p.IsUSB && strings.EqualFold(p.VID, SeggerVID)
}

// listDetailed is replaced in tests.
var listDetailed = enumerator.GetDetailedPortsList

// ListPorts returns available serial ports.
func ListPorts() ([]PortInfo, error) {
	ports, err := listDetailed()
	if err != nil {
		return nil, err
	}

	var result []PortInfo
	for _, p := range ports {
		result = append(result, PortInfo{
			Name:         p.Name,
			IsUSB:        p.IsUSB,
			VID:          p.VID,
			PID:          p.PID,
			SerialNumber: p.SerialNumber,
		})
	}
	return result, nil
}

// JLinkPorts returns only the J-Link virtual COM ports.
func JLinkPorts() ([]PortInfo, error) {
	ports, err := ListPorts()
	if err != nil {
		return nil, err
	}
	var result []PortInfo
	for _, p := range ports {
		if p.IsJLink() {
			result = append(result, p)
		}
	}
	return result, nil
}
