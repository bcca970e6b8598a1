package usbprobe

import (
	"testing"

	"github.com/google/gousb"
)

func TestClassifySegger(t *testing.T) {
	p, ok := classify(&gousb.DeviceDesc{Vendor: 0x1366, Product: 0x0105, Bus: 1, Address: 7})
	if !ok {
		t.Fatal("expected SEGGER device to be classified")
	}
	if p.Description != "J-Link (CDC)" {
		t.Errorf("unexpected description %q", p.Description)
	}
	if got := p.Label(); got != "J-Link (CDC) (1366:0105) bus 1 addr 7" {
		t.Errorf("unexpected label %q", got)
	}
}

func TestClassifyUnknownSeggerProduct(t *testing.T) {
	p, ok := classify(&gousb.DeviceDesc{Vendor: 0x1366, Product: 0x1015})
	if !ok {
		t.Fatal("expected SEGGER device to be classified")
	}
	if p.Description != "J-Link" || p.ProductID != 0x1015 {
		t.Errorf("unexpected probe %+v", p)
	}
}

func TestClassifyIgnoresOtherVendors(t *testing.T) {
	if _, ok := classify(&gousb.DeviceDesc{Vendor: 0x0d28, Product: 0x0204}); ok {
		t.Fatal("DAPLink must not be reported as J-Link")
	}
}
