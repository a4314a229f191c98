package compiler

import (
	"os"
	"path/filepath"
	"testing"
)

const deviceTableYAML = `devices:
  - name: k6_frac_N10_40nm
    device_size: 4x4
    vpr_arch: arch/k6_vpr.xml
    openfpga_arch: arch/k6_openfpga.xml
    bitstream_settings: arch/bitstream.xml
    sim_settings: arch/sim.xml
    repack_settings: arch/repack.xml
  - name: broken
    device_size: 2x2
`

func writeDeviceTable(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "devices.yaml")
	if err := os.WriteFile(path, []byte(deviceTableYAML), 0o644); err != nil {
		t.Fatalf("write device table: %v", err)
	}
	return path
}

func TestLoadDeviceData(t *testing.T) {
	d, err := LoadDeviceData(writeDeviceTable(t), "k6_frac_N10_40nm")
	if err != nil {
		t.Fatalf("LoadDeviceData: %v", err)
	}
	if d.DeviceSize != "4x4" {
		t.Errorf("device size = %q, want 4x4", d.DeviceSize)
	}
	if d.VprArch != "arch/k6_vpr.xml" {
		t.Errorf("vpr arch = %q", d.VprArch)
	}
}

func TestLoadDeviceDataUnknownDevice(t *testing.T) {
	if _, err := LoadDeviceData(writeDeviceTable(t), "nope"); err == nil {
		t.Fatal("expected error for unknown device")
	}
}

func TestLoadDeviceDataMissingArch(t *testing.T) {
	if _, err := LoadDeviceData(writeDeviceTable(t), "broken"); err == nil {
		t.Fatal("expected error for device without vpr_arch")
	}
}
