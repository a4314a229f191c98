package compiler

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DeviceData names the architecture files behind one target device.
type DeviceData struct {
	Name              string `yaml:"name"`
	DeviceSize        string `yaml:"device_size"`
	VprArch           string `yaml:"vpr_arch"`
	OpenFPGAArch      string `yaml:"openfpga_arch"`
	BitstreamSettings string `yaml:"bitstream_settings"`
	SimSettings       string `yaml:"sim_settings"`
	RepackSettings    string `yaml:"repack_settings"`
}

type deviceTable struct {
	Devices []DeviceData `yaml:"devices"`
}

// LoadDeviceData looks a device up in the device table file.
func LoadDeviceData(tablePath, name string) (DeviceData, error) {
	data, err := os.ReadFile(tablePath)
	if err != nil {
		return DeviceData{}, fmt.Errorf("device table: %w", err)
	}
	var table deviceTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return DeviceData{}, fmt.Errorf("device table %s: %w", tablePath, err)
	}
	for _, d := range table.Devices {
		if d.Name == name {
			if d.VprArch == "" {
				return DeviceData{}, fmt.Errorf("device %s has no vpr_arch", name)
			}
			return d, nil
		}
	}
	return DeviceData{}, fmt.Errorf("unknown device %q in %s", name, tablePath)
}
