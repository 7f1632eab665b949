package system

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
)

// Capacity is the space on the filesystem holding a path.
type Capacity struct {
	Path        string
	Fstype      string
	Total       uint64
	Free        uint64
	Used        uint64
	UsedPercent float64
}

// GetCapacity reports the usage of the filesystem mounted at or holding path.
// It fails when the volume is not accessible.
func GetCapacity(path string) (*Capacity, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read usage of %s: %w", path, err)
	}
	return &Capacity{
		Path:        usage.Path,
		Fstype:      usage.Fstype,
		Total:       usage.Total,
		Free:        usage.Free,
		Used:        usage.Used,
		UsedPercent: usage.UsedPercent,
	}, nil
}

// HostInfo is the subset of host facts shown by the status command.
type HostInfo struct {
	Hostname string
	OS       string
	Platform string
	Version  string
}

// GetHostInfo returns basic facts about the machine.
func GetHostInfo() (*HostInfo, error) {
	info, err := host.Info()
	if err != nil {
		return nil, err
	}
	return &HostInfo{
		Hostname: info.Hostname,
		OS:       info.OS,
		Platform: info.Platform,
		Version:  info.PlatformVersion,
	}, nil
}

func (h *HostInfo) String() string {
	if h.Platform == "" {
		return fmt.Sprintf("%s (%s)", h.Hostname, h.OS)
	}
	return fmt.Sprintf("%s (%s %s)", h.Hostname, h.Platform, h.Version)
}
