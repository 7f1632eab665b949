//go:build windows
// +build windows

package platform

import (
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/sys/windows"
)

type windowsVolumeManager struct{}

func newVolumeManager() VolumeManager {
	return &windowsVolumeManager{}
}

func (vm *windowsVolumeManager) ListRemovableVolumes() ([]Volume, error) {
	partitions, err := disk.Partitions(false)
	if err != nil {
		return nil, fmt.Errorf("failed to list drives: %w", err)
	}

	var volumes []Volume
	for _, partition := range partitions {
		root := partition.Mountpoint
		if !strings.HasSuffix(root, `\`) {
			root += `\`
		}
		path, err := windows.UTF16PtrFromString(root)
		if err != nil {
			continue
		}
		if windows.GetDriveType(path) != windows.DRIVE_REMOVABLE {
			continue
		}
		volumes = append(volumes, Volume{
			Root:       root,
			Device:     partition.Device,
			Label:      partition.Device,
			Filesystem: partition.Fstype,
			Removable:  true,
		})
	}
	return volumes, nil
}
