//go:build !linux && !darwin && !windows
// +build !linux,!darwin,!windows

package platform

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
)

// Without a removable flag from the OS, volumes mounted under the usual
// automount locations are treated as removable.
var removableMountPrefixes = []string{"/media/", "/mnt/", "/run/media/", "/Volumes/"}

type genericVolumeManager struct{}

func newVolumeManager() VolumeManager {
	return &genericVolumeManager{}
}

func (vm *genericVolumeManager) ListRemovableVolumes() ([]Volume, error) {
	partitions, err := disk.Partitions(false)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}

	var volumes []Volume
	for _, partition := range partitions {
		if !hasRemovablePrefix(partition.Mountpoint) {
			continue
		}
		volumes = append(volumes, Volume{
			Root:       partition.Mountpoint,
			Device:     partition.Device,
			Label:      filepath.Base(partition.Mountpoint),
			Filesystem: partition.Fstype,
			Removable:  true,
		})
	}
	return volumes, nil
}

func hasRemovablePrefix(mountpoint string) bool {
	for _, prefix := range removableMountPrefixes {
		if strings.HasPrefix(mountpoint, prefix) {
			return true
		}
	}
	return false
}
