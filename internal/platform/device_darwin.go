//go:build darwin
// +build darwin

package platform

import (
	"fmt"
	"os/exec"

	"howett.net/plist"
)

type macVolumeManager struct {
	diskutil func() ([]byte, error)
}

func newVolumeManager() VolumeManager {
	return &macVolumeManager{
		diskutil: func() ([]byte, error) {
			return exec.Command("diskutil", "list", "-plist", "external").Output()
		},
	}
}

type diskutilPartition struct {
	DeviceIdentifier string `plist:"DeviceIdentifier"`
	VolumeName       string `plist:"VolumeName"`
	Content          string `plist:"Content"`
	MountPoint       string `plist:"MountPoint"`
}

type diskutilOutput struct {
	AllDisksAndPartitions []struct {
		DeviceIdentifier string              `plist:"DeviceIdentifier"`
		VolumeName       string              `plist:"VolumeName"`
		Content          string              `plist:"Content"`
		MountPoint       string              `plist:"MountPoint"`
		Partitions       []diskutilPartition `plist:"Partitions"`
	} `plist:"AllDisksAndPartitions"`
}

func (vm *macVolumeManager) ListRemovableVolumes() ([]Volume, error) {
	output, err := vm.diskutil()
	if err != nil {
		return nil, fmt.Errorf("diskutil failed: %w", err)
	}
	return parseDiskutil(output)
}

// parseDiskutil turns `diskutil list -plist external` output into volumes.
// Unpartitioned media report their mount point on the disk itself.
func parseDiskutil(output []byte) ([]Volume, error) {
	var list diskutilOutput
	if _, err := plist.Unmarshal(output, &list); err != nil {
		return nil, fmt.Errorf("failed to decode diskutil output: %w", err)
	}

	var volumes []Volume
	add := func(p diskutilPartition) {
		if p.MountPoint == "" {
			return
		}
		name := p.VolumeName
		if name == "" {
			name = p.DeviceIdentifier
		}
		volumes = append(volumes, Volume{
			Root:       p.MountPoint,
			Device:     "/dev/" + p.DeviceIdentifier,
			Label:      name,
			Filesystem: p.Content,
			Removable:  true,
		})
	}
	for _, d := range list.AllDisksAndPartitions {
		add(diskutilPartition{
			DeviceIdentifier: d.DeviceIdentifier,
			VolumeName:       d.VolumeName,
			Content:          d.Content,
			MountPoint:       d.MountPoint,
		})
		for _, p := range d.Partitions {
			add(p)
		}
	}
	return volumes, nil
}
