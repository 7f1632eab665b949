//go:build linux
// +build linux

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
)

type linuxVolumeManager struct {
	sysRoot    string
	labelDir   string
	partitions func() ([]disk.PartitionStat, error)
}

func newVolumeManager() VolumeManager {
	return &linuxVolumeManager{
		sysRoot:  "/sys",
		labelDir: "/dev/disk/by-label",
		partitions: func() ([]disk.PartitionStat, error) {
			return disk.Partitions(false)
		},
	}
}

func (vm *linuxVolumeManager) ListRemovableVolumes() ([]Volume, error) {
	partitions, err := vm.partitions()
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}

	var volumes []Volume
	for _, partition := range partitions {
		if partition.Mountpoint == "" || !strings.HasPrefix(partition.Device, "/dev/") {
			continue
		}
		base := baseDevice(filepath.Base(partition.Device))
		if !vm.isRemovable(base) {
			continue
		}
		volumes = append(volumes, Volume{
			Root:       partition.Mountpoint,
			Device:     partition.Device,
			Label:      vm.labelFor(partition.Device, base),
			Filesystem: partition.Fstype,
			Removable:  true,
		})
	}
	return volumes, nil
}

// Partition names carry a "p" before the number when the disk name ends in a digit.
var partitionSuffix = regexp.MustCompile(`^((?:mmcblk|nvme\d+n|loop|md)\d+)p\d+$`)

// baseDevice returns the whole-disk name for a partition name:
// sdb1 -> sdb, mmcblk0p1 -> mmcblk0, nvme0n1p2 -> nvme0n1.
func baseDevice(name string) string {
	if m := partitionSuffix.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	if strings.HasPrefix(name, "mmcblk") || strings.HasPrefix(name, "nvme") {
		return name
	}
	return strings.TrimRight(name, "0123456789")
}

// isRemovable reports whether the kernel flags the disk as removable. Built-in
// SD slots (mmcblk) often report 0 but always hold removable media.
func (vm *linuxVolumeManager) isRemovable(base string) bool {
	if strings.HasPrefix(base, "mmcblk") {
		return true
	}
	data, err := os.ReadFile(filepath.Join(vm.sysRoot, "block", base, "removable"))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == "1"
}

func (vm *linuxVolumeManager) labelFor(devPath, base string) string {
	entries, err := os.ReadDir(vm.labelDir)
	if err == nil {
		for _, entry := range entries {
			linkPath := filepath.Join(vm.labelDir, entry.Name())
			target, err := os.Readlink(linkPath)
			if err != nil {
				continue
			}
			if !filepath.IsAbs(target) {
				target = filepath.Join(filepath.Dir(linkPath), target)
			}
			if filepath.Clean(target) == devPath {
				return unescapeLabel(entry.Name())
			}
		}
	}

	// Fallback: device model from sysfs
	if data, err := os.ReadFile(filepath.Join(vm.sysRoot, "block", base, "device", "model")); err == nil {
		if model := strings.TrimSpace(string(data)); model != "" {
			return model
		}
	}
	return base
}

// unescapeLabel decodes udev's \xNN escapes in /dev/disk/by-label names.
func unescapeLabel(name string) string {
	if !strings.Contains(name, `\x`) {
		return name
	}
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		if i+3 < len(name) && name[i] == '\\' && name[i+1] == 'x' {
			if v, err := strconv.ParseUint(name[i+2:i+4], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(name[i])
	}
	return b.String()
}
