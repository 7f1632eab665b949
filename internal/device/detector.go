package device

import (
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/gajzzs/sampleload/internal/platform"
	"github.com/gajzzs/sampleload/internal/system"
)

// ErrNoDevices reports that no removable, ready volume was found. It is not
// fatal: callers show it and let the user retry.
var ErrNoDevices = errors.New("no removable devices detected")

// Volume is a removable volume that is mounted and readable.
type Volume struct {
	platform.Volume
	Total uint64
	Free  uint64
}

type Detector struct {
	manager platform.VolumeManager
	usage   func(path string) (*system.Capacity, error)
	logger  *slog.Logger
}

func NewDetector() *Detector {
	return &Detector{
		manager: platform.NewVolumeManager(),
		usage:   system.GetCapacity,
		logger:  slog.Default(),
	}
}

// Volumes returns the removable volumes that are ready for writing, in
// enumeration order. On an OS error or an empty result it returns an empty
// slice and ErrNoDevices; the OS error is logged.
func (d *Detector) Volumes() ([]Volume, error) {
	candidates, err := d.manager.ListRemovableVolumes()
	if err != nil {
		d.logger.Warn("volume enumeration failed", "error", err)
		return []Volume{}, ErrNoDevices
	}

	volumes := []Volume{}
	for _, candidate := range candidates {
		capacity, err := d.usage(candidate.Root)
		if err != nil {
			d.logger.Debug("skipping volume that is not ready", "root", candidate.Root, "error", err)
			continue
		}
		volumes = append(volumes, Volume{
			Volume: candidate,
			Total:  capacity.Total,
			Free:   capacity.Free,
		})
	}
	if len(volumes) == 0 {
		return volumes, ErrNoDevices
	}
	return volumes, nil
}

// ListRemovableVolumes returns the root paths of ready removable volumes.
func (d *Detector) ListRemovableVolumes() ([]string, error) {
	volumes, err := d.Volumes()
	roots := make([]string, 0, len(volumes))
	for _, v := range volumes {
		roots = append(roots, v.Root)
	}
	return roots, err
}

// IsConnected reports whether root is currently a ready removable volume.
func (d *Detector) IsConnected(root string) bool {
	volumes, _ := d.Volumes()
	for _, v := range volumes {
		if filepath.Clean(v.Root) == filepath.Clean(root) {
			return true
		}
	}
	return false
}

// ListRemovableVolumes lists ready removable volume roots using the
// platform volume manager.
func ListRemovableVolumes() ([]string, error) {
	return NewDetector().ListRemovableVolumes()
}
