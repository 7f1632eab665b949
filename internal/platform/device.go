package platform

// Volume is a mounted filesystem on a removable device
type Volume struct {
	Root       string // mount point, the destination root for a build
	Device     string // OS device path, e.g. /dev/sdb1
	Label      string
	Filesystem string
	Removable  bool
}

// VolumeManager enumerates removable volumes
type VolumeManager interface {
	// ListRemovableVolumes returns mounted volumes on removable devices in
	// the order the OS reports them.
	ListRemovableVolumes() ([]Volume, error)
}

// NewVolumeManager creates a platform-specific volume manager
func NewVolumeManager() VolumeManager {
	return newVolumeManager()
}
