//go:build darwin
// +build darwin

package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const diskutilFixture = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>AllDisksAndPartitions</key>
	<array>
		<dict>
			<key>DeviceIdentifier</key>
			<string>disk4</string>
			<key>Content</key>
			<string>FDisk_partition_scheme</string>
			<key>Partitions</key>
			<array>
				<dict>
					<key>DeviceIdentifier</key>
					<string>disk4s1</string>
					<key>Content</key>
					<string>DOS_FAT_32</string>
					<key>VolumeName</key>
					<string>SAMPLER</string>
					<key>MountPoint</key>
					<string>/Volumes/SAMPLER</string>
				</dict>
				<dict>
					<key>DeviceIdentifier</key>
					<string>disk4s2</string>
					<key>Content</key>
					<string>Linux</string>
				</dict>
			</array>
		</dict>
	</array>
</dict>
</plist>`

func TestParseDiskutil(t *testing.T) {
	volumes, err := parseDiskutil([]byte(diskutilFixture))
	require.NoError(t, err)
	require.Len(t, volumes, 1)
	assert.Equal(t, Volume{
		Root:       "/Volumes/SAMPLER",
		Device:     "/dev/disk4s1",
		Label:      "SAMPLER",
		Filesystem: "DOS_FAT_32",
		Removable:  true,
	}, volumes[0])
}

func TestParseDiskutil_Garbage(t *testing.T) {
	_, err := parseDiskutil([]byte("not a plist"))
	assert.Error(t, err)
}
