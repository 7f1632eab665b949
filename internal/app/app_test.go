package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gajzzs/sampleload/internal/device"
	"github.com/gajzzs/sampleload/internal/kit"
	"github.com/gajzzs/sampleload/internal/placer"
	"github.com/gajzzs/sampleload/internal/platform"
)

type fakeVolumes struct {
	volumes []device.Volume
	err     error
}

func (f fakeVolumes) Volumes() ([]device.Volume, error) {
	return f.volumes, f.err
}

func (f fakeVolumes) IsConnected(root string) bool {
	for _, v := range f.volumes {
		if v.Root == root {
			return true
		}
	}
	return false
}

type harness struct {
	t       *testing.T
	app     *app
	kitPath string
	args    []string
	asked   []string
}

func newHarness(t *testing.T, volumes fakeVolumes) *harness {
	t.Helper()
	dir := t.TempDir()
	h := &harness{t: t, kitPath: filepath.Join(dir, "kit.yaml")}
	h.app = newApp()
	h.app.lockDir = filepath.Join(dir, "locks")
	h.app.volumes = func() volumeLister { return volumes }
	h.app.interactive = func() bool { return false }
	h.args = []string{"--kit", h.kitPath, "--log-file", filepath.Join(dir, "sampleload.log")}
	return h
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	root := h.app.rootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(append([]string{}, args...), h.args...))
	err := root.Execute()
	return out.String(), err
}

func (h *harness) kit() *kit.Kit {
	h.t.Helper()
	k, err := kit.Load(h.kitPath)
	require.NoError(h.t, err)
	return k
}

func writeSample(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSlotCommands(t *testing.T) {
	h := newHarness(t, fakeVolumes{})
	kick := writeSample(t, "kick.wav", "kick")

	out, err := h.run("slot", "set", "3", kick)
	require.NoError(t, err)
	assert.Contains(t, out, "Slot 3: "+kick)
	assert.Equal(t, kick, h.kit().Source(3))

	out, err = h.run("slot", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "kick.wav")
	assert.Contains(t, out, "(None)")

	_, err = h.run("slot", "set", "17", kick)
	assert.ErrorContains(t, err, "slot must be 1-16")

	_, err = h.run("slot", "clear", "3")
	require.NoError(t, err)
	assert.Equal(t, 0, h.kit().Assigned())
}

func TestSlotClearAll(t *testing.T) {
	h := newHarness(t, fakeVolumes{})
	_, err := h.run("slot", "set", "1", writeSample(t, "a.wav", "a"))
	require.NoError(t, err)
	_, err = h.run("slot", "set", "2", writeSample(t, "b.wav", "b"))
	require.NoError(t, err)

	_, err = h.run("slot", "clear", "all")
	require.NoError(t, err)
	assert.Equal(t, 0, h.kit().Assigned())
}

func TestProgramAndBank(t *testing.T) {
	h := newHarness(t, fakeVolumes{})

	out, err := h.run("program")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	_, err = h.run("program", "3")
	require.NoError(t, err)
	_, err = h.run("bank", "4")
	require.NoError(t, err)
	assert.Equal(t, 3, h.kit().Program)
	assert.Equal(t, 4, h.kit().Bank)

	_, err = h.run("bank", "5")
	assert.ErrorContains(t, err, "bank must be 1-4")
	_, err = h.run("program", "x")
	assert.Error(t, err)
}

func TestDeviceList(t *testing.T) {
	h := newHarness(t, fakeVolumes{volumes: []device.Volume{
		{Volume: platform.Volume{Root: "/media/SAMPLER", Label: "SAMPLER", Device: "/dev/sdb1", Filesystem: "vfat"}, Total: 8 << 30, Free: 4 << 30},
	}})

	out, err := h.run("device", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "/media/SAMPLER")
	assert.Contains(t, out, "vfat")
}

func TestDeviceList_None(t *testing.T) {
	h := newHarness(t, fakeVolumes{volumes: []device.Volume{}, err: device.ErrNoDevices})

	out, err := h.run("device", "list")
	require.NoError(t, err)
	assert.Contains(t, out, noDevicesMessage)
}

func TestDeviceSelect(t *testing.T) {
	h := newHarness(t, fakeVolumes{volumes: []device.Volume{
		{Volume: platform.Volume{Root: "/media/first"}},
		{Volume: platform.Volume{Root: "/media/second"}},
	}})

	_, err := h.run("device", "select")
	require.NoError(t, err)
	assert.Equal(t, "/media/first", h.kit().Destination)

	_, err = h.run("device", "select", "/media/second")
	require.NoError(t, err)
	assert.Equal(t, "/media/second", h.kit().Destination)
}

func TestDeviceSelect_NoneLeavesKit(t *testing.T) {
	h := newHarness(t, fakeVolumes{volumes: []device.Volume{}, err: device.ErrNoDevices})

	out, err := h.run("device", "select")
	require.NoError(t, err)
	assert.Contains(t, out, noDevicesMessage)
	assert.Equal(t, "", h.kit().Destination)
}

func TestBuild_CopiesKit(t *testing.T) {
	h := newHarness(t, fakeVolumes{})
	card := t.TempDir()
	_, err := h.run("slot", "set", "1", writeSample(t, "kick.wav", "kick"))
	require.NoError(t, err)
	_, err = h.run("slot", "set", "16", writeSample(t, "hat.mp3", "hat"))
	require.NoError(t, err)

	out, err := h.run("build", "--dest", card, "--program", "1", "--bank", "2", "--verify")
	require.NoError(t, err)
	assert.Contains(t, out, "Samples uploaded to program 1 on SD card.")
	assert.Contains(t, out, "Copied 2, skipped 0, failed 0")

	got, err := os.ReadFile(filepath.Join(card, "01", "017.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "kick", string(got))
	got, err = os.ReadFile(filepath.Join(card, "01", "032.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "hat", string(got))
}

func TestBuild_UsesSelectedCard(t *testing.T) {
	card := t.TempDir()
	h := newHarness(t, fakeVolumes{})
	_, err := h.run("device", "select", card)
	require.NoError(t, err)
	_, err = h.run("program", "4")
	require.NoError(t, err)
	_, err = h.run("bank", "4")
	require.NoError(t, err)
	_, err = h.run("slot", "set", "16", writeSample(t, "crash.wav", "crash"))
	require.NoError(t, err)

	_, err = h.run("build")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(card, "04", "064.mp3"))
}

func TestBuild_OverwriteDecisions(t *testing.T) {
	card := t.TempDir()
	existing := filepath.Join(card, "01", "001.mp3")
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0o755))

	reset := func() {
		require.NoError(t, os.WriteFile(existing, []byte("original"), 0o644))
	}
	content := func() string {
		data, err := os.ReadFile(existing)
		require.NoError(t, err)
		return string(data)
	}

	h := newHarness(t, fakeVolumes{})
	_, err := h.run("slot", "set", "1", writeSample(t, "new.wav", "new"))
	require.NoError(t, err)

	reset()
	out, err := h.run("build", "--dest", card)
	require.NoError(t, err)
	assert.Contains(t, out, "not a terminal")
	assert.Contains(t, out, "kept existing file, 01/001.mp3")
	assert.Equal(t, "original", content())

	reset()
	_, err = h.run("build", "--dest", card, "--no-overwrite")
	require.NoError(t, err)
	assert.Equal(t, "original", content())

	reset()
	h.app.interactive = func() bool { return true }
	h.app.confirm = func(path string) bool {
		h.asked = append(h.asked, path)
		return true
	}
	_, err = h.run("build", "--dest", card)
	require.NoError(t, err)
	assert.Equal(t, []string{existing}, h.asked)
	assert.Equal(t, "new", content())

	reset()
	_, err = h.run("build", "--dest", card, "--yes")
	require.NoError(t, err)
	assert.Len(t, h.asked, 1)
	assert.Equal(t, "new", content())

	_, err = h.run("build", "--dest", card, "--yes", "--no-overwrite")
	assert.Error(t, err)
}

func TestBuild_NoCardSelected(t *testing.T) {
	h := newHarness(t, fakeVolumes{})
	_, err := h.run("build")
	require.Error(t, err)
	assert.ErrorIs(t, err, placer.ErrNoDeviceSelected)
	assert.Contains(t, err.Error(), "please select an SD card first")
}

func TestBuild_MissingCard(t *testing.T) {
	h := newHarness(t, fakeVolumes{})
	_, err := h.run("build", "--dest", filepath.Join(t.TempDir(), "ejected"))
	assert.ErrorIs(t, err, placer.ErrDeviceUnavailable)
}

func TestBuild_ReportsSlotFailures(t *testing.T) {
	card := t.TempDir()
	h := newHarness(t, fakeVolumes{})
	doomed := writeSample(t, "doomed.wav", "x")
	_, err := h.run("slot", "set", "1", doomed)
	require.NoError(t, err)
	_, err = h.run("slot", "set", "2", writeSample(t, "ok.wav", "ok"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(doomed))

	out, err := h.run("build", "--dest", card)
	assert.ErrorContains(t, err, "1 sample(s) could not be copied")
	assert.Contains(t, out, "Copied 1, skipped 0, failed 1")
	assert.Contains(t, out, "source read error")
	assert.FileExists(t, filepath.Join(card, "01", "002.mp3"))
}

func TestPlan(t *testing.T) {
	card := t.TempDir()
	h := newHarness(t, fakeVolumes{})
	_, err := h.run("slot", "set", "1", writeSample(t, "kick.wav", "kick"))
	require.NoError(t, err)

	out, err := h.run("plan", "--dest", card, "--bank", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "017.mp3")
	assert.Contains(t, out, "01/017.mp3")
	assert.Contains(t, out, "new, copied as-is")
	assert.NoFileExists(t, filepath.Join(card, "01", "017.mp3"))

	_, err = h.run("plan", "--dest", card, "--bank", "7")
	assert.ErrorIs(t, err, placer.ErrInvalidRequest)
}

func TestPlan_Empty(t *testing.T) {
	h := newHarness(t, fakeVolumes{})
	out, err := h.run("plan", "--dest", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No slots assigned.")
}

func TestStatus(t *testing.T) {
	card := t.TempDir()
	h := newHarness(t, fakeVolumes{})
	out, err := h.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "No card selected")

	_, err = h.run("device", "select", card)
	require.NoError(t, err)
	out, err = h.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "Root: "+card)
	assert.Contains(t, out, "Removable: false")
	assert.Contains(t, out, "Ready: true")
	assert.Contains(t, out, "Assigned slots: 0/16")
}

func TestStatus_DetectedCard(t *testing.T) {
	card := t.TempDir()
	h := newHarness(t, fakeVolumes{volumes: []device.Volume{
		{Volume: platform.Volume{Root: card, Removable: true}},
	}})
	_, err := h.run("device", "select")
	require.NoError(t, err)

	out, err := h.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "Removable: true")
}

func TestBuild_WarnsWhenCardNotDetected(t *testing.T) {
	card := t.TempDir()
	h := newHarness(t, fakeVolumes{})
	_, err := h.run("slot", "set", "1", writeSample(t, "kick.wav", "kick"))
	require.NoError(t, err)

	out, err := h.run("build", "--dest", card)
	require.NoError(t, err)
	assert.Contains(t, out, "Warning: "+card+" is not a detected removable card")
	assert.FileExists(t, filepath.Join(card, "01", "001.mp3"))

	h = newHarness(t, fakeVolumes{volumes: []device.Volume{
		{Volume: platform.Volume{Root: card, Removable: true}},
	}})
	_, err = h.run("slot", "set", "2", writeSample(t, "snare.wav", "snare"))
	require.NoError(t, err)
	out, err = h.run("build", "--dest", card)
	require.NoError(t, err)
	assert.NotContains(t, out, "is not a detected removable card")
}

func TestBuild_NothingCopied(t *testing.T) {
	card := t.TempDir()
	h := newHarness(t, fakeVolumes{})
	doomed := writeSample(t, "doomed.wav", "x")
	_, err := h.run("slot", "set", "1", doomed)
	require.NoError(t, err)
	require.NoError(t, os.Remove(doomed))

	out, err := h.run("build", "--dest", card)
	require.Error(t, err)
	assert.NotContains(t, out, "Samples uploaded")
	assert.Contains(t, out, "No samples uploaded to program 1.")
	assert.Contains(t, out, "Copied 0, skipped 0, failed 1")
}

func TestPlan_IdenticalDestination(t *testing.T) {
	card := t.TempDir()
	h := newHarness(t, fakeVolumes{})
	_, err := h.run("slot", "set", "1", writeSample(t, "kick.mp3", "kick"))
	require.NoError(t, err)
	dst := filepath.Join(card, "01", "001.mp3")
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))
	require.NoError(t, os.WriteFile(dst, []byte("kick"), 0o644))

	out, err := h.run("plan", "--dest", card)
	require.NoError(t, err)
	assert.Contains(t, out, "identical")

	require.NoError(t, os.WriteFile(dst, []byte("older kick"), 0o644))
	out, err = h.run("plan", "--dest", card)
	require.NoError(t, err)
	assert.Contains(t, out, "overwrite?")
	assert.NotContains(t, out, "identical")
}
