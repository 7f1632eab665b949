// Package kit holds the slot assignments a user builds up between commands:
// which source file goes in each of the 16 slots, plus the selected program,
// bank and destination card. Kits are stored as YAML, or TOML when the file
// name ends in .toml.
package kit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gajzzs/sampleload/internal/placer"
)

var (
	ErrInvalidSlot = errors.New("invalid slot")
	ErrInvalidKit  = errors.New("invalid kit file")
)

type slotEntry struct {
	Slot int    `yaml:"slot" toml:"slot"`
	Path string `yaml:"path" toml:"path"`
}

type kitFile struct {
	Destination string      `yaml:"destination,omitempty" toml:"destination,omitempty"`
	Program     int         `yaml:"program" toml:"program"`
	Bank        int         `yaml:"bank" toml:"bank"`
	Slots       []slotEntry `yaml:"slots" toml:"slots"`
}

// Kit is the editable session state. Slots are numbered 1-16.
type Kit struct {
	Destination string
	Program     int
	Bank        int
	assignments [placer.SlotCount]string
}

// New returns an empty kit on program 1, bank 1.
func New() *Kit {
	return &Kit{Program: placer.MinProgram, Bank: placer.MinBank}
}

// Load reads a kit file. A missing file yields an empty kit. Relative source
// paths are resolved against the kit file's directory.
func Load(path string) (*Kit, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}

	var f kitFile
	if isTOML(path) {
		err = toml.Unmarshal(data, &f)
	} else {
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidKit, path, err)
	}

	k := New()
	k.Destination = f.Destination
	if f.Program != 0 {
		k.Program = f.Program
	}
	if f.Bank != 0 {
		k.Bank = f.Bank
	}
	if err := k.validateSelection(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidKit, path, err)
	}

	base := filepath.Dir(path)
	for _, entry := range f.Slots {
		if err := checkSlot(entry.Slot); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidKit, path, err)
		}
		if k.assignments[entry.Slot-1] != "" {
			return nil, fmt.Errorf("%w: %s: slot %d assigned twice", ErrInvalidKit, path, entry.Slot)
		}
		src := entry.Path
		if src != "" && !filepath.IsAbs(src) {
			src = filepath.Join(base, src)
		}
		k.assignments[entry.Slot-1] = src
	}
	return k, nil
}

// Save writes the kit to path, creating parent directories.
func (k *Kit) Save(path string) error {
	f := kitFile{
		Destination: k.Destination,
		Program:     k.Program,
		Bank:        k.Bank,
		Slots:       []slotEntry{},
	}
	for i, src := range k.assignments {
		if src != "" {
			f.Slots = append(f.Slots, slotEntry{Slot: i + 1, Path: src})
		}
	}

	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(f)
	} else {
		data, err = yaml.Marshal(f)
	}
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Set assigns a source file to slot (1-16). The path is made absolute and
// must name an existing regular file.
func (k *Kit) Set(slot int, path string) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("cannot assign %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("cannot assign %s: not a regular file", path)
	}
	k.assignments[slot-1] = abs
	return nil
}

// Clear unassigns slot (1-16).
func (k *Kit) Clear(slot int) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	k.assignments[slot-1] = ""
	return nil
}

// ClearAll unassigns every slot.
func (k *Kit) ClearAll() {
	k.assignments = [placer.SlotCount]string{}
}

// Source returns the file assigned to slot (1-16), or "".
func (k *Kit) Source(slot int) string {
	if checkSlot(slot) != nil {
		return ""
	}
	return k.assignments[slot-1]
}

// Assignments returns a snapshot indexed by zero-based slot.
func (k *Kit) Assignments() [placer.SlotCount]string {
	return k.assignments
}

// Assigned returns the number of assigned slots.
func (k *Kit) Assigned() int {
	n := 0
	for _, src := range k.assignments {
		if src != "" {
			n++
		}
	}
	return n
}

// Request builds a placement request from the kit.
func (k *Kit) Request(verify bool) placer.Request {
	return placer.Request{
		Root:        k.Destination,
		Program:     k.Program,
		Bank:        k.Bank,
		Assignments: k.assignments,
		Verify:      verify,
	}
}

func (k *Kit) validateSelection() error {
	if k.Program < placer.MinProgram || k.Program > placer.MaxProgram {
		return fmt.Errorf("program %d outside %d-%d", k.Program, placer.MinProgram, placer.MaxProgram)
	}
	if k.Bank < placer.MinBank || k.Bank > placer.MaxBank {
		return fmt.Errorf("bank %d outside %d-%d", k.Bank, placer.MinBank, placer.MaxBank)
	}
	return nil
}

func checkSlot(slot int) error {
	if slot < 1 || slot > placer.SlotCount {
		return fmt.Errorf("%w: %d (want 1-%d)", ErrInvalidSlot, slot, placer.SlotCount)
	}
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
