// Package placer copies slot assignments onto a sampler card.
//
// A card holds one folder per program ("01".."04"). Each folder holds up to
// 64 samples named "001.mp3".."064.mp3"; bank N occupies samples
// (N-1)*16+1 through N*16. Placement is sequential: a failure in one slot is
// recorded and the remaining slots are still attempted.
package placer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/gajzzs/sampleload/internal/system"
)

// ConfirmFunc decides whether an existing destination may be overwritten.
type ConfirmFunc func(path string) bool

// AlwaysOverwrite confirms every overwrite.
func AlwaysOverwrite(string) bool { return true }

// NeverOverwrite declines every overwrite.
func NeverOverwrite(string) bool { return false }

// Request is a snapshot of one build. Assignments are indexed by zero-based
// slot; an empty string leaves the slot unassigned.
type Request struct {
	Root        string
	Program     int
	Bank        int
	Assignments [SlotCount]string
	// Verify re-reads each copied file and compares digests.
	Verify bool
}

// Planned is the resolved destination for one assigned slot.
type Planned struct {
	Slot        int
	Sample      int
	Source      string
	Destination string
}

// Validate checks the batch preconditions that do not touch the filesystem.
func (r Request) Validate() error {
	if r.Root == "" {
		return ErrNoDeviceSelected
	}
	if !validProgram(r.Program) {
		return fmt.Errorf("%w: program %d outside %d-%d", ErrInvalidRequest, r.Program, MinProgram, MaxProgram)
	}
	if !validBank(r.Bank) {
		return fmt.Errorf("%w: bank %d outside %d-%d", ErrInvalidRequest, r.Bank, MinBank, MaxBank)
	}
	return nil
}

// Plan resolves the destination of every assigned slot in slot order.
func Plan(req Request) ([]Planned, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var plan []Planned
	for i, src := range req.Assignments {
		if src == "" {
			continue
		}
		plan = append(plan, Planned{
			Slot:        i,
			Sample:      SampleNumber(req.Bank, i),
			Source:      src,
			Destination: DestinationPath(req.Root, req.Program, req.Bank, i),
		})
	}
	return plan, nil
}

// Outcome is what happened to one planned slot.
type Outcome int

const (
	Copied Outcome = iota
	Skipped
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Copied:
		return "copied"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Placement records the outcome of one slot.
type Placement struct {
	Planned
	Outcome Outcome
	Reason  string
	Bytes   int64
	Err     error
}

// Result summarizes a build.
type Result struct {
	Program    int
	Bank       int
	Folder     string
	Placements []Placement
	Warnings   []string
}

func (r *Result) count(o Outcome) int {
	n := 0
	for _, p := range r.Placements {
		if p.Outcome == o {
			n++
		}
	}
	return n
}

// Copied returns the number of files written.
func (r *Result) Copied() int { return r.count(Copied) }

// Skipped returns the number of slots left untouched.
func (r *Result) Skipped() int { return r.count(Skipped) }

// Failed returns the number of slots that failed.
func (r *Result) Failed() int { return r.count(Failed) }

// Bytes returns the total bytes written.
func (r *Result) Bytes() int64 {
	var n int64
	for _, p := range r.Placements {
		if p.Outcome == Copied {
			n += p.Bytes
		}
	}
	return n
}

// Err joins the per-slot errors, or returns nil when every slot succeeded or
// was skipped.
func (r *Result) Err() error {
	var errs []error
	for _, p := range r.Placements {
		if p.Err != nil {
			errs = append(errs, p.Err)
		}
	}
	return errors.Join(errs...)
}

// Placer places samples onto a card.
type Placer struct {
	lockDir  string
	logger   *slog.Logger
	writable func(dir string) error
	capacity func(path string) (*system.Capacity, error)
}

// New returns a Placer keeping its locks in lockDir. An empty lockDir uses
// DefaultLockDir; a nil logger uses slog.Default.
func New(lockDir string, logger *slog.Logger) *Placer {
	if lockDir == "" {
		lockDir = DefaultLockDir()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Placer{
		lockDir:  lockDir,
		logger:   logger,
		writable: probeWritable,
		capacity: system.GetCapacity,
	}
}

// Place copies every assigned slot of req onto the card. confirm is asked for
// each destination that already exists; a nil confirm declines.
//
// The returned error covers batch preconditions and cancellation only.
// Per-slot failures are reported through Result.Err.
func Place(ctx context.Context, req Request, confirm ConfirmFunc) (*Result, error) {
	return New("", nil).Place(ctx, req, confirm)
}

// Place is the method form of the package-level Place.
func (p *Placer) Place(ctx context.Context, req Request, confirm ConfirmFunc) (*Result, error) {
	plan, err := Plan(req)
	if err != nil {
		return nil, err
	}
	if confirm == nil {
		confirm = NeverOverwrite
	}

	info, err := os.Stat(req.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDeviceUnavailable, req.Root)
	}

	lock, err := acquireLock(p.lockDir, req.Root)
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	folder := filepath.Join(req.Root, ProgramFolder(req.Program))
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	if err := p.writable(folder); err != nil {
		return nil, fmt.Errorf("%w: %s is not writable: %v", ErrDeviceUnavailable, folder, err)
	}

	result := &Result{Program: req.Program, Bank: req.Bank, Folder: folder}
	if warning := p.checkCapacity(req.Root, plan); warning != "" {
		result.Warnings = append(result.Warnings, warning)
	}

	p.logger.Info("placing samples",
		"root", req.Root, "program", req.Program, "bank", req.Bank, "assigned", len(plan))

	for _, planned := range plan {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		placement := p.placeOne(planned, req.Verify, confirm)
		result.Placements = append(result.Placements, placement)
	}

	p.logger.Info("placement finished",
		"copied", result.Copied(), "skipped", result.Skipped(), "failed", result.Failed())
	return result, nil
}

func (p *Placer) placeOne(planned Planned, verify bool, confirm ConfirmFunc) Placement {
	placement := Placement{Planned: planned}
	logger := p.logger.With("slot", planned.Slot+1, "source", planned.Source, "destination", planned.Destination)

	if dstInfo, err := os.Stat(planned.Destination); err == nil {
		if srcInfo, err := os.Stat(planned.Source); err == nil && os.SameFile(srcInfo, dstInfo) {
			placement.Outcome = Skipped
			placement.Reason = "already in place"
			logger.Info("sample already in place")
			return placement
		}
		if !confirm(planned.Destination) {
			placement.Outcome = Skipped
			placement.Reason = "kept existing file"
			logger.Info("overwrite declined")
			return placement
		}
	}

	written, kind, err := copySample(planned.Source, planned.Destination, verify)
	if err != nil {
		placement.Outcome = Failed
		placement.Err = &SlotError{
			Slot:        planned.Slot,
			Source:      planned.Source,
			Destination: planned.Destination,
			Kind:        kind,
			Err:         err,
		}
		logger.Error("sample copy failed", "error", err)
		return placement
	}

	placement.Outcome = Copied
	placement.Bytes = written
	logger.Info("sample copied", "bytes", written)
	return placement
}

// checkCapacity returns a warning when the sources clearly exceed the free
// space on the card. Overwrites may free space, so it never blocks a build.
func (p *Placer) checkCapacity(root string, plan []Planned) string {
	var needed uint64
	for _, planned := range plan {
		if info, err := os.Stat(planned.Source); err == nil {
			needed += uint64(info.Size())
		}
	}
	if needed == 0 {
		return ""
	}
	capacity, err := p.capacity(root)
	if err != nil {
		p.logger.Warn("could not read card capacity", "root", root, "error", err)
		return ""
	}
	if capacity.Free >= needed {
		return ""
	}
	warning := fmt.Sprintf("samples need %s but only %s is free on %s",
		humanize.Bytes(needed), humanize.Bytes(capacity.Free), root)
	p.logger.Warn("insufficient free space", "needed", needed, "free", capacity.Free)
	return warning
}

func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".sampleload-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
