package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/gajzzs/sampleload/internal/audio"
	"github.com/gajzzs/sampleload/internal/crypto"
	"github.com/gajzzs/sampleload/internal/placer"
)

type buildFlags struct {
	dest        string
	program     int
	bank        int
	yes         bool
	noOverwrite bool
}

func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.dest, "dest", "d", "", "destination card root (overrides the selected card)")
	cmd.Flags().IntVarP(&f.program, "program", "p", 0, "program 1-4 (overrides the kit)")
	cmd.Flags().IntVarP(&f.bank, "bank", "b", 0, "bank 1-4 (overrides the kit)")
}

// request snapshots the kit with any flag overrides applied.
func (a *app) request(cmd *cobra.Command, f *buildFlags) (placer.Request, error) {
	k, err := a.loadKit()
	if err != nil {
		return placer.Request{}, err
	}
	req := k.Request(a.cfg.Verify)
	if cmd.Flags().Changed("dest") {
		req.Root = f.dest
	}
	if cmd.Flags().Changed("program") {
		req.Program = f.program
	}
	if cmd.Flags().Changed("bank") {
		req.Bank = f.bank
	}
	return req, nil
}

func (a *app) newPlanCommand() *cobra.Command {
	f := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show where each slot would be written, without copying",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.request(cmd, f)
			if err != nil {
				return err
			}
			plan, err := placer.Plan(req)
			if err != nil {
				return explain(err)
			}
			if len(plan) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No slots assigned.")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Program %d, bank %d -> %s\n", req.Program, req.Bank, req.Root)
			fmt.Fprintln(cmd.OutOrStdout(), planTable(req.Root, plan))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) newBuildCommand() *cobra.Command {
	f := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Copy the assigned samples onto the card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.request(cmd, f)
			if err != nil {
				return err
			}

			if req.Root != "" && !a.volumes().IsConnected(req.Root) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s is not a detected removable card\n", req.Root)
			}

			result, err := a.newPlacer().Place(cmd.Context(), req, a.confirmFunc(cmd.ErrOrStderr(), f))
			if result != nil {
				printResult(cmd.OutOrStdout(), req, result, err)
			}
			if err != nil {
				return explain(err)
			}
			if failed := result.Failed(); failed > 0 {
				return fmt.Errorf("%d sample(s) could not be copied", failed)
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "overwrite existing samples without asking")
	cmd.Flags().BoolVar(&f.noOverwrite, "no-overwrite", false, "keep existing samples without asking")
	cmd.Flags().Bool("verify", false, "re-read each copied sample and compare digests")
	cmd.MarkFlagsMutuallyExclusive("yes", "no-overwrite")
	return cmd
}

// confirmFunc picks how overwrites are decided. Without a terminal nothing
// can be asked, so existing samples are kept.
func (a *app) confirmFunc(stderr io.Writer, f *buildFlags) placer.ConfirmFunc {
	switch {
	case f.yes:
		return placer.AlwaysOverwrite
	case f.noOverwrite:
		return placer.NeverOverwrite
	case !a.interactive():
		return func(path string) bool {
			fmt.Fprintf(stderr, "Keeping existing %s (not a terminal; use --yes to overwrite)\n", filepath.Base(path))
			return false
		}
	default:
		return a.confirm
	}
}

// printResult reports a build. err is the batch error from Place, set when the
// build stopped early.
func printResult(w io.Writer, req placer.Request, result *placer.Result, err error) {
	switch {
	case err != nil:
		fmt.Fprintf(w, "Upload to program %d stopped early.\n", req.Program)
	case result.Copied() > 0:
		fmt.Fprintf(w, "Samples uploaded to program %d on SD card.\n", req.Program)
	default:
		fmt.Fprintf(w, "No samples uploaded to program %d.\n", req.Program)
	}
	fmt.Fprintf(w, "Copied %d, skipped %d, failed %d (%s written)\n",
		result.Copied(), result.Skipped(), result.Failed(), humanize.Bytes(uint64(result.Bytes())))
	for _, p := range result.Placements {
		switch p.Outcome {
		case placer.Skipped:
			fmt.Fprintf(w, "  slot %d: %s, %s\n", p.Slot+1, p.Reason, relativeDestination(req.Root, p.Destination))
		case placer.Failed:
			fmt.Fprintf(w, "  slot %d: %v\n", p.Slot+1, p.Err)
		}
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}
}

// explain adds a hint to batch-level failures.
func explain(err error) error {
	switch {
	case errors.Is(err, placer.ErrNoDeviceSelected):
		return fmt.Errorf("%w: please select an SD card first (sampleload device select)", err)
	case errors.Is(err, placer.ErrDeviceUnavailable):
		return fmt.Errorf("%w: is the card still inserted and writable?", err)
	default:
		return err
	}
}

func describeSource(path string) string {
	info, err := audio.Describe(path)
	if err != nil {
		return filepath.Base(path)
	}
	return info.Display()
}

func relativeDestination(root, dst string) string {
	if rel, err := filepath.Rel(root, dst); err == nil {
		return filepath.ToSlash(rel)
	}
	return dst
}

func planStatus(p placer.Planned) string {
	srcInfo, err := os.Stat(p.Source)
	if err != nil {
		return "missing source"
	}
	status := "new"
	if dstInfo, err := os.Stat(p.Destination); err == nil {
		status = "overwrite?"
		if os.SameFile(srcInfo, dstInfo) {
			status = "in place"
		} else if same, err := crypto.SameContent(p.Source, p.Destination); err == nil && same {
			status = "identical"
		}
	}
	if !audio.IsMP3(p.Source) {
		status += ", copied as-is"
	}
	return status
}
