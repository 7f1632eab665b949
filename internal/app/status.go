package app

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/gajzzs/sampleload/internal/system"
)

func (a *app) newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:                   "status",
		Short:                 "Show the kit, the selected card and its free space",
		DisableFlagsInUseLine: true,
		Args:                  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			k, err := a.loadKit()
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "sampleload status")
			fmt.Fprintln(out, "=================")

			fmt.Fprintln(out, "\nKit:")
			fmt.Fprintf(out, "  File: %s\n", a.cfg.KitPath)
			fmt.Fprintf(out, "  Program: %d\n", k.Program)
			fmt.Fprintf(out, "  Bank: %d\n", k.Bank)
			fmt.Fprintf(out, "  Assigned slots: %d/16\n", k.Assigned())

			fmt.Fprintln(out, "\nCard:")
			if k.Destination == "" {
				fmt.Fprintln(out, "  No card selected")
			} else {
				fmt.Fprintf(out, "  Root: %s\n", k.Destination)
				fmt.Fprintf(out, "  Removable: %t\n", a.volumes().IsConnected(k.Destination))
				if capacity, err := system.GetCapacity(k.Destination); err == nil {
					fmt.Fprintf(out, "  Ready: true\n")
					fmt.Fprintf(out, "  Free: %s of %s\n", humanize.Bytes(capacity.Free), humanize.Bytes(capacity.Total))
				} else {
					fmt.Fprintf(out, "  Ready: false\n")
				}
			}

			if host, err := system.GetHostInfo(); err == nil {
				fmt.Fprintf(out, "\nHost: %s\n", host)
			}
			if a.cfg.File != "" {
				fmt.Fprintf(out, "Config: %s\n", a.cfg.File)
			}
			return nil
		},
	}
}
