package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gajzzs/sampleload/internal/device"
	"github.com/gajzzs/sampleload/internal/kit"
	"github.com/gajzzs/sampleload/internal/placer"
)

const noDevicesMessage = "No removable microSD cards detected."

func (a *app) newDeviceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Find and select the destination card",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List removable volumes that are mounted and ready",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				volumes, err := a.volumes().Volumes()
				if errors.Is(err, device.ErrNoDevices) {
					fmt.Fprintln(cmd.OutOrStdout(), noDevicesMessage)
					return nil
				}
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), volumeTable(volumes))
				return nil
			},
		},
		&cobra.Command{
			Use:   "select [root]",
			Short: "Use a card as the build destination (default: first detected)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				k, err := a.loadKit()
				if err != nil {
					return err
				}

				var root string
				if len(args) == 1 {
					root = args[0]
				} else {
					roots, err := a.listRoots()
					if errors.Is(err, device.ErrNoDevices) {
						fmt.Fprintln(cmd.OutOrStdout(), noDevicesMessage)
						return nil
					}
					if err != nil {
						return err
					}
					root = roots[0]
				}

				k.Destination = root
				if err := a.saveKit(k); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Selected card: %s\n", root)
				return nil
			},
		},
	)

	return cmd
}

func (a *app) listRoots() ([]string, error) {
	volumes, err := a.volumes().Volumes()
	roots := make([]string, 0, len(volumes))
	for _, v := range volumes {
		roots = append(roots, v.Root)
	}
	return roots, err
}

func (a *app) newSlotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slot",
		Short: "Assign source files to slots 1-16",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set [slot] [file]",
			Short: "Assign a file to a slot",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				slot, err := parseSlot(args[0])
				if err != nil {
					return err
				}
				k, err := a.loadKit()
				if err != nil {
					return err
				}
				if err := k.Set(slot, args[1]); err != nil {
					return err
				}
				if err := a.saveKit(k); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Slot %d: %s\n", slot, k.Source(slot))
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear [slot|all]",
			Short: "Unassign a slot, or every slot",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				k, err := a.loadKit()
				if err != nil {
					return err
				}
				if strings.EqualFold(args[0], "all") {
					k.ClearAll()
				} else {
					slot, err := parseSlot(args[0])
					if err != nil {
						return err
					}
					if err := k.Clear(slot); err != nil {
						return err
					}
				}
				return a.saveKit(k)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "Show the slot assignments",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				k, err := a.loadKit()
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Program %d, bank %d\n", k.Program, k.Bank)
				fmt.Fprintln(cmd.OutOrStdout(), slotTable(k))
				return nil
			},
		},
	)

	return cmd
}

func (a *app) newProgramCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "program [1-4]",
		Short: "Show or select the program folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.selectNumber(cmd, args, "program", placer.MinProgram, placer.MaxProgram,
				func(k *kit.Kit) *int { return &k.Program })
		},
	}
}

func (a *app) newBankCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bank [1-4]",
		Short: "Show or select the bank",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.selectNumber(cmd, args, "bank", placer.MinBank, placer.MaxBank,
				func(k *kit.Kit) *int { return &k.Bank })
		},
	}
}

// selectNumber prints the kit field, or sets it when an argument is given.
func (a *app) selectNumber(cmd *cobra.Command, args []string, name string, min, max int, field func(*kit.Kit) *int) error {
	k, err := a.loadKit()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\n", *field(k))
		return nil
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < min || n > max {
		return fmt.Errorf("%s must be %d-%d, got %q", name, min, max, args[0])
	}
	*field(k) = n
	if err := a.saveKit(k); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Selected %s %d\n", name, n)
	return nil
}

func parseSlot(arg string) (int, error) {
	slot, err := strconv.Atoi(arg)
	if err != nil || slot < 1 || slot > placer.SlotCount {
		return 0, fmt.Errorf("slot must be 1-%d, got %q", placer.SlotCount, arg)
	}
	return slot, nil
}
