package app

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/gajzzs/sampleload/internal/audio"
	"github.com/gajzzs/sampleload/internal/device"
	"github.com/gajzzs/sampleload/internal/kit"
	"github.com/gajzzs/sampleload/internal/placer"
)

type column struct {
	title string
	right bool
}

// newTable returns a rounded table writer with one header per column.
// Numbers and sizes are right-aligned; headers always sit left.
func newTable(columns ...column) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, 0, len(columns))
	configs := make([]table.ColumnConfig, 0, len(columns))
	for i, c := range columns {
		header = append(header, c.title)
		cfg := table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft}
		if c.right {
			cfg.Align = text.AlignRight
		}
		configs = append(configs, cfg)
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)
	return tw
}

func volumeTable(volumes []device.Volume) string {
	tw := newTable(
		column{title: "#", right: true},
		column{title: "Root"},
		column{title: "Label"},
		column{title: "Device"},
		column{title: "FS"},
		column{title: "Free", right: true},
		column{title: "Size", right: true},
	)
	for i, v := range volumes {
		tw.AppendRow(table.Row{
			i + 1, v.Root, v.Label, v.Device, v.Filesystem,
			humanize.Bytes(v.Free), humanize.Bytes(v.Total),
		})
	}
	return tw.Render()
}

func slotTable(k *kit.Kit) string {
	tw := newTable(
		column{title: "Slot", right: true},
		column{title: "Sample"},
		column{title: "Size", right: true},
		column{title: "Path"},
	)
	for slot := 1; slot <= placer.SlotCount; slot++ {
		src := k.Source(slot)
		if src == "" {
			tw.AppendRow(table.Row{slot, "(None)", "", ""})
			continue
		}
		info, err := audio.Describe(src)
		size := "missing"
		if err == nil {
			size = humanize.Bytes(uint64(info.Size))
		}
		tw.AppendRow(table.Row{slot, info.Display(), size, src})
	}
	return tw.Render()
}

func planTable(root string, plan []placer.Planned) string {
	tw := newTable(
		column{title: "Slot", right: true},
		column{title: "File"},
		column{title: "Source"},
		column{title: "Destination"},
		column{title: "Status"},
	)
	for _, p := range plan {
		tw.AppendRow(table.Row{
			strconv.Itoa(p.Slot + 1),
			placer.SampleFileName(p.Sample),
			describeSource(p.Source),
			relativeDestination(root, p.Destination),
			planStatus(p),
		})
	}
	return tw.Render()
}
