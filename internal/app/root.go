package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gajzzs/sampleload/internal/config"
	"github.com/gajzzs/sampleload/internal/device"
	"github.com/gajzzs/sampleload/internal/kit"
	"github.com/gajzzs/sampleload/internal/placer"
)

type volumeLister interface {
	Volumes() ([]device.Volume, error)
	IsConnected(root string) bool
}

// app carries what the commands share for one invocation.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
	closer  io.Closer

	lockDir     string
	volumes     func() volumeLister
	interactive func() bool
	confirm     func(path string) bool
}

func newApp() *app {
	return &app{
		volumes:     func() volumeLister { return device.NewDetector() },
		interactive: stdinIsTerminal,
		confirm:     promptOverwrite,
	}
}

// NewRootCommand builds the sampleload command tree.
func NewRootCommand() *cobra.Command {
	return newApp().rootCommand()
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "sampleload",
		Short: "Load sample kits onto a sampler microSD card",
		Long: `sampleload assigns up to 16 audio files to slots and copies them onto a
removable card as <program>/<sample>.mp3, where program is 01-04 and
sample is 001-064 ((bank-1)*16 + slot).`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: sampleload.yaml in the user config dir or .)")
	flags.String("kit", "", "kit file holding slot assignments (.yaml or .toml)")
	flags.String("log-file", "", "log file path")
	flags.BoolP("verbose", "v", false, "log at debug level")

	root.AddCommand(
		a.newDeviceCommand(),
		a.newSlotCommand(),
		a.newProgramCommand(),
		a.newBankCommand(),
		a.newPlanCommand(),
		a.newBuildCommand(),
		a.newStatusCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger, a.closer = config.NewLogger(cfg.Log)
	slog.SetDefault(a.logger)
	a.logger.Debug("configuration loaded", "file", cfg.File, "kit", cfg.KitPath, "command", cmd.CommandPath())
	return nil
}

func (a *app) teardown() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func (a *app) loadKit() (*kit.Kit, error) {
	k, err := kit.Load(a.cfg.KitPath)
	if err != nil {
		return nil, err
	}
	return k, nil
}

func (a *app) saveKit(k *kit.Kit) error {
	if err := k.Save(a.cfg.KitPath); err != nil {
		return fmt.Errorf("failed to save kit: %w", err)
	}
	a.logger.Debug("kit saved", "path", a.cfg.KitPath, "assigned", k.Assigned())
	return nil
}

func (a *app) newPlacer() *placer.Placer {
	return placer.New(a.lockDir, a.logger)
}
