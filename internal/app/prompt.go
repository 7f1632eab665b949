package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
)

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// promptOverwrite asks on the terminal whether to replace an existing sample.
// Anything but an explicit yes keeps the file.
func promptOverwrite(path string) bool {
	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("Sample %s already exists. Overwrite", filepath.Base(path)),
		IsConfirm: true,
	}
	_, err := prompt.Run()
	return err == nil
}
