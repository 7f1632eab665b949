package placer

import (
	"fmt"
	"path/filepath"
)

const (
	// SlotCount is the number of sample slots in one bank.
	SlotCount = 16

	MinProgram = 1
	MaxProgram = 4
	MinBank    = 1
	MaxBank    = 4

	// Extension is the file extension the player expects, regardless of the
	// source format. Files are copied as-is.
	Extension = ".mp3"
)

// ProgramFolder returns the two-digit folder name for a program ("01".."04").
func ProgramFolder(program int) string {
	return fmt.Sprintf("%02d", program)
}

// SampleNumber maps a bank and a zero-based slot index to the sample number
// on the card. Bank 1 covers 1-16, bank 4 covers 49-64.
func SampleNumber(bank, slot int) int {
	return (bank-1)*SlotCount + slot + 1
}

// SampleFileName returns the three-digit file name for a sample ("017.mp3").
func SampleFileName(sample int) string {
	return fmt.Sprintf("%03d%s", sample, Extension)
}

// DestinationPath returns root/PP/SSS.mp3 for a slot.
func DestinationPath(root string, program, bank, slot int) string {
	return filepath.Join(root, ProgramFolder(program), SampleFileName(SampleNumber(bank, slot)))
}

func validProgram(program int) bool {
	return program >= MinProgram && program <= MaxProgram
}

func validBank(bank int) bool {
	return bank >= MinBank && bank <= MaxBank
}
