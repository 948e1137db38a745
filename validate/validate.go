// Command validate provides a small CLI that validates game configuration
// JSON files in a configs directory. It checks:
//   - JSON structure and required fields
//   - Grid dimension bounds
//   - Dice and echo charge ranges
//   - Placement distance and loop augmentation settings
//   - Presence of the player-facing messages
//
// Usage: validate [configs-dir] (defaults to ./configs)
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mazeveil/echomaze/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Notes contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File  string
	Valid bool
	Notes []string
}

// validateConfig loads and validates a single configuration JSON file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
		Notes: []string{},
	}

	config, err := engine.LoadGameConfig(filePath)
	if err != nil {
		result.Valid = false
		result.Notes = append(result.Notes, err.Error())
		return result
	}

	result.Notes = append(result.Notes, fmt.Sprintf("✓ Name: %s", config.Name))
	result.Notes = append(result.Notes, fmt.Sprintf("✓ Grid: %dx%d", config.GridWidth, config.GridHeight))
	result.Notes = append(result.Notes, fmt.Sprintf("✓ Dice: d%d", config.DiceSides))
	result.Notes = append(result.Notes, fmt.Sprintf("✓ Echo charge: %d (%s expiry)", config.MaxEchoCharge, config.EchoExpiry))
	result.Notes = append(result.Notes, fmt.Sprintf("✓ Placement: exit ≥%d, warden ≥%d", config.MinExitDistance, config.MinEnemyDistance))
	result.Notes = append(result.Notes, fmt.Sprintf("✓ Loops: %d passes at %.2f", config.LoopPasses, config.LoopChance))

	return result
}

// main scans the configs directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are
// invalid.
func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No config files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, note := range result.Notes {
				fmt.Println("  " + note)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, note := range result.Notes {
				fmt.Println("  ❌ " + note)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
