package infra

import (
	"fmt"
	"strings"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

// PrintBanner displays the startup banner with mode-specific warnings.
func PrintBanner(cfg *Config) {
	mode := strings.ToUpper(cfg.App.Mode)

	color := ColorCyan
	modeDesc := "SHADOW (DECISIONS ARE ADVISORY)"
	if mode == "LIVE" {
		color = ColorRed
		modeDesc = "LIVE FEE ENFORCEMENT"
	}

	fmt.Println()
	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s#              BVCC Dynamic Fee Engine                    #%s\n", color, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s#   VENUE:   %-36s #%s\n", color, cfg.Venue.ID, ColorReset)
	fmt.Printf("%s#   MODE:    %-36s #%s\n", color, modeDesc, ColorReset)
	fmt.Printf("%s#   VERSION: %-36s #%s\n", color, cfg.App.Version, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)

	if mode == "LIVE" {
		fmt.Printf("%s#   WARNING: FEE DECISIONS BIND REAL TRADES               #%s\n", ColorRed, ColorReset)
		fmt.Printf("%s#   VERIFY THE CONFIG AGAINST A SHADOW RUN FIRST          #%s\n", ColorRed, ColorReset)
	}

	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Println()
}
