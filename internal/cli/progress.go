package cli

import (
	"fmt"
	"log"
	"time"

	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter implements recovery progress reporting with a progress
// bar.
type CLIProgressReporter struct {
	quiet   bool
	unitBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{quiet: quiet}
}

func (c *CLIProgressReporter) OnRecoveryStart(totalUnits int) {
	if c.quiet {
		return
	}
	log.Printf("Recovering types across %d compilation units\n", totalUnits)

	c.unitBar = progressbar.NewOptions(totalUnits,
		progressbar.OptionSetDescription("Recovering units"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("units/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

func (c *CLIProgressReporter) OnUnitRecovered(processedUnits, totalUnits int, file string) {
	if c.quiet {
		return
	}
	if c.unitBar != nil {
		c.unitBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnRecoveryComplete(unitCount, editCount int, duration time.Duration) {
	if c.quiet {
		return
	}
	log.Printf("Recovered %d type facts across %d units in %s\n", editCount, unitCount, duration.Round(time.Millisecond))
}
