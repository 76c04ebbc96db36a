// Command cordrift detects events in CSV tracks and removes the drift their
// cycles share.
//
//	cordrift simulate -o track.csv
//	cordrift events track.csv
//	cordrift profile --onbeads=false track.csv
//	cordrift correct --config drift.yaml -o corrected.csv track.csv
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
