package events

// Interval is a half-open range of frames [Start, Stop).
type Interval struct {
	Start int `json:"start" yaml:"start"`
	Stop  int `json:"stop"  yaml:"stop"`
}

// Len returns Stop - Start.
func (i Interval) Len() int { return i.Stop - i.Start }

// Sentinel mean given to intervals holding no finite sample.
const emptyMean = 1e5

// Default parameter values.
const (
	DefaultWindow     = 1
	DefaultConfidence = 0.1
	DefaultErode      = 1
	DefaultMinLength  = 5
	DefaultEdgeLength = 0
)

// MergeTest selects the two-sample test used by the merger.
type MergeTest string

const (
	// KnownSigma compares means given the measurement noise σ.
	KnownSigma MergeTest = "knownsigma"

	// Heteroscedastic uses Welch's test on the samples' own sigmas.
	Heteroscedastic MergeTest = "heteroscedastic"
)
