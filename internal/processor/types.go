package processor

import (
	"fmt"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// DefaultWorkers is the fixed pool size used when Options.Workers is unset.
const DefaultWorkers = 4

// Job describes one batch run. Outputs land in OutputDir as
// <source stem>.<Format>; sources sharing a stem overwrite each other and the
// last one written wins.
type Job struct {
	Files     []string
	Width     int
	Height    int
	Format    string
	OutputDir string
}

// Filter names a resampling kernel.
type Filter string

const (
	FilterLanczos    Filter = "lanczos"
	FilterCatmullRom Filter = "catmullrom"
	FilterLinear     Filter = "linear"
	FilterBox        Filter = "box"
	// FilterNearest keeps label masks free of interpolated class values.
	FilterNearest Filter = "nearest"
)

var filters = map[Filter]imaging.ResampleFilter{
	FilterLanczos:    imaging.Lanczos,
	FilterCatmullRom: imaging.CatmullRom,
	FilterLinear:     imaging.Linear,
	FilterBox:        imaging.Box,
	FilterNearest:    imaging.NearestNeighbor,
}

// ParseFilter maps a case-insensitive name to a Filter.
func ParseFilter(name string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(name)))
	if f == "" {
		return FilterLanczos, nil
	}
	if _, ok := filters[f]; !ok {
		return "", fmt.Errorf("unknown resample filter %q", name)
	}
	return f, nil
}

type Options struct {
	Workers     int
	Filter      Filter
	JPEGQuality int
	// AutoOrient applies the EXIF orientation before resizing. Off keeps the
	// stored pixel order.
	AutoOrient bool
	Logger     *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.Filter == "" {
		o.Filter = FilterLanczos
	}
	if o.JPEGQuality <= 0 || o.JPEGQuality > 100 {
		o.JPEGQuality = 95
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Result is the outcome of one source file. A nil Err means success.
type Result struct {
	Path   string
	Output string
	Err    error
}

// Snapshot is the progress of a run after an item completes.
type Snapshot struct {
	Completed int
	Total     int
	Elapsed   time.Duration
}

// Percent returns the completed share as an integer percentage.
func (s Snapshot) Percent() int {
	if s.Total <= 0 {
		return 0
	}
	return s.Completed * 100 / s.Total
}

// Message is a human-readable diagnostic. Path is empty for job-level failures.
type Message struct {
	Path string
	Text string
}

// Summary is the terminal tally of a run. Skipped counts items that were never
// started because the run was cancelled.
type Summary struct {
	Successes int
	Total     int
	Skipped   int
}

// Failures returns the number of items that ran and failed.
func (s Summary) Failures() int {
	return s.Total - s.Successes - s.Skipped
}

type EventKind int

const (
	EventProgress EventKind = iota
	EventMessage
	EventSummary
)

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventMessage:
		return "message"
	case EventSummary:
		return "summary"
	default:
		return "unknown"
	}
}

// Event is pushed to the caller during a run. Only the field matching Kind is
// set.
type Event struct {
	Kind     EventKind
	Progress Snapshot
	Message  Message
	Summary  Summary
}
