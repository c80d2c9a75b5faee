// Package progress defines the event stream emitted by the research
// pipeline and fans it out to sinks.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the milestone an Event represents.
type Stage string

// Supported progress stages.
const (
	StageRunStart    Stage = "RUN_START"
	StageRunDone     Stage = "RUN_DONE"
	StageSiteStart   Stage = "SITE_START"
	StageSiteDone    Stage = "SITE_DONE"
	StageSiteSkipped Stage = "SITE_SKIPPED"
	StageStepDone    Stage = "STEP_DONE"
)

// Status classifies how a pipeline step finished.
type Status string

// Step outcomes.
const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
	StatusFatal    Status = "fatal"
)

// Event captures one milestone of a research run.
type Event struct {
	// RunID identifies the run in 16-byte UUID form.
	RunID [16]byte
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage is the milestone kind.
	Stage Stage
	// Site is the site name for site and step events.
	Site string
	// Step names the pipeline step for STEP_DONE events.
	Step string
	// Status classifies the outcome of site and step events.
	Status Status
	// Dur is the elapsed time for completed stages.
	Dur time.Duration
	// Note carries low-volume context, usually error text.
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == [16]byte{} {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone:
	case StageSiteStart, StageSiteDone, StageSiteSkipped:
		if e.Site == "" {
			return errors.New("site events require a site name")
		}
	case StageStepDone:
		if e.Site == "" || e.Step == "" {
			return errors.New("step events require site and step names")
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}

// RunUUID converts the binary run ID to uuid.UUID.
func (e Event) RunUUID() uuid.UUID {
	return uuid.UUID(e.RunID)
}

// UUIDToBytes encodes a uuid.UUID into the Event form.
func UUIDToBytes(id uuid.UUID) [16]byte {
	var dest [16]byte
	copy(dest[:], id[:])
	return dest
}
