package resolve

import (
	"time"

	"versionup/internal/swap"
	"versionup/internal/timeline"
)

// Outcome is the scan-phase result for one clip.
type Outcome string

const (
	OutcomeNoNewerVersion  Outcome = "no_newer_version"
	OutcomeUpdateAvailable Outcome = "update_available"
	OutcomeIncompatible    Outcome = "incompatible"
	OutcomeUnscannable     Outcome = "unscannable"
)

// ClipReport is the resolution of one clip.
type ClipReport struct {
	Clip    timeline.Clip `json:"clip"`
	ShotKey string        `json:"shot_key,omitempty"`
	// HighestVersion is the newest version on disk; UsableVersion the newest
	// one above the current version that passes the compatibility check.
	CurrentVersion int              `json:"current_version"`
	HighestVersion int              `json:"highest_version,omitempty"`
	UsableVersion  int              `json:"usable_version,omitempty"`
	Outcome        Outcome          `json:"outcome"`
	Instruction    swap.Instruction `json:"instruction"`
	// ErrorKind and Error describe why an unscannable clip could not be
	// checked.
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Counts tallies clip outcomes.
type Counts struct {
	NoNewerVersion  int `json:"no_newer_version"`
	UpdateAvailable int `json:"update_available"`
	Incompatible    int `json:"incompatible"`
	Unscannable     int `json:"unscannable"`
}

// Total returns the number of clips counted.
func (c Counts) Total() int {
	return c.NoNewerVersion + c.UpdateAvailable + c.Incompatible + c.Unscannable
}

// Plan is the preview produced by ResolveAll and consumed by ApplyAll.
type Plan struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Timeline  string       `json:"timeline,omitempty"`
	Track     string       `json:"track"`
	Clips     []ClipReport `json:"clips"`
}

// Counts tallies the plan's clip outcomes.
func (p *Plan) Counts() Counts {
	var c Counts
	if p == nil {
		return c
	}
	for _, clip := range p.Clips {
		switch clip.Outcome {
		case OutcomeNoNewerVersion:
			c.NoNewerVersion++
		case OutcomeUpdateAvailable:
			c.UpdateAvailable++
		case OutcomeIncompatible:
			c.Incompatible++
		case OutcomeUnscannable:
			c.Unscannable++
		}
	}
	return c
}

// Pending returns the clip reports ApplyAll would act on.
func (p *Plan) Pending() []ClipReport {
	if p == nil {
		return nil
	}
	var out []ClipReport
	for _, clip := range p.Clips {
		if clip.Outcome == OutcomeUpdateAvailable && clip.Instruction.Applicable() {
			out = append(out, clip)
		}
	}
	return out
}
