// Package pipeline defines the data-driven pipeline configuration format:
// a typed, discriminated-union list of selection steps plus the
// starting-set policy they run against. See internal/executor for how a
// parsed Pipeline is actually run.
package pipeline

import (
	"encoding/json"
	"fmt"
)

// Start is the initial state of the selection set before any step runs.
type Start string

const (
	StartAllSelected  Start = "all_chunks_selected"
	StartNoneSelected Start = "no_chunks_selected"
)

// Condition gates which chunks a filter_selection/extend_selection step
// matches, based on InhabitedTime. Minutes are converted to ticks by
// multiplying by 1200 (floor for the minimum bound, ceil for the maximum).
type Condition struct {
	MinimumInhabitedMinutes *float64 `json:"minimum_inhabited_minutes,omitempty"`
	MaximumInhabitedMinutes *float64 `json:"maximum_inhabited_minutes,omitempty"`
}

// Matches reports whether inhabitedTicks satisfies the condition. A
// Condition with both bounds unset matches everything.
func (c Condition) Matches(inhabitedTicks int64) bool {
	if c.MinimumInhabitedMinutes != nil {
		min := int64(*c.MinimumInhabitedMinutes * 1200) // floor via truncation toward zero on a non-negative value
		if inhabitedTicks < min {
			return false
		}
	}
	if c.MaximumInhabitedMinutes != nil {
		max := ceilFloat(*c.MaximumInhabitedMinutes * 1200)
		if inhabitedTicks > max {
			return false
		}
	}
	return true
}

func ceilFloat(v float64) int64 {
	i := int64(v)
	if float64(i) < v {
		i++
	}
	return i
}

// BackupMode controls what delete_selected_chunks backs up before it
// evicts chunks.
type BackupMode string

const (
	BackupEntireRegion       BackupMode = "entire_region"
	BackupOnlyAffectedChunks BackupMode = "only_affected_chunks"
)

// Backup configures where/how delete_selected_chunks backs up data before
// deleting it.
type Backup struct {
	Destination string     `json:"destination"`
	Mode        BackupMode `json:"mode,omitempty"`
}

// Command is the discriminator value carried by every step's "command"
// field.
type Command string

const (
	CmdFilterSelection         Command = "filter_selection"
	CmdExtendSelection         Command = "extend_selection"
	CmdRadiallyExpandSelection Command = "radially_expand_selection"
	CmdSaveSelection           Command = "save_selection"
	CmdDeleteSelectedChunks    Command = "delete_selected_chunks"
	CmdSelectAffectedRegions   Command = "select_affected_regions"
	CmdInvertSelection         Command = "invert_selection"
	CmdMoveSelected            Command = "move_selected"
)

// Step is one element of a pipeline's command_chain. Exactly the fields
// relevant to Command are populated; the rest are zero values.
type Step struct {
	Command Command

	// filter_selection / extend_selection
	Condition Condition

	// radially_expand_selection
	Radius int

	// save_selection
	MCASelectorCSVFile string

	// delete_selected_chunks
	Backup Backup

	// move_selected
	Destination  string
	EntireRegion bool
}

// stepWire is the JSON shape of a Step, used by both UnmarshalJSON and
// MarshalJSON.
type stepWire struct {
	Command            Command    `json:"command"`
	Condition          *Condition `json:"condition,omitempty"`
	Radius             int        `json:"radius,omitempty"`
	MCASelectorCSVFile string     `json:"MCASelector_csv_file,omitempty"`
	Backup             *Backup    `json:"backup,omitempty"`
	Destination        string     `json:"destination,omitempty"`
	EntireRegion       bool       `json:"entire_region,omitempty"`
}

// UnmarshalJSON implements the discriminated-union decode: the "command"
// field selects which of the other fields are required, mirroring the
// pydantic Literal-discriminator RootModel this is modeled on.
func (s *Step) UnmarshalJSON(data []byte) error {
	var w stepWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("pipeline: decode step: %w", err)
	}
	*s = Step{
		Command:            w.Command,
		Radius:             w.Radius,
		MCASelectorCSVFile: w.MCASelectorCSVFile,
		Destination:        w.Destination,
		EntireRegion:       w.EntireRegion,
	}
	if w.Condition != nil {
		s.Condition = *w.Condition
	}
	if w.Backup != nil {
		s.Backup = *w.Backup
	}

	switch w.Command {
	case CmdFilterSelection, CmdExtendSelection:
		// Condition is optional in the wire format (absence means "match
		// everything"); nothing further to validate.
	case CmdRadiallyExpandSelection:
		if s.Radius <= 0 {
			return fmt.Errorf("pipeline: %s requires radius > 0, got %d", w.Command, s.Radius)
		}
	case CmdSaveSelection:
		if s.MCASelectorCSVFile == "" {
			return fmt.Errorf("pipeline: %s requires MCASelector_csv_file", w.Command)
		}
	case CmdDeleteSelectedChunks:
		if w.Backup == nil || s.Backup.Destination == "" {
			return fmt.Errorf("pipeline: %s requires backup.destination", w.Command)
		}
		if s.Backup.Mode == "" {
			s.Backup.Mode = BackupEntireRegion
		}
	case CmdSelectAffectedRegions, CmdInvertSelection:
		// No payload.
	case CmdMoveSelected:
		if s.Destination == "" {
			return fmt.Errorf("pipeline: %s requires destination", w.Command)
		}
	default:
		return fmt.Errorf("pipeline: unknown command %q", w.Command)
	}
	return nil
}

// MarshalJSON re-emits only the fields relevant to the step's command.
func (s Step) MarshalJSON() ([]byte, error) {
	w := stepWire{Command: s.Command}
	switch s.Command {
	case CmdFilterSelection, CmdExtendSelection:
		w.Condition = &s.Condition
	case CmdRadiallyExpandSelection:
		w.Radius = s.Radius
	case CmdSaveSelection:
		w.MCASelectorCSVFile = s.MCASelectorCSVFile
	case CmdDeleteSelectedChunks:
		w.Backup = &s.Backup
	case CmdMoveSelected:
		w.Destination = s.Destination
		w.EntireRegion = s.EntireRegion
	}
	return json.Marshal(w)
}

// Pipeline is one end-to-end run: a source world, a starting selection
// policy, a worker count, and the chain of steps to execute over it.
type Pipeline struct {
	InputFolder  string `json:"input_folder"`
	StartWith    Start  `json:"start_with"`
	Threads      int    `json:"threads,omitempty"`
	CommandChain []Step `json:"command_chain"`
}

// Validate checks configuration-time invariants that cannot be expressed
// purely by JSON decoding (e.g. an empty input folder, an unknown Start
// value reaching here despite the type).
func (p Pipeline) Validate() error {
	if p.InputFolder == "" {
		return fmt.Errorf("pipeline: input_folder is required")
	}
	switch p.StartWith {
	case StartAllSelected, StartNoneSelected:
	default:
		return fmt.Errorf("pipeline: invalid start_with %q", p.StartWith)
	}
	if len(p.CommandChain) == 0 {
		return fmt.Errorf("pipeline: command_chain must not be empty")
	}
	return nil
}

// Config is the top-level `pipeline --validate` document: a JSON array of
// independent pipelines.
type Config []Pipeline

// Load decodes and validates a pipeline configuration file's contents.
// Malformed JSON or a failed Validate is a fatal configuration error, to
// be caught before any region work begins.
func Load(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("pipeline: parse config: %w", err)
	}
	for i, p := range cfg {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("pipeline: entry %d: %w", i, err)
		}
	}
	return cfg, nil
}
