package pipeline

import "testing"

func floatPtr(v float64) *float64 { return &v }

func TestConditionMatches(t *testing.T) {
	cond := Condition{MinimumInhabitedMinutes: floatPtr(1), MaximumInhabitedMinutes: floatPtr(2)}
	// 1 minute = 1200 ticks, 2 minutes = 2400 ticks.
	cases := []struct {
		ticks int64
		want  bool
	}{
		{1199, false},
		{1200, true},
		{2400, true},
		{2401, false},
	}
	for _, c := range cases {
		if got := cond.Matches(c.ticks); got != c.want {
			t.Errorf("Matches(%d) = %v, want %v", c.ticks, got, c.want)
		}
	}
}

func TestConditionNoBoundsMatchesEverything(t *testing.T) {
	var cond Condition
	if !cond.Matches(0) || !cond.Matches(1_000_000) {
		t.Fatalf("an unbounded condition must match everything")
	}
}

func TestStepUnmarshalDiscriminator(t *testing.T) {
	docs := map[Command]string{
		CmdFilterSelection:         `{"command":"filter_selection","condition":{"minimum_inhabited_minutes":1}}`,
		CmdRadiallyExpandSelection: `{"command":"radially_expand_selection","radius":3}`,
		CmdSaveSelection:           `{"command":"save_selection","MCASelector_csv_file":"out.csv"}`,
		CmdDeleteSelectedChunks:    `{"command":"delete_selected_chunks","backup":{"destination":"/bak","mode":"entire_region"}}`,
		CmdSelectAffectedRegions:   `{"command":"select_affected_regions"}`,
		CmdInvertSelection:         `{"command":"invert_selection"}`,
		CmdMoveSelected:            `{"command":"move_selected","destination":"/other","entire_region":true}`,
	}
	for cmd, doc := range docs {
		var s Step
		if err := s.UnmarshalJSON([]byte(doc)); err != nil {
			t.Fatalf("%s: unexpected error: %v", cmd, err)
		}
		if s.Command != cmd {
			t.Fatalf("got command %q, want %q", s.Command, cmd)
		}
	}
}

func TestStepUnmarshalRejectsInvalid(t *testing.T) {
	cases := []string{
		`{"command":"radially_expand_selection","radius":0}`,
		`{"command":"save_selection"}`,
		`{"command":"delete_selected_chunks","backup":{"destination":""}}`,
		`{"command":"move_selected"}`,
		`{"command":"not_a_real_command"}`,
	}
	for _, doc := range cases {
		var s Step
		if err := s.UnmarshalJSON([]byte(doc)); err == nil {
			t.Fatalf("expected an error decoding %q", doc)
		}
	}
}

func TestLoadValidatesEntries(t *testing.T) {
	good := `[{"input_folder":"/world","start_with":"all_chunks_selected","command_chain":[{"command":"invert_selection"}]}]`
	if _, err := Load([]byte(good)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	missingFolder := `[{"start_with":"all_chunks_selected","command_chain":[{"command":"invert_selection"}]}]`
	if _, err := Load([]byte(missingFolder)); err == nil {
		t.Fatalf("expected a validation error for missing input_folder")
	}

	emptyChain := `[{"input_folder":"/world","start_with":"all_chunks_selected","command_chain":[]}]`
	if _, err := Load([]byte(emptyChain)); err == nil {
		t.Fatalf("expected a validation error for an empty command_chain")
	}

	badStart := `[{"input_folder":"/world","start_with":"bogus","command_chain":[{"command":"invert_selection"}]}]`
	if _, err := Load([]byte(badStart)); err == nil {
		t.Fatalf("expected a validation error for an invalid start_with")
	}
}
