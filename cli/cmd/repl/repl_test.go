package repl

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/simpleproc/lang"
	"github.com/ardnew/simpleproc/log"
)

func newTestModel(t *testing.T) model {
	t.Helper()

	var debug bytes.Buffer

	proc := lang.NewProcessor(
		lang.WithDebugOutput(&debug),
		lang.WithLogger(log.Logger{}),
		lang.WithVariables(lang.Binding{Name: "name", Value: "World"}),
	)

	return newModel(t.Context(), proc, &debug, NewHistory(""), log.Logger{})
}

func TestEvaluate(t *testing.T) {
	m := newTestModel(t)
	ctx := context.Background()

	tests := []struct {
		input   string
		want    string
		wantDbg []string
		wantErr error
	}{
		{`concat "Hello, " $name`, "Hello, World", nil, nil},
		{`separated "," 1 2 3`, "1,2,3", nil, nil},
		{`dbg "a" 1`, "", []string{"debug: a 1"}, nil},
		{`concat (dbg "x") (dbg "y") "z"`, "z", []string{"debug: x", "debug: y"}, nil},
		{`$missing`, "", nil, lang.ErrVariableNotFound},
		{`(dbg "before") nope`, "", []string{"debug: before"}, lang.ErrMacroNotFound},
	}

	for _, tt := range tests {
		got, dbg, err := evaluate(ctx, m.proc, m.debug, tt.input)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("%q: error = %v, want %v", tt.input, err, tt.wantErr)
		}

		if got != tt.want {
			t.Errorf("%q: result = %q, want %q", tt.input, got, tt.want)
		}

		if !slices.Equal(dbg, tt.wantDbg) {
			t.Errorf("%q: dbg = %q, want %q", tt.input, dbg, tt.wantDbg)
		}

		if m.debug.Len() != 0 {
			t.Errorf("%q: debug buffer not reset", tt.input)
		}
	}
}

func TestModel_ExecuteInput(t *testing.T) {
	m := newTestModel(t)

	m.input.SetValue("  add 1 2 ")

	m, cmd := m.executeInput()
	if cmd == nil {
		t.Fatal("expected a command echoing the result")
	}

	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}

	m.input.SetValue(":vars")
	m, _ = m.executeInput()

	want := []HistoryEntry{{"add 1 2", modeEval}, {":vars", modeEval}}
	if got := m.history.Entries(); !slices.Equal(got, want) {
		t.Errorf("history = %v, want %v", got, want)
	}

	if m.historyIdx != m.history.Len() {
		t.Errorf("historyIdx = %d, want %d", m.historyIdx, m.history.Len())
	}

	m.input.SetValue(":quit")
	m, _ = m.executeInput()

	if !m.quitting {
		t.Error("expected :quit to end the session")
	}
}

func TestModel_HistoryMove(t *testing.T) {
	m := newTestModel(t)

	for _, e := range []HistoryEntry{
		{"add 1", modeEval},
		{"vars", modeCtrl},
		{"add 2", modeEval},
	} {
		if err := m.history.Add(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	m.historyIdx = m.history.Len()

	m = m.historyMove(-1, false)
	if m.input.Value() != "add 2" || m.mode != modeEval {
		t.Fatalf("got %q in mode %d", m.input.Value(), m.mode)
	}

	m = m.historyMove(-1, false)
	if m.input.Value() != "vars" || m.mode != modeCtrl {
		t.Fatalf("got %q in mode %d", m.input.Value(), m.mode)
	}

	m = m.switchToMode(modeEval)
	m.historyIdx = m.history.Len()

	m = m.historyMove(-1, true)
	m = m.historyMove(-1, true)

	if m.input.Value() != "add 1" || m.mode != modeEval {
		t.Fatalf("in-mode navigation got %q in mode %d", m.input.Value(), m.mode)
	}

	m = m.historyMove(1, true)
	m = m.historyMove(1, true)

	if m.input.Value() != "" || m.historyIdx != m.history.Len() {
		t.Errorf("expected cleared input past the newest entry, got %q at %d",
			m.input.Value(), m.historyIdx)
	}
}

func TestListings(t *testing.T) {
	m := newTestModel(t)

	if got := listVars(m.proc.Vars()); !strings.Contains(got, "$name") {
		t.Errorf("listVars() = %q, want $name", got)
	}

	if got := listVars(lang.NewScope()); !strings.Contains(got, "no variables") {
		t.Errorf("listVars(empty) = %q", got)
	}

	for _, name := range []string{"include_eval", "separated"} {
		if got := listMacros(); !strings.Contains(got, name) {
			t.Errorf("listMacros() = %q, want %s", got, name)
		}
	}
}
