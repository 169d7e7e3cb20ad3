package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/simpleproc/lang"
	"github.com/ardnew/simpleproc/log"
)

// editDoneMsg is sent when the scratch document rendered successfully.
type editDoneMsg struct{ content, output string }

// editCancelledMsg is sent when the user emptied the scratch document.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a render
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process fails for another reason.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
	ctrlPrefix = ":"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode, or prefix with ':' in eval mode):

  help        Print this cruft
  vars        List variables and their values
  macros      List the available macros
  edit [ext]  Edit and render a scratch document in $EDITOR; the
              extension selects the delimiters (default .txt)
  clear       Clear screen
  quit        Exit REPL

Usage:
  Type a block body to evaluate it, for example: concat "a" (add 1 2)
  Variables persist between lines
  Press Tab / Shift-Tab to cycle through completions
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	debugStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// formatCommand formats the echo line of a submitted input.
func formatCommand(mode inputMode, input string) string {
	if mode == modeCtrl {
		return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
	}

	return promptStyle.Render(evalPrompt) + inputStyle.Render(input)
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	proc         *lang.Processor
	debug        *bytes.Buffer // dbg output of the current evaluation
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	evalText     string
	evalCursor   int
	ctrlText     string
	ctrlCursor   int
	scratch      string // last rendered scratch document
}

// Run starts the REPL. Every line is evaluated against one processor built
// from opts, so variables persist for the whole session. History is kept
// in cacheDir; an empty cacheDir keeps it in memory.
func Run(
	ctx context.Context,
	cacheDir string,
	logger log.Logger,
	opts ...lang.Option,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(ctx, "repl start", slog.String("cache_dir", cacheDir))

	var historyPath string
	if cacheDir != "" {
		historyPath = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", historyPath),
			slog.Any("error", err),
		)
	}

	logger.TraceContext(ctx, "repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	var debug bytes.Buffer

	proc := lang.NewProcessor(append(opts,
		lang.WithDebugOutput(&debug),
		lang.WithLogger(logger),
	)...)

	p := tea.NewProgram(newModel(ctx, proc, &debug, history, logger), tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	proc *lang.Processor,
	debug *bytes.Buffer,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		proc:       proc,
		debug:      debug,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editDoneMsg:
		m.scratch = msg.content

		return m, tea.Println(resultStyle.Render(strings.TrimSuffix(msg.output, "\n")))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(m.input.Value()) == "":
		hint := "Type a block body or press Esc for commands"
		if m.mode == modeCtrl {
			hint = "Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current candidate without executing.
		m.tabActive = false
		refreshMatches(&m)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyMove(-1, false), nil

	case tea.KeyDown:
		return m.historyMove(1, false), nil

	case tea.KeyShiftUp:
		return m.historyMove(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyMove(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m)

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil
	}

	if msg.Type == tea.KeyRunes && m.tabActive && msg.String() == " " {
		m.tabActive = false
	}

	if msg.Type != tea.KeyRunes {
		m.tabActive = false
	}

	var cmd tea.Cmd

	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m)

	return m, cmd
}

// cycle moves the selected completion by step, wrapping around. A single
// candidate is accepted immediately.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + n) % n
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = 0

		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word in the input with
// replacement and moves the cursor after it.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes the completions for the current input.
func refreshMatches(m *model) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	mode := m.mode

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	echo := tea.Println(formatCommand(mode, input))

	if cmd, ok := strings.CutPrefix(input, ctrlPrefix); ok && mode == modeEval {
		mode, input = modeCtrl, strings.TrimSpace(cmd)
	}

	if mode == modeCtrl {
		return m.executeCommand(echo, input)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl eval", slog.String("input", input))

	result, dbg, err := evaluate(m.ctxFunc(), m.proc, m.debug, input)

	cmds := []tea.Cmd{echo}

	for _, line := range dbg {
		cmds = append(cmds, tea.Println(debugStyle.Render(line)))
	}

	switch {
	case err != nil:
		cmds = append(cmds, tea.Println(errorStyle.Render("error: "+err.Error())))
	case result == "":
		cmds = append(cmds, tea.Println(hintStyle.Render("(no output)")))
	default:
		cmds = append(cmds, tea.Println(resultStyle.Render(result)))
	}

	return m, tea.Sequence(cmds...)
}

// evaluate runs input as a block body and returns the concatenated values
// together with the dbg lines the evaluation printed.
func evaluate(
	ctx context.Context,
	proc *lang.Processor,
	debug *bytes.Buffer,
	input string,
) (result string, dbg []string, err error) {
	defer debug.Reset()

	vals, err := proc.Eval(ctx, input)

	if out := strings.TrimSuffix(debug.String(), "\n"); out != "" {
		dbg = strings.Split(out, "\n")
	}

	if err != nil {
		return "", dbg, err
	}

	var b strings.Builder

	for _, v := range vals {
		b.WriteString(v.String())
	}

	return b.String(), dbg, nil
}

func (m model) executeCommand(echo tea.Cmd, input string) (model, tea.Cmd) {
	name, arg, _ := strings.Cut(input, " ")

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", name),
		slog.String("arg", arg),
	)

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "v", "vars":
		return m, tea.Sequence(echo, tea.Println(listVars(m.proc.Vars())))

	case "m", "macros":
		return m, tea.Sequence(echo, tea.Println(listMacros()))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit(arg))

	default:
		return m, tea.Sequence(echo, tea.Println(
			errorStyle.Render("Unknown command: "+name+" (try 'help')"),
		))
	}
}

func (m model) edit(arg string) tea.Cmd {
	cmd := &editCommand{
		proc:    m.proc,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
		ext:     scratchExt(arg),
		content: m.scratch,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case cmd.output == "" && cmd.content == m.scratch:
			return editCancelledMsg{}
		}

		return editDoneMsg{content: cmd.content, output: cmd.output}
	})
}

// listVars renders the variables in binding order.
func listVars(vars *lang.Scope) string {
	if vars.Len() == 0 {
		return hintStyle.Render("  (no variables)")
	}

	var b strings.Builder

	for name, v := range vars.All() {
		fmt.Fprintf(&b, "  $%s %s\n", name, hintStyle.Render(strconv.Quote(v.String())))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// listMacros renders the macro names.
func listMacros() string {
	return "  " + strings.Join(lang.MacroNames(), "  ")
}

// historyMove steps through the history by delta. When inMode is set,
// entries of the other mode are skipped; otherwise the mode follows the
// selected entry. Moving past the newest entry clears the input.
func (m model) historyMove(delta int, inMode bool) model {
	for i := m.historyIdx + delta; i >= 0 && i < m.history.Len(); i += delta {
		entry, err := m.history.Entry(i)
		if err != nil {
			break
		}

		if inMode && entry.Mode != m.mode {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m)

		return m
	}

	if delta > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m)
	}

	return m
}

// switchToMode switches to mode, preserving the input of each mode.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText, m.evalCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m)

	return m
}
