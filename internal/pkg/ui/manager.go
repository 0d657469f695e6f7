// Package ui provides the terminal output and prompts of jcommit.
package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/jcommit/jcommit/internal/pkg/ai"
)

// Spinner provides loading animation functionality.
type Spinner interface {
	Start()
	Stop()
	UpdateText(text string)
}

// Manager defines the interface for UI operations.
type Manager interface {
	ShowSpinner(text string) Spinner
	// StreamFragment writes one piece of the message as it arrives.
	StreamFragment(fragment string)
	// EndStream terminates the streamed message.
	EndStream()
	DisplayConversation(conv ai.Conversation)
	PromptConfirm(message string) (bool, error)
	ShowError(err error)
	ShowSuccess(message string)
	ShowWarning(message string)
}

// IsInteractive reports whether both stdin and stdout are terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// styles holds the lipgloss styles for UI rendering.
type styles struct {
	title      lipgloss.Style
	role       lipgloss.Style
	message    lipgloss.Style
	success    lipgloss.Style
	warning    lipgloss.Style
	errorStyle lipgloss.Style
	border     lipgloss.Style
}

func newStyles(colorEnabled bool) *styles {
	if !colorEnabled {
		return &styles{
			title:      lipgloss.NewStyle(),
			role:       lipgloss.NewStyle(),
			message:    lipgloss.NewStyle(),
			success:    lipgloss.NewStyle(),
			warning:    lipgloss.NewStyle(),
			errorStyle: lipgloss.NewStyle(),
			border:     lipgloss.NewStyle(),
		}
	}

	return &styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
		role: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		message: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")),
		success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")),
		warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),
		errorStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")),
		border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1),
	}
}

// DefaultManager implements Manager for an interactive terminal.
type DefaultManager struct {
	out    io.Writer
	errOut io.Writer
	styles *styles

	mu        sync.Mutex
	streaming bool
	lastByte  byte
}

// NewDefaultManager creates a new DefaultManager writing to stdout.
func NewDefaultManager(colorEnabled bool) *DefaultManager {
	return &DefaultManager{
		out:    os.Stdout,
		errOut: os.Stderr,
		styles: newStyles(colorEnabled),
	}
}

// ShowSpinner creates and returns a spinner for loading states.
func (m *DefaultManager) ShowSpinner(text string) Spinner {
	return newBubbleSpinner(text, m.out)
}

// StreamFragment writes fragment immediately, without buffering.
func (m *DefaultManager) StreamFragment(fragment string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.streaming {
		m.streaming = true
		m.lastByte = '\n'
		fmt.Fprintln(m.out, m.styles.title.Render("Generated commit message:"))
	}
	if fragment == "" {
		return
	}
	fmt.Fprint(m.out, renderInline(m.styles.message, fragment))
	m.lastByte = fragment[len(fragment)-1]
}

// renderInline styles each line of s separately so that no padding is
// added and newlines pass through untouched.
func renderInline(style lipgloss.Style, s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// EndStream finishes the streamed message with a newline if needed.
func (m *DefaultManager) EndStream() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.streaming && m.lastByte != '\n' {
		fmt.Fprintln(m.out)
	}
	m.streaming = false
}

// DisplayConversation prints every turn that will be sent to the model.
func (m *DefaultManager) DisplayConversation(conv ai.Conversation) {
	fmt.Fprintln(m.out, m.styles.title.Render("Conversation sent to the model"))
	for _, turn := range conv {
		body := m.styles.role.Render(turn.Role) + "\n" + turn.Content
		fmt.Fprintln(m.out, m.styles.border.Render(body))
	}
	fmt.Fprintln(m.out)
}

// PromptConfirm asks a yes/no question defaulting to no. Aborting the
// prompt counts as no.
func (m *DefaultManager) PromptConfirm(message string) (bool, error) {
	confirmed := false

	err := huh.NewConfirm().
		Title(message).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return confirmed, nil
}

// ShowError displays an error message to the user.
func (m *DefaultManager) ShowError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(m.errOut, m.styles.errorStyle.Render("Error: "+err.Error()))
}

// ShowSuccess displays a success message to the user.
func (m *DefaultManager) ShowSuccess(message string) {
	fmt.Fprintln(m.out, m.styles.success.Render("[OK] "+message))
}

// ShowWarning displays a non-fatal warning.
func (m *DefaultManager) ShowWarning(message string) {
	fmt.Fprintln(m.errOut, m.styles.warning.Render("Warning: "+message))
}

// bubbleSpinner implements Spinner using Bubble Tea.
type bubbleSpinner struct {
	out     io.Writer
	model   spinnerModel
	program *tea.Program
	done    chan struct{}
	mu      sync.Mutex
}

// spinnerModel is the Bubble Tea model for simple spinner.
type spinnerModel struct {
	spinner  spinner.Model
	text     string
	quitting bool
}

// spinnerTextMsg updates the spinner text from outside.
type spinnerTextMsg struct {
	text string
}

// spinnerQuitMsg signals the spinner to quit.
type spinnerQuitMsg struct{}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerTextMsg:
		m.text = msg.text
		return m, nil
	case spinnerQuitMsg:
		m.quitting = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.quitting {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.text)
}

func newBubbleSpinner(text string, out io.Writer) *bubbleSpinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &bubbleSpinner{
		out:   out,
		model: spinnerModel{spinner: s, text: text},
	}
}

func (s *bubbleSpinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.program != nil {
		return
	}
	p := tea.NewProgram(s.model,
		tea.WithOutput(s.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	done := make(chan struct{})
	s.program, s.done = p, done
	go func() {
		defer close(done)
		_, _ = p.Run()
	}()
}

// Stop quits the spinner and waits until its line has been cleared.
func (s *bubbleSpinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.program == nil {
		return
	}
	s.program.Send(spinnerQuitMsg{})
	select {
	case <-s.done:
	case <-time.After(500 * time.Millisecond):
		s.program.Kill()
	}
	s.program = nil
}

func (s *bubbleSpinner) UpdateText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.model.text = text
	if s.program != nil {
		s.program.Send(spinnerTextMsg{text: text})
	}
}

// NonInteractiveManager implements Manager for pipes, CI and --commit runs.
type NonInteractiveManager struct {
	out    io.Writer
	errOut io.Writer
}

// NewNonInteractiveManager creates a new NonInteractiveManager.
func NewNonInteractiveManager() *NonInteractiveManager {
	return &NonInteractiveManager{
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

// ShowSpinner returns a no-op spinner in non-interactive mode.
func (m *NonInteractiveManager) ShowSpinner(text string) Spinner {
	return &noopSpinner{}
}

// StreamFragment writes the fragment unstyled.
func (m *NonInteractiveManager) StreamFragment(fragment string) {
	fmt.Fprint(m.out, fragment)
}

// EndStream terminates the message line.
func (m *NonInteractiveManager) EndStream() {
	fmt.Fprintln(m.out)
}

// DisplayConversation prints the conversation to stderr so stdout only
// carries the message.
func (m *NonInteractiveManager) DisplayConversation(conv ai.Conversation) {
	fmt.Fprint(m.errOut, conv.String())
	fmt.Fprintln(m.errOut, strings.Repeat("-", 40))
}

// PromptConfirm always returns false: nobody is there to answer.
func (m *NonInteractiveManager) PromptConfirm(message string) (bool, error) {
	return false, nil
}

// ShowError displays an error message.
func (m *NonInteractiveManager) ShowError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(m.errOut, "Error: %s\n", err.Error())
}

// ShowSuccess displays a success message.
func (m *NonInteractiveManager) ShowSuccess(message string) {
	fmt.Fprintln(m.errOut, message)
}

// ShowWarning displays a warning on stderr.
func (m *NonInteractiveManager) ShowWarning(message string) {
	fmt.Fprintf(m.errOut, "Warning: %s\n", message)
}

// noopSpinner is a no-op implementation of Spinner.
type noopSpinner struct{}

func (s *noopSpinner) Start()            {}
func (s *noopSpinner) Stop()             {}
func (s *noopSpinner) UpdateText(string) {}
