// Package tui is the terminal front end: a path input, the image list and
// a metadata inspector driven by the shared state container.
package tui

import (
	"fmt"
	"strings"

	"imgmeta/internal/state"
	"imgmeta/internal/tui/components"
	"imgmeta/internal/tui/styles"
	"imgmeta/pkg/types"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type focus int

const (
	focusList focus = iota
	focusPath
)

// stateChangedMsg signals that one of the container's observables changed.
// The model re-reads all of them, so signals may be coalesced.
type stateChangedMsg struct{}

type Model struct {
	state  *state.Container
	update types.XMPUpdate

	keys   keyMap
	help   help.Model
	path   textinput.Model
	meta   viewport.Model
	files  *components.FileList
	status *components.StatusBar
	focus  focus

	selected *types.ImageFile
	metadata *types.MetadataSnapshot

	width  int
	height int

	changes     chan struct{}
	unsubscribe []func()
}

// New creates the model and subscribes it to c. update is written by the
// write key.
func New(c *state.Container, update types.XMPUpdate) *Model {
	path := textinput.New()
	path.Placeholder = "folder path"
	path.Prompt = "folder: "
	path.CharLimit = 4096

	m := &Model{
		state:   c,
		update:  update,
		keys:    defaultKeyMap(),
		help:    help.New(),
		path:    path,
		meta:    viewport.New(60, 20),
		files:   components.NewFileList(),
		status:  components.NewStatusBar(),
		changes: make(chan struct{}, 1),
	}

	signal := func() {
		select {
		case m.changes <- struct{}{}:
		default:
		}
	}
	m.unsubscribe = []func(){
		c.Folder.Subscribe(func(string) { signal() }),
		c.Files.Subscribe(func([]types.ImageFile) { signal() }),
		c.Selected.Subscribe(func(*types.ImageFile) { signal() }),
		c.Metadata.Subscribe(func(*types.MetadataSnapshot) { signal() }),
		c.Notice.Subscribe(func(types.Notice) { signal() }),
		c.Busy.Subscribe(func(int) { signal() }),
	}
	m.sync()
	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), m.status.Tick())
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-m.changes; !ok {
			return nil
		}
		return stateChangedMsg{}
	}
}

// Close detaches the model from the container.
func (m *Model) Close() {
	for _, cancel := range m.unsubscribe {
		cancel()
	}
	m.unsubscribe = nil
}

// sync copies the published state into the view components.
func (m *Model) sync() {
	folder := m.state.Folder.Value()
	m.files.SetCurrentDir(folder)
	if m.focus != focusPath {
		m.path.SetValue(folder)
	}
	m.files.SetFiles(m.state.Files.Value())

	m.selected = m.state.Selected.Value()
	if m.selected != nil {
		m.files.SetActive(m.selected.Path)
	}

	snap := m.state.Metadata.Value()
	if snap != m.metadata {
		m.metadata = snap
		m.meta.SetContent(m.inspectorText())
		m.meta.GotoTop()
	} else if snap == nil {
		m.meta.SetContent(m.inspectorText())
	}

	m.status.SetNotice(m.state.Notice.Value())
	m.status.SetLoading(m.state.Busy.Value() > 0)
}

func (m *Model) inspectorText() string {
	switch {
	case m.metadata != nil:
		header := m.metadata.Path
		if m.metadata.MIMEType != "" {
			header += " (" + m.metadata.MIMEType + ")"
		}
		return header + "\n\n" + m.metadata.String()
	case m.selected != nil:
		return "Reading " + m.selected.Name + "..."
	}
	return "Select an image with enter to inspect its metadata"
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateChangedMsg:
		m.sync()
		return m, m.waitForChange()

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.focus == focusPath {
			return m.handlePathKeys(msg)
		}
		return m.handleListKeys(msg)
	}

	return m, m.status.Update(msg)
}

func (m *Model) handlePathKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Submit):
		m.focus = focusList
		m.path.Blur()
		m.state.SetFolder(m.path.Value())
		m.sync()
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		m.path.SetValue("")
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.focus = focusList
		m.path.Blur()
		m.path.SetValue(m.state.Folder.Value())
		return m, nil
	}

	var cmd tea.Cmd
	m.path, cmd = m.path.Update(msg)
	return m, cmd
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Path):
		m.focus = focusPath
		m.path.CursorEnd()
		return m, m.path.Focus()
	case key.Matches(msg, m.keys.Down):
		m.files.MoveCursor(1)
	case key.Matches(msg, m.keys.Up):
		m.files.MoveCursor(-1)
	case key.Matches(msg, m.keys.Select):
		if f := m.files.GetCurrentFile(); f != nil {
			m.state.SelectFile(*f)
			m.sync()
		}
	case key.Matches(msg, m.keys.Write):
		m.writeModifiedCopy()
	case key.Matches(msg, m.keys.Reload):
		m.state.Reload()
		m.sync()
	case key.Matches(msg, m.keys.PageDown):
		m.meta.HalfViewDown()
	case key.Matches(msg, m.keys.PageUp):
		m.meta.HalfViewUp()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize(m.width, m.height)
	}
	return m, nil
}

// writeModifiedCopy rewrites the selected image, or the one under the
// cursor when nothing is selected yet.
func (m *Model) writeModifiedCopy() {
	target := m.selected
	if target == nil {
		target = m.files.GetCurrentFile()
	}
	if target == nil {
		m.status.SetText("No image to write")
		return
	}
	if m.update.IsEmpty() {
		m.status.SetNotice(types.Notice{Level: types.NoticeWarning, Message: "No XMP fields configured (rewrite.fields)"})
		return
	}
	m.state.RewriteXMP(*target, m.update)
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	if width <= 0 || height <= 0 {
		return
	}
	m.help.Width = width
	m.path.Width = width - len(m.path.Prompt) - 4

	helpHeight := lipgloss.Height(m.help.View(m.keys))
	// title, path, status and the pane borders
	paneHeight := height - helpHeight - 6
	if paneHeight < 3 {
		paneHeight = 3
	}
	listWidth := width * 2 / 5
	m.files.SetHeight(paneHeight)
	m.meta.Width = width - listWidth - 6
	m.meta.Height = paneHeight
}

// View implements tea.Model
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(styles.Theme.Title.Render("imgmeta"))
	b.WriteString(styles.Theme.Details.Render(fmt.Sprintf("  %d images", len(m.files.Files()))))
	b.WriteString("\n")
	b.WriteString(m.path.View())
	b.WriteString("\n")

	listPane := styles.Theme.FocusPane
	if m.focus == focusPath {
		listPane = styles.Theme.Pane
	}
	listWidth := 30
	if m.width > 0 {
		listWidth = m.width * 2 / 5
	}
	left := listPane.Width(listWidth).Render(m.files.View())
	right := styles.Theme.Pane.Render(m.meta.View())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")

	b.WriteString(m.status.View())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return styles.Theme.App.Render(b.String())
}

// Getters

func (m *Model) Files() []types.ImageFile {
	return m.files.Files()
}

func (m *Model) Cursor() int {
	return m.files.GetCursor()
}

func (m *Model) PathValue() string {
	return m.path.Value()
}

func (m *Model) EditingPath() bool {
	return m.focus == focusPath
}

func (m *Model) ShowHelp() bool {
	return m.help.ShowAll
}

func (m *Model) Status() string {
	return m.status.Text()
}

// Run starts the terminal UI on the alternate screen.
func Run(c *state.Container, update types.XMPUpdate) error {
	m := New(c, update)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
