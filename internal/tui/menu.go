// SPDX-License-Identifier: MIT
//
// Package tui is the interactive menu: play a file, play a test tone,
// analyze a file, compute its equation, generate audio from an equation,
// stop playback, and browse output devices.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"wavemath/internal/audio"
	"wavemath/internal/spectral"
	"wavemath/internal/synth"
)

// Runner performs the menu actions. *app.App satisfies it.
type Runner interface {
	PlayFile(ctx context.Context, path string) error
	PlayTone(ctx context.Context) error
	Analyze(path string) ([]spectral.SpectralComponent, error)
	ComputeEquation(path string) (string, error)
	Generate(ctx context.Context, text string) (synth.SynthesisResult, error)
	Stop()
}

// DeviceLister returns the host's audio devices.
type DeviceLister func() ([]audio.Device, error)

// Files names the audio files the menu acts on.
type Files struct {
	Music    string // Played by option 1.
	Waveform string // Analyzed by options 3 and 4.
}

// ScreenType defines which screen is currently active
type ScreenType int

const (
	MenuScreen ScreenType = iota
	EquationScreen
	DeviceScreen
)

type keyMap struct {
	PlayMusic, PlayTone, Analyze, Equation, Generate, Stop, Devices, Quit key.Binding
	Submit, Back                                                          key.Binding
}

var keys = keyMap{
	PlayMusic: key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "Play Music")),
	PlayTone:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "Play Sine Wave")),
	Analyze:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "Analyze Music")),
	Equation:  key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "Compute Equation")),
	Generate:  key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "Generate Function Music")),
	Stop:      key.NewBinding(key.WithKeys("6"), key.WithHelp("6", "Stop Music")),
	Devices:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "Output Devices")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "Quit")),
	Submit:    key.NewBinding(key.WithKeys("enter")),
	Back:      key.NewBinding(key.WithKeys("esc")),
}

var menuItems = []key.Binding{
	keys.PlayMusic, keys.PlayTone, keys.Analyze, keys.Equation, keys.Generate, keys.Stop, keys.Devices,
}

// resultMsg reports a finished action.
type resultMsg struct {
	status string
	err    error
}

type devicesMsg struct {
	devices []audio.Device
	err     error
}

// Model represents the Bubble Tea model for the menu.
type Model struct {
	ctx         context.Context
	runner      Runner
	files       Files
	listDevices DeviceLister

	activeScreen ScreenType
	input        textinput.Model
	viewport     viewport.Model
	devices      []audio.Device
	running      int
	status       string
	err          error
	lastEquation string
}

// NewModel creates the menu model. listDevices may be nil, which hides the
// device screen.
func NewModel(ctx context.Context, runner Runner, files Files, listDevices DeviceLister) Model {
	input := textinput.New()
	input.Placeholder = "0.5 * sin(2*pi*440*t)"
	input.Prompt = "t ↦ "
	input.CharLimit = 4096
	input.Width = 72

	return Model{
		ctx:          ctx,
		runner:       runner,
		files:        files,
		listDevices:  listDevices,
		activeScreen: MenuScreen,
		input:        input,
		viewport:     viewport.New(80, 20),
		status:       "Ready",
	}
}

// Init initializes the Bubble Tea model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles input and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-6, 3)
		m.input.Width = max(msg.Width-8, 20)
		return m, nil

	case resultMsg:
		m.running = max(m.running-1, 0)
		m.status, m.err = msg.status, msg.err
		return m, nil

	case devicesMsg:
		m.devices, m.err = msg.devices, msg.err
		m.viewport.SetContent(m.renderDevices())
		return m, nil

	case tea.KeyMsg:
		switch m.activeScreen {
		case EquationScreen:
			return m.updateEquation(msg)
		case DeviceScreen:
			return m.updateDevices(msg)
		default:
			return m.updateMenu(msg)
		}
	}

	if m.activeScreen == EquationScreen {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.runner.Stop()
		return m, tea.Quit

	case key.Matches(msg, keys.PlayMusic):
		path := m.files.Music
		return m.start("Playing "+path, func() resultMsg {
			if err := m.runner.PlayFile(m.ctx, path); err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{status: "Finished " + path}
		})

	case key.Matches(msg, keys.PlayTone):
		return m.start("Playing sine wave", func() resultMsg {
			if err := m.runner.PlayTone(m.ctx); err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{status: "Sine wave finished"}
		})

	case key.Matches(msg, keys.Analyze):
		path := m.files.Waveform
		return m.start("Analyzing "+path, func() resultMsg {
			components, err := m.runner.Analyze(path)
			if err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{status: summarize(components)}
		})

	case key.Matches(msg, keys.Equation):
		path := m.files.Waveform
		return m.start("Computing equation of "+path, func() resultMsg {
			equation, err := m.runner.ComputeEquation(path)
			if err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{status: "Equation Generated: " + equation}
		})

	case key.Matches(msg, keys.Generate):
		m.activeScreen = EquationScreen
		m.err = nil
		if m.input.Value() == "" && m.lastEquation != "" {
			m.input.SetValue(m.lastEquation)
		}
		return m, m.input.Focus()

	case key.Matches(msg, keys.Stop):
		m.runner.Stop()
		m.status, m.err = "Music stopped", nil
		return m, nil

	case key.Matches(msg, keys.Devices):
		if m.listDevices == nil {
			return m, nil
		}
		m.activeScreen = DeviceScreen
		lister := m.listDevices
		return m, func() tea.Msg {
			devices, err := lister()
			return devicesMsg{devices: devices, err: err}
		}
	}
	return m, nil
}

func (m Model) updateEquation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		m.runner.Stop()
		return m, tea.Quit

	case key.Matches(msg, keys.Back):
		m.activeScreen = MenuScreen
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Submit):
		text := strings.TrimSpace(m.input.Value())
		m.activeScreen = MenuScreen
		m.input.Blur()
		if text == "" {
			return m, nil
		}
		m.lastEquation = text
		return m.start("Generating "+text, func() resultMsg {
			result, err := m.runner.Generate(m.ctx, text)
			if err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{status: fmt.Sprintf("Generated %s of %s", result.Waveform.Duration(), text)}
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateDevices(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Quit):
		m.activeScreen = MenuScreen
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// start runs action in a command and shows status until it reports back.
func (m Model) start(status string, action func() resultMsg) (tea.Model, tea.Cmd) {
	m.running++
	m.status, m.err = status+"...", nil
	return m, func() tea.Msg { return action() }
}

// View renders the UI
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Musically Mathematics"))
	sb.WriteString("\n\n")

	switch m.activeScreen {
	case EquationScreen:
		sb.WriteString("Enter the waveform equation (use 't' for time variable):\n\n")
		sb.WriteString(m.input.View())
		sb.WriteString("\n\n")
		sb.WriteString(infoStyle.Render("Enter: Generate • Esc: Back"))

	case DeviceScreen:
		sb.WriteString(m.viewport.View())
		sb.WriteString("\n\n")
		sb.WriteString(infoStyle.Render("↑/↓: Scroll • Esc: Back"))

	default:
		for _, item := range menuItems {
			if item.Help().Key == "d" && m.listDevices == nil {
				continue
			}
			fmt.Fprintf(&sb, "%s. %s\n", highlightStyle.Render(item.Help().Key), item.Help().Desc)
		}
		sb.WriteString("\nPress Q to Quit\n\n")
		sb.WriteString(m.renderStatus())
	}
	return sb.String()
}

func (m Model) renderStatus() string {
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	status := m.status
	if m.running > 0 {
		status = "▶ " + status
	}
	return dimStyle.Render(status)
}

// renderDevices formats the device list
func (m Model) renderDevices() string {
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if len(m.devices) == 0 {
		return "No audio devices found."
	}

	var sb strings.Builder
	for _, device := range m.devices {
		deviceInfo := fmt.Sprintf("[%d] %s (%s)\n", device.ID, device.Name, device.Kind())
		deviceInfo += fmt.Sprintf("    Input channels: %d, Output channels: %d\n",
			device.MaxInputChannels, device.MaxOutputChannels)
		deviceInfo += fmt.Sprintf("    Default sample rate: %.0f Hz\n", device.DefaultSampleRate)

		if device.CanPlay() {
			deviceInfo = highlightStyle.Render(deviceInfo)
		}
		sb.WriteString(deviceInfo)
		sb.WriteString("\n")
	}
	return sb.String()
}

func summarize(components []spectral.SpectralComponent) string {
	if len(components) == 0 {
		return "No positive-frequency components found"
	}
	parts := make([]string, len(components))
	for i, c := range components {
		parts[i] = fmt.Sprintf("%.1f Hz", c.FrequencyHz)
	}
	return "Dominant frequencies: " + strings.Join(parts, ", ")
}

// Start launches the menu and blocks until the user quits or ctx is done.
func Start(ctx context.Context, runner Runner, files Files, listDevices DeviceLister) error {
	p := tea.NewProgram(
		NewModel(ctx, runner, files, listDevices),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
