// SPDX-License-Identifier: MIT
//
// Package tui is the interactive input device picker behind
// "spectro devices".
package tui

import (
	"fmt"
	"slices"
	"strings"

	"spectro/internal/audio"
	"spectro/internal/palette"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)
)

// ScreenType defines which screen is currently active
type ScreenType int

const (
	ListScreen ScreenType = iota
	ConfigScreen
)

// Common capture rates offered on the configuration screen.
var standardSampleRates = []float64{22050, 44100, 48000, 88200, 96000}

const previewWidth = 48

type keyMap struct {
	Quit, Up, Down, Select, Back key.Binding
}

var keys = keyMap{
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c")),
	Up:     key.NewBinding(key.WithKeys("up", "k")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Select: key.NewBinding(key.WithKeys("enter")),
	Back:   key.NewBinding(key.WithKeys("esc")),
}

// Selection is the device and rate the user confirmed.
type Selection struct {
	DeviceID   int
	Name       string
	SampleRate float64
}

// DevicePicker is the Bubble Tea model listing input devices. Enter opens
// the sample rate screen, a second Enter confirms.
type DevicePicker struct {
	load          func() ([]audio.Device, error)
	devices       []audio.Device
	selectedIndex int
	viewport      viewport.Model
	ready         bool
	err           error
	activeScreen  ScreenType

	sampleRates     []float64
	sampleRateIndex int

	preview  string // Gradient bar shown on the configuration screen.
	selected *Selection
}

type devicesMsg struct {
	devices []audio.Device
}

type errMsg struct {
	err error
}

// NewDevicePicker creates a picker that lists devices from load and
// previews gradient on the configuration screen. A nil gradient hides the
// preview.
func NewDevicePicker(load func() ([]audio.Device, error), gradient palette.Gradient) DevicePicker {
	m := DevicePicker{
		load:         load,
		activeScreen: ListScreen,
	}
	if gradient != nil {
		m.preview = gradientBar(gradient, previewWidth)
	}
	return m
}

// Init fetches the device list.
func (m DevicePicker) Init() tea.Cmd {
	return m.fetchDevices
}

// fetchDevices keeps only devices that can capture.
func (m DevicePicker) fetchDevices() tea.Msg {
	devices, err := m.load()
	if err != nil {
		return errMsg{err}
	}
	inputs := slices.DeleteFunc(slices.Clone(devices), func(d audio.Device) bool { return !d.IsInput() })
	return devicesMsg{inputs}
}

func (m DevicePicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.viewport.Style = lipgloss.NewStyle()
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.refresh()

	case devicesMsg:
		m.devices = msg.devices
		m.refresh()

	case errMsg:
		m.err = msg.err

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) || m.err != nil {
			return m, tea.Quit
		}

		switch m.activeScreen {
		case ListScreen:
			switch {
			case key.Matches(msg, keys.Up):
				if m.selectedIndex > 0 {
					m.selectedIndex--
				}
			case key.Matches(msg, keys.Down):
				if m.selectedIndex < len(m.devices)-1 {
					m.selectedIndex++
				}
			case key.Matches(msg, keys.Select):
				if len(m.devices) > 0 {
					m.openConfig()
				}
			}

		case ConfigScreen:
			switch {
			case key.Matches(msg, keys.Back):
				m.activeScreen = ListScreen
			case key.Matches(msg, keys.Up):
				if m.sampleRateIndex > 0 {
					m.sampleRateIndex--
				}
			case key.Matches(msg, keys.Down):
				if m.sampleRateIndex < len(m.sampleRates)-1 {
					m.sampleRateIndex++
				}
			case key.Matches(msg, keys.Select):
				d := m.devices[m.selectedIndex]
				m.selected = &Selection{
					DeviceID:   d.ID,
					Name:       d.Name,
					SampleRate: m.sampleRates[m.sampleRateIndex],
				}
				return m, tea.Quit
			}
		}
		m.refresh()
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// openConfig switches to the sample rate screen with the device default
// preselected.
func (m *DevicePicker) openConfig() {
	m.activeScreen = ConfigScreen

	def := m.devices[m.selectedIndex].DefaultSampleRate
	m.sampleRates = slices.Clone(standardSampleRates)
	if !slices.Contains(m.sampleRates, def) && def > 0 {
		m.sampleRates = append(m.sampleRates, def)
		slices.Sort(m.sampleRates)
	}
	m.sampleRateIndex = max(slices.Index(m.sampleRates, def), 0)
}

func (m *DevicePicker) refresh() {
	if !m.ready {
		return
	}
	if m.activeScreen == ConfigScreen {
		m.viewport.SetContent(m.renderDeviceConfig())
	} else {
		m.viewport.SetContent(m.renderDevices())
	}
}

// Selected returns the confirmed choice, if any.
func (m DevicePicker) Selected() (Selection, bool) {
	if m.selected == nil {
		return Selection{}, false
	}
	return *m.selected, true
}

// View renders the UI
func (m DevicePicker) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress any key to exit.", m.err)
	}
	if !m.ready {
		return "Initializing..."
	}

	var title, help string

	if m.activeScreen == ListScreen {
		title = titleStyle.Render("Input Devices")
		help = infoStyle.Render("↑/↓: Navigate • Enter: Configure • q: Quit")
	} else {
		title = titleStyle.Render("Capture Settings")
		help = infoStyle.Render("↑/↓: Change Rate • Enter: Start • Esc: Back • q: Quit")
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

// renderDevices formats the device list
func (m DevicePicker) renderDevices() string {
	if len(m.devices) == 0 {
		return "No audio input devices found."
	}

	var sb strings.Builder
	for i, device := range m.devices {
		deviceInfo := fmt.Sprintf("[%d] %s (%s)\n", device.ID, device.Name, device.Kind())
		deviceInfo += fmt.Sprintf("    Input channels: %d, Default sample rate: %.0f Hz\n",
			device.MaxInputChannels, device.DefaultSampleRate)
		if device.HostAPI != "" {
			deviceInfo += fmt.Sprintf("    Host API: %s\n", device.HostAPI)
		}

		if i == m.selectedIndex {
			deviceInfo = highlightStyle.Render(deviceInfo)
		}

		sb.WriteString(deviceInfo)
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderDeviceConfig formats the device configuration screen
func (m DevicePicker) renderDeviceConfig() string {
	var sb strings.Builder
	device := m.devices[m.selectedIndex]

	fmt.Fprintf(&sb, "Device: %s\n\n", device.Name)
	sb.WriteString("Sample Rate:\n")

	for i, rate := range m.sampleRates {
		marker := " "
		if i == m.sampleRateIndex {
			marker = "▶"
		}
		line := fmt.Sprintf("  %s %.0f Hz (Nyquist %.0f Hz)\n", marker, rate, rate/2)
		if i == m.sampleRateIndex {
			line = highlightStyle.Render(line)
		}
		sb.WriteString(line)
	}

	if m.preview != "" {
		sb.WriteString("\nPalette:\n  ")
		sb.WriteString(m.preview)
		sb.WriteString("\n")
	}

	return sb.String()
}

// gradientBar renders g as a row of colored cells, silence on the left.
func gradientBar(g palette.Gradient, width int) string {
	var sb strings.Builder
	for i := range width {
		c := g.At(float32(i) / float32(max(width-1, 1)))
		cell := lipgloss.NewStyle().Background(lipgloss.Color(palette.Hex(c.Channels())))
		sb.WriteString(cell.Render(" "))
	}
	return sb.String()
}

// PickDevice runs the picker full screen and returns the confirmed choice.
// ok is false when the user quit without choosing.
func PickDevice(gradient palette.Gradient) (sel Selection, ok bool, err error) {
	p := tea.NewProgram(
		NewDevicePicker(audio.HostDevices, gradient),
		tea.WithAltScreen(),
	)
	final, err := p.Run()
	if err != nil {
		return Selection{}, false, err
	}
	if m, isPicker := final.(DevicePicker); isPicker {
		if m.err != nil {
			return Selection{}, false, m.err
		}
		sel, ok = m.Selected()
	}
	return sel, ok, nil
}
