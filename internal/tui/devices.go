// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"slices"
	"strings"

	"earshot/internal/audio"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ScreenType defines which screen is currently active
type ScreenType int

const (
	ListScreen ScreenType = iota
	ConfigScreen
)

// CommonSampleRates are offered on the configuration screen alongside the
// device default.
var CommonSampleRates = []float64{22050, 44100, 48000, 88200, 96000}

// DeviceLoader returns the devices to list.
type DeviceLoader func() ([]audio.Device, error)

// Selection is the device and sample rate picked by the user.
type Selection struct {
	DeviceID   int
	SampleRate float64
}

type deviceKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Confirm key.Binding
	Back    key.Binding
	Quit    key.Binding
}

var deviceKeys = deviceKeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k")),
	Down:    key.NewBinding(key.WithKeys("down", "j")),
	Confirm: key.NewBinding(key.WithKeys("enter")),
	Back:    key.NewBinding(key.WithKeys("esc")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c")),
}

// DeviceListModel represents the Bubble Tea model for picking a capture device
type DeviceListModel struct {
	load          DeviceLoader
	devices       []audio.Device
	selectedIndex int
	viewport      viewport.Model
	ready         bool
	err           error
	notice        string
	activeScreen  ScreenType

	// Configuration options
	availableSampleRates []float64
	sampleRateIndex      int

	chosen bool
}

type devicesMsg struct {
	devices []audio.Device
}

type errMsg struct {
	err error
}

// NewDeviceListModel creates a new device list model reading devices from load.
func NewDeviceListModel(load DeviceLoader) DeviceListModel {
	return DeviceListModel{
		load:         load,
		activeScreen: ListScreen,
	}
}

// Init initializes the Bubble Tea model
func (m DeviceListModel) Init() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		devices, err := load()
		if err != nil {
			return errMsg{err}
		}
		return devicesMsg{devices}
	}
}

// Selection returns the confirmed choice, if the user made one.
func (m DeviceListModel) Selection() (Selection, bool) {
	if !m.chosen {
		return Selection{}, false
	}
	return Selection{
		DeviceID:   m.devices[m.selectedIndex].ID,
		SampleRate: m.availableSampleRates[m.sampleRateIndex],
	}, true
}

// Update handles input and updates the model
func (m DeviceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
		if key.Matches(msg, deviceKeys.Quit) {
			return m, tea.Quit
		}
		if m.activeScreen == ListScreen {
			return m.updateList(msg)
		}
		return m.updateConfig(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m DeviceListModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch {
	case key.Matches(msg, deviceKeys.Up):
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}

	case key.Matches(msg, deviceKeys.Down):
		if m.selectedIndex < len(m.devices)-1 {
			m.selectedIndex++
		}

	case key.Matches(msg, deviceKeys.Confirm):
		if len(m.devices) == 0 {
			break
		}
		device := m.devices[m.selectedIndex]
		if !device.CanCapture() {
			m.notice = fmt.Sprintf("%s has no input channels", device.Name)
			break
		}

		m.activeScreen = ConfigScreen
		m.availableSampleRates = CommonSampleRates
		if !slices.Contains(m.availableSampleRates, device.DefaultSampleRate) && device.DefaultSampleRate > 0 {
			m.availableSampleRates = append(slices.Clone(CommonSampleRates), device.DefaultSampleRate)
			slices.Sort(m.availableSampleRates)
		}
		m.sampleRateIndex = max(slices.Index(m.availableSampleRates, device.DefaultSampleRate), 0)
	}
	m.refresh()
	return m, nil
}

func (m DeviceListModel) updateConfig(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, deviceKeys.Back):
		m.activeScreen = ListScreen

	case key.Matches(msg, deviceKeys.Up):
		if m.sampleRateIndex > 0 {
			m.sampleRateIndex--
		}

	case key.Matches(msg, deviceKeys.Down):
		if m.sampleRateIndex < len(m.availableSampleRates)-1 {
			m.sampleRateIndex++
		}

	case key.Matches(msg, deviceKeys.Confirm):
		m.chosen = true
		return m, tea.Quit
	}
	m.refresh()
	return m, nil
}

func (m *DeviceListModel) refresh() {
	if !m.ready {
		return
	}
	if m.activeScreen == ListScreen {
		m.viewport.SetContent(m.renderDevices())
	} else {
		m.viewport.SetContent(m.renderDeviceConfig())
	}
}

// View renders the UI
func (m DeviceListModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to exit.", m.err)
	}
	if !m.ready {
		return "Initializing..."
	}

	var title, help string
	if m.activeScreen == ListScreen {
		title = titleStyle.Render("Audio Device List")
		help = infoStyle.Render("↑/↓: Navigate • Enter: Configure • q: Quit")
	} else {
		title = titleStyle.Render("Device Configuration")
		help = infoStyle.Render("↑/↓: Change Value • Enter: Record • Esc: Back • q: Quit")
	}
	if m.notice != "" {
		help = errorStyle.Render(m.notice) + "\n" + help
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

// renderDevices formats the device list
func (m DeviceListModel) renderDevices() string {
	if len(m.devices) == 0 {
		return "No audio devices found."
	}

	var sb strings.Builder
	for i, device := range m.devices {
		deviceInfo := fmt.Sprintf("[%d] %s (%s)\n", device.ID, device.Name, device.Kind())
		deviceInfo += fmt.Sprintf("    Input channels: %d, Output channels: %d\n",
			device.MaxInputChannels, device.MaxOutputChannels)
		deviceInfo += fmt.Sprintf("    Default sample rate: %.0f Hz\n", device.DefaultSampleRate)

		if i == m.selectedIndex {
			deviceInfo = highlightStyle.Render(deviceInfo)
		} else if !device.CanCapture() {
			deviceInfo = mutedStyle.Render(deviceInfo)
		}

		sb.WriteString(deviceInfo)
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderDeviceConfig formats the device configuration screen
func (m DeviceListModel) renderDeviceConfig() string {
	var sb strings.Builder
	device := m.devices[m.selectedIndex]

	fmt.Fprintf(&sb, "Configure Device: %s\n\n", device.Name)
	sb.WriteString("Sample Rate:\n")

	for i, rate := range m.availableSampleRates {
		marker := " "
		if i == m.sampleRateIndex {
			marker = "▶"
		}
		line := fmt.Sprintf("  %s %.0f Hz\n", marker, rate)
		if i == m.sampleRateIndex {
			line = highlightStyle.Render(line)
		}
		sb.WriteString(line)
	}
	return sb.String()
}

// StartDevicePicker runs the picker and returns the confirmed selection.
// ok is false when the user quit without choosing.
func StartDevicePicker(load DeviceLoader) (sel Selection, ok bool, err error) {
	p := tea.NewProgram(NewDeviceListModel(load), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return Selection{}, false, err
	}
	sel, ok = final.(DeviceListModel).Selection()
	return sel, ok, nil
}

// StartDeviceListUI launches the picker for browsing only.
func StartDeviceListUI(load DeviceLoader) error {
	_, _, err := StartDevicePicker(load)
	return err
}
