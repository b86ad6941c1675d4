// Package tui implements the interactive output device browser.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nowplaying/internal/audio"
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

	dimStyle = lipgloss.NewStyle().
			Faint(true)
)

// NoSelection is the Chosen value when the browser exits without a
// confirmed device. Device IDs are never negative.
const NoSelection = -1

// ScreenType defines which screen is currently active
type ScreenType int

const (
	ListScreen ScreenType = iota
	DetailScreen
)

// DeviceBrowserModel is the Bubble Tea model for browsing audio
// devices and picking an output device. Input-only devices are listed
// for context but cannot be selected.
type DeviceBrowserModel struct {
	devices       []audio.Device
	selectedIndex int
	viewport      viewport.Model
	ready         bool
	err           error
	activeScreen  ScreenType

	// Chosen holds the confirmed output device ID after the browser
	// exits, or NoSelection.
	Chosen int
}

// NewDeviceBrowserModel creates a browser with nothing selected.
func NewDeviceBrowserModel() DeviceBrowserModel {
	return DeviceBrowserModel{
		selectedIndex: 0,
		activeScreen:  ListScreen,
		Chosen:        NoSelection,
	}
}

// Init initializes the Bubble Tea model
func (m DeviceBrowserModel) Init() tea.Cmd {
	return fetchDevices
}

// fetchDevices gets the available audio devices
func fetchDevices() tea.Msg {
	devices, err := audio.HostDevices()
	if err != nil {
		return errMsg{err}
	}
	return devicesMsg{devices}
}

type devicesMsg struct {
	devices []audio.Device
}

type errMsg struct {
	err error
}

// Update handles input and updates the model
func (m DeviceBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Initialize the viewport with the window size
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.viewport.Style = lipgloss.NewStyle()
			m.ready = true

			// If we already have devices, render them now
			if len(m.devices) > 0 {
				m.viewport.SetContent(m.renderDevices())
			}
		} else {
			// Just update viewport dimensions
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}

	case devicesMsg:
		m.devices = msg.devices
		if m.ready {
			m.viewport.SetContent(m.renderDevices())
		}

	case errMsg:
		m.err = msg.err

	case tea.KeyMsg:
		// First check for keys that should work everywhere
		if key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c"))) {
			return m, tea.Quit
		}

		// Then handle screen-specific keys
		if m.activeScreen == ListScreen {
			switch {
			case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
				if m.selectedIndex > 0 {
					m.selectedIndex--
					m.viewport.SetContent(m.renderDevices())
				}

			case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
				if m.selectedIndex < len(m.devices)-1 {
					m.selectedIndex++
					m.viewport.SetContent(m.renderDevices())
				}

			case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
				// Only output-capable devices can be inspected and
				// selected.
				if len(m.devices) > 0 && m.devices[m.selectedIndex].MaxOutputChannels > 0 {
					m.activeScreen = DetailScreen
					m.viewport.SetContent(m.renderDeviceDetail())
				}
			}
		} else if m.activeScreen == DetailScreen {
			switch {
			case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
				// Return to list screen
				m.activeScreen = ListScreen
				m.viewport.SetContent(m.renderDevices())

			case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
				m.Chosen = m.devices[m.selectedIndex].ID
				return m, tea.Quit
			}
		}
	}

	// Handle viewport updates
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the UI
func (m DeviceBrowserModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to exit.", m.err)
	}

	var title, help string

	if m.activeScreen == ListScreen {
		title = titleStyle.Render("Output Devices")
		help = infoStyle.Render("↑/↓: Navigate • Enter: Inspect • q: Quit")
	} else {
		title = titleStyle.Render("Device Details")
		help = infoStyle.Render("Enter: Select • Esc: Back • q: Quit")
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

// renderDevices formats the device list
func (m DeviceBrowserModel) renderDevices() string {
	var sb strings.Builder

	if len(m.devices) == 0 {
		return "No audio devices found."
	}

	for i, device := range m.devices {
		deviceType := ""
		if device.MaxInputChannels > 0 && device.MaxOutputChannels > 0 {
			deviceType = "Input/Output"
		} else if device.MaxInputChannels > 0 {
			deviceType = "Input"
		} else if device.MaxOutputChannels > 0 {
			deviceType = "Output"
		}

		deviceInfo := fmt.Sprintf("[%d] %s (%s)\n",
			device.ID, device.Name, deviceType)
		deviceInfo += fmt.Sprintf("    Output channels: %d, Default sample rate: %.0f Hz\n",
			device.MaxOutputChannels, device.DefaultSampleRate)

		switch {
		case i == m.selectedIndex:
			deviceInfo = highlightStyle.Render(deviceInfo)
		case device.MaxOutputChannels == 0:
			deviceInfo = dimStyle.Render(deviceInfo)
		}

		sb.WriteString(deviceInfo)
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderDeviceDetail formats the detail screen for the highlighted
// device.
func (m DeviceBrowserModel) renderDeviceDetail() string {
	var sb strings.Builder
	device := m.devices[m.selectedIndex]

	sb.WriteString(fmt.Sprintf("Output Device: %s\n\n", device.Name))
	sb.WriteString(fmt.Sprintf("    ID:                  %d\n", device.ID))
	sb.WriteString(fmt.Sprintf("    Output channels:     %d\n", device.MaxOutputChannels))
	sb.WriteString(fmt.Sprintf("    Default sample rate: %.0f Hz\n", device.DefaultSampleRate))
	sb.WriteString(fmt.Sprintf("    Output latency:      Low=%.2fms, High=%.2fms\n",
		device.LowOutputLatency.Seconds()*1000,
		device.HighOutputLatency.Seconds()*1000))
	sb.WriteString(fmt.Sprintf("\nPlay through it with: nowplaying --device %d <file>\n", device.ID))

	return sb.String()
}

// StartDeviceBrowser launches the Bubble Tea browser and returns the
// confirmed output device ID, or NoSelection when the user quit
// without choosing.
func StartDeviceBrowser() (int, error) {
	p := tea.NewProgram(
		NewDeviceBrowserModel(),
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if err != nil {
		return NoSelection, err
	}
	model, ok := final.(DeviceBrowserModel)
	if !ok {
		return NoSelection, fmt.Errorf("unexpected model type %T", final)
	}
	return model.Chosen, nil
}
