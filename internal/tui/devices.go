package tui

import (
	"errors"
	"fmt"
	"strings"

	"audiofx/internal/audio"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrNoSelection is returned by PickDevice when the user quits without
// choosing.
var ErrNoSelection = errors.New("no output device selected")

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

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play on device")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// DevicePickerModel is a Bubble Tea model listing output devices.
type DevicePickerModel struct {
	devices       []audio.Device
	selectedIndex int
	chosen        int
	viewport      viewport.Model
	ready         bool
}

// NewDevicePickerModel lists devices that can play audio.
func NewDevicePickerModel(devices []audio.Device) DevicePickerModel {
	var outputs []audio.Device
	for _, d := range devices {
		if d.MaxOutputChannels > 0 {
			outputs = append(outputs, d)
		}
	}
	return DevicePickerModel{devices: outputs, chosen: -1}
}

// Chosen returns the selected device ID and whether a choice was made.
func (m DevicePickerModel) Chosen() (int, bool) {
	return m.chosen, m.chosen >= 0
}

func (m DevicePickerModel) Init() tea.Cmd {
	return nil
}

func (m DevicePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.viewport.SetContent(m.renderDevices())
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

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
				m.chosen = m.devices[m.selectedIndex].ID
				return m, tea.Quit
			}
		}
		if m.ready {
			m.viewport.SetContent(m.renderDevices())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m DevicePickerModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	title := titleStyle.Render("Output Devices")
	help := infoStyle.Render(fmt.Sprintf("%s • %s • %s • %s",
		keys.Up.Help().Key+"/"+keys.Down.Help().Key+": navigate",
		keys.Select.Help().Key+": "+keys.Select.Help().Desc,
		keys.Quit.Help().Key+": "+keys.Quit.Help().Desc,
		"default device if none chosen"))

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

func (m DevicePickerModel) renderDevices() string {
	if len(m.devices) == 0 {
		return "No output devices found."
	}

	var sb strings.Builder
	for i, device := range m.devices {
		marker := " "
		if i == m.selectedIndex {
			marker = "▶"
		}
		line := fmt.Sprintf("%s [%d] %s\n", marker, device.ID, device.Name)
		line += fmt.Sprintf("      %d channels, %.0f Hz, latency %.1f-%.1f ms",
			device.MaxOutputChannels, device.DefaultSampleRate,
			device.LowOutputLatency.Seconds()*1000, device.HighOutputLatency.Seconds()*1000)
		if device.HostAPI != "" {
			line += " (" + device.HostAPI + ")"
		}
		if i == m.selectedIndex {
			line = highlightStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// PickDevice runs the picker full screen and returns the chosen device ID.
func PickDevice(devices []audio.Device) (int, error) {
	final, err := tea.NewProgram(
		NewDevicePickerModel(devices),
		tea.WithAltScreen(),
	).Run()
	if err != nil {
		return -1, err
	}

	id, ok := final.(DevicePickerModel).Chosen()
	if !ok {
		return -1, ErrNoSelection
	}
	return id, nil
}
