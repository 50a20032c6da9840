package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type DashboardModel struct {
	Client *Client
	Table  table.Model
	Status *Status
	Err    error
	Info   string
}

// RefreshedMsg carries the latest status and device list from the server.
type RefreshedMsg struct {
	Status  *Status
	Devices []Device
}

type toggledMsg string

func NewDashboardModel(c *Client, height int) DashboardModel {
	columns := []table.Column{
		{Title: "Name", Width: 24},
		{Title: "MAC", Width: 20},
		{Title: "Enabled", Width: 8},
		{Title: "Notes", Width: 28},
	}
	if height < 14 {
		height = 14
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height-10),
	)

	sStyle := table.DefaultStyles()
	sStyle.Header = sStyle.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	sStyle.Selected = sStyle.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(sStyle)

	return DashboardModel{Client: c, Table: t}
}

func (m DashboardModel) Init() tea.Cmd {
	return m.refreshCmd
}

func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return m, m.refreshCmd
		case "t":
			return m, m.toggleCmd
		case "q":
			return m, tea.Quit
		}

	case RefreshedMsg:
		m.Status = msg.Status
		rows := make([]table.Row, 0, len(msg.Devices))
		for _, d := range msg.Devices {
			enabled := "no"
			if d.Enabled {
				enabled = "yes"
			}
			rows = append(rows, table.Row{d.Name, d.MAC, enabled, d.Notes})
		}
		m.Table.SetRows(rows)
		m.Err = nil
		return m, nil

	case toggledMsg:
		m.Info = string(msg)
		return m, m.refreshCmd

	case errMsg:
		m.Err = msg
		return m, nil
	}

	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m DashboardModel) refreshCmd() tea.Msg {
	st, err := m.Client.Status()
	if err != nil {
		return errMsg(err)
	}
	devices, err := m.Client.Devices()
	if err != nil {
		return errMsg(err)
	}
	return RefreshedMsg{Status: st, Devices: devices}
}

func (m DashboardModel) toggleCmd() tea.Msg {
	if m.Status == nil {
		return errMsg(fmt.Errorf("status not loaded yet"))
	}
	desired := !m.Status.ControlsActive
	reason := "dashboard toggle"
	res, err := m.Client.Toggle(desired, reason)
	if err != nil {
		return errMsg(err)
	}
	return toggledMsg(res.Message)
}

func (m DashboardModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("homeguard") + " ")
	if m.Status != nil {
		if m.Status.ControlsActive {
			b.WriteString(activeStyle.Render("CONTROLS ACTIVE"))
		} else {
			b.WriteString(inactiveStyle.Render("controls inactive"))
		}
		b.WriteString(fmt.Sprintf("  %d devices", m.Status.DeviceCount))
		if m.Status.LastChangeReason != "" {
			b.WriteString(blurredStyle.Render("  last: " + m.Status.LastChangeReason))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(m.Table.View())
	b.WriteString("\n\n")
	b.WriteString(blurredStyle.Render("'t' toggle, 'r' refresh, 'q' quit"))
	if m.Info != "" {
		b.WriteString("\n" + focusedStyle.Render(m.Info))
	}
	if m.Err != nil {
		b.WriteString("\n" + errorMessageStyle(m.Err.Error()))
	}
	return docStyle.Render(b.String())
}
