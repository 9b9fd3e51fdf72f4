package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"qstack-client/models"
)

// connectModel is the contact-connect flow: link Discord via the
// backend's OAuth URL, or save a phone number. An authenticated viewer
// with an unmet contact requirement is parked here until it is met.
type connectModel struct {
	phone textinput.Model
}

func newConnectModel() connectModel {
	ti := textinput.New()
	ti.Placeholder = "(555) 123-4567"
	ti.CharLimit = 20
	ti.Width = 24
	return connectModel{phone: ti}
}

func (m connectModel) focus() connectModel {
	m.phone.Focus()
	return m
}

func (m connectModel) editing() bool {
	return m.phone.Focused()
}

func (m connectModel) handleKey(msg tea.KeyMsg, submit func(raw string) tea.Cmd) (connectModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		raw := m.phone.Value()
		if raw == "" {
			return m, nil
		}
		m.phone.SetValue("")
		return m, submit(raw)
	case tea.KeyEsc:
		m.phone.Blur()
		return m, nil
	}

	if !m.phone.Focused() && msg.String() == "p" {
		m.phone.Focus()
		return m, nil
	}

	var cmd tea.Cmd
	m.phone, cmd = m.phone.Update(msg)
	return m, cmd
}

func (m connectModel) view(theme Theme, profile models.UserProfile, discordURL string) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render("Connect a contact method") + "\n\n")

	if profile.DiscordRequired {
		b.WriteString(theme.Notice.Render("Discord link required") + "\n")
	}
	if profile.ContactRequired {
		b.WriteString(theme.Notice.Render("A contact method is required") + "\n")
	}
	b.WriteByte('\n')

	discord := profile.Discord
	if discord == "" {
		discord = theme.StatusBar.Render("not linked")
	}
	fmt.Fprintf(&b, "Discord: %s\n", discord)
	fmt.Fprintf(&b, "  link via %s\n\n", theme.Selected.Render(discordURL))

	phone := profile.Phone
	if phone == "" {
		phone = theme.StatusBar.Render("not set")
	}
	fmt.Fprintf(&b, "Phone:   %s\n", phone)
	b.WriteString("  " + m.phone.View() + "\n\n")

	method := string(profile.Preferred)
	if method == "" {
		method = theme.StatusBar.Render("not chosen")
	}
	fmt.Fprintf(&b, "Preferred method: %s\n\n", method)

	b.WriteString(theme.Help.Render("p edit phone · enter save · esc done · m cycle preferred"))
	return b.String()
}
