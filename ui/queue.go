package ui

import (
	"fmt"
	"strings"

	"qstack-client/models"
)

// queueModel renders the sorted ticket list with the viewer's claim.
type queueModel struct {
	tickets []models.Ticket
	claim   models.ClaimState
	cursor  int
}

func newQueueModel() queueModel {
	return queueModel{}
}

func (m queueModel) setTickets(tickets []models.Ticket) queueModel {
	m.tickets = tickets
	if m.cursor >= len(tickets) {
		m.cursor = len(tickets) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	return m
}

func (m queueModel) setClaim(claim models.ClaimState) queueModel {
	m.claim = claim
	return m
}

func (m queueModel) moveCursor(delta int) queueModel {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.tickets) {
		m.cursor = len(m.tickets) - 1
	}
	return m
}

func (m queueModel) selected() (models.Ticket, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tickets) {
		return models.Ticket{}, false
	}
	return m.tickets[m.cursor], true
}

func (m queueModel) view(theme Theme, width, height int) string {
	if len(m.tickets) == 0 {
		return theme.StatusBar.Render("The queue is empty.")
	}

	var b strings.Builder
	active := models.CountActive(m.tickets)
	fmt.Fprintf(&b, "%s\n\n", theme.StatusBar.Render(fmt.Sprintf("%d active / %d total", active, len(m.tickets))))

	detail := m.detail(theme, width)

	visible := m.tickets
	start := 0
	rows := height - 3
	if detail != "" {
		rows -= strings.Count(detail, "\n") + 2
	}
	if rows > 0 && len(visible) > rows {
		start = m.cursor - rows/2
		if start < 0 {
			start = 0
		}
		if start+rows > len(visible) {
			start = len(visible) - rows
		}
		visible = visible[start : start+rows]
	}

	for i, t := range visible {
		idx := start + i
		marker := "  "
		if idx == m.cursor {
			marker = theme.Selected.Render("> ")
		}

		status := theme.StatusBar.Foreground(theme.StatusColor(t.Status)).Render(fmt.Sprintf("%-8s", t.Status))
		line := fmt.Sprintf("%s#%-4d %s %s", marker, t.ID, status, truncate(t.Question, width-30))
		if m.claim.Claimed && m.claim.TicketID == t.ID {
			line += "  " + theme.Notice.Render("[yours]")
		} else if t.MentorName != "" {
			line += "  " + theme.StatusBar.Render("("+t.MentorName+")")
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if detail != "" {
		b.WriteString("\n" + detail + "\n")
	}

	b.WriteString("\n" + theme.Help.Render("c claim · u unclaim · r resolve"))
	return b.String()
}

// detail describes the selected ticket. For the viewer's own claim it
// also shows how the creator wants to be reached.
func (m queueModel) detail(theme Theme, width int) string {
	t, ok := m.selected()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render(truncate(t.Question, width-2)))

	meta := t.Creator
	if t.Location != "" {
		meta += " · " + t.Location
	}
	b.WriteString("\n" + theme.StatusBar.Render(meta))

	if t.Content != "" {
		b.WriteString("\n" + truncate(t.Content, width-2))
	}

	if m.claim.Claimed && m.claim.TicketID == t.ID {
		if contact := t.ContactValue(); contact != "" {
			b.WriteString("\n" + theme.Notice.Render("reach "+t.Creator+" via "+string(t.Preferred)+": "+contact))
		}
	}
	return b.String()
}

func truncate(s string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
