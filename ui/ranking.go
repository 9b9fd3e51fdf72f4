package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"qstack-client/models"
)

// rankingModel shows the mentor leaderboard.
type rankingModel struct {
	rankings []models.MentorRanking
	offset   int
}

func newRankingModel() rankingModel {
	return rankingModel{}
}

func (m rankingModel) setRankings(rankings []models.MentorRanking) rankingModel {
	m.rankings = rankings
	m.offset = 0
	return m
}

func (m rankingModel) handleKey(msg tea.KeyMsg, keys KeyMap) rankingModel {
	switch msg.String() {
	case "j", "down":
		if m.offset < len(m.rankings)-1 {
			m.offset++
		}
	case "k", "up":
		if m.offset > 0 {
			m.offset--
		}
	}
	return m
}

func (m rankingModel) view(theme Theme, width, height int) string {
	if len(m.rankings) == 0 {
		return theme.StatusBar.Render("No rankings yet.")
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render("Mentor leaderboard") + "\n\n")
	fmt.Fprintf(&b, "%s\n", theme.StatusBar.Render(fmt.Sprintf("%4s  %-24s %9s %8s %7s", "#", "mentor", "resolved", "ratings", "avg")))

	rows := height - 4
	if rows < 1 {
		rows = 1
	}
	visible := m.rankings
	if m.offset < len(visible) {
		visible = visible[m.offset:]
	}
	if len(visible) > rows {
		visible = visible[:rows]
	}

	for _, r := range visible {
		line := fmt.Sprintf("%4d  %-24s %9d %8d %7s",
			r.Rank, truncate(r.Name, 24), r.NumResolvedTickets, r.NumRatings, r.AverageRating.StringFixed(2))
		if r.Rank <= 3 {
			line = theme.Selected.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
