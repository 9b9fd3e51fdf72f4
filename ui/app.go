// Package ui is the terminal front end: a queue view over the polled
// ticket list, a live force-directed network view of mentors and
// tickets, the contact-connect flow, and the mentor leaderboard.
package ui

import (
	"context"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"qstack-client/api"
	"qstack-client/config"
	"qstack-client/models"
	"qstack-client/services"
)

// Route identifies which view is active.
type Route int

const (
	RouteHome Route = iota
	RouteQueue
	RouteNetwork
	RouteConnect
	RouteRanking
	RouteError
)

// Messages delivered through the bubbletea loop. Every backend call
// runs as a tea.Cmd and comes back as one of these.
type (
	profileMsg struct {
		profile models.UserProfile
		err     error
	}

	ticketsMsg struct {
		tickets []models.Ticket
		arrival *services.Arrival
		err     error
	}

	claimMsg struct {
		claim models.ClaimState
	}

	snapshotMsg struct {
		snap models.GraphSnapshot
		err  error
	}

	mutationMsg struct {
		result api.Result
		err    error
	}

	rankingsMsg struct {
		rankings []models.MentorRanking
		err      error
	}

	logoutMsg struct {
		err error
	}

	// Poll timers. Each carries the mount generation that started it
	// and reschedules itself only while its view is still the active
	// route and its generation is still current. Stale generations
	// (an earlier mount of the same route) die on arrival, so a route
	// never runs more than one chain per timer.
	ticketTickMsg struct{ gen int }
	claimTickMsg  struct{ gen int }
	graphTickMsg  struct{ gen int }
	frameTickMsg  struct{ gen int }
	pushEventMsg  struct{}

	noticeFadeMsg struct{}
)

const noticeFadeDelay = 4 * time.Second

// App is the root model. It owns routing and the session; each view
// keeps its own state underneath.
type App struct {
	ctx   context.Context
	cfg   *config.Config
	users *services.UserStore
	queue *services.QueueService
	graph *services.GraphService

	route  Route
	mount  int
	width  int
	height int
	errMsg string
	notice string

	keys  KeyMap
	theme Theme

	queueView   queueModel
	networkView networkModel
	connectView connectModel
	rankingView rankingModel
}

func NewApp(ctx context.Context, cfg *config.Config, users *services.UserStore, queue *services.QueueService, graph *services.GraphService) App {
	return App{
		ctx:         ctx,
		cfg:         cfg,
		users:       users,
		queue:       queue,
		graph:       graph,
		route:       RouteHome,
		keys:        DefaultKeyMap,
		theme:       DefaultTheme,
		queueView:   newQueueModel(),
		networkView: newNetworkModel(),
		connectView: newConnectModel(),
		rankingView: newRankingModel(),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.fetchProfile(), a.watchPush())
}

func (a App) fetchProfile() tea.Cmd {
	return func() tea.Msg {
		profile, err := a.users.Refresh(a.ctx)
		return profileMsg{profile: profile, err: err}
	}
}

func (a App) fetchTickets() tea.Cmd {
	return func() tea.Msg {
		tickets, arrival, err := a.queue.RefreshTickets(a.ctx)
		return ticketsMsg{tickets: tickets, arrival: arrival, err: err}
	}
}

func (a App) fetchClaim() tea.Cmd {
	return func() tea.Msg {
		return claimMsg{claim: a.queue.RefreshClaim(a.ctx)}
	}
}

func (a App) fetchSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, err := a.graph.Snapshot(a.ctx)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (a App) fetchRankings() tea.Cmd {
	return func() tea.Msg {
		rankings, err := a.users.Rankings(a.ctx)
		return rankingsMsg{rankings: rankings, err: err}
	}
}

func (a App) watchPush() tea.Cmd {
	events := a.queue.Events()
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-events:
			return pushEventMsg{}
		case <-a.ctx.Done():
			return nil
		}
	}
}

func tick(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

// navigate switches routes, starting the target view's polling. The
// connect redirect is mandatory: an authenticated viewer who still
// needs to connect a contact method cannot leave the connect view.
func (a App) navigate(route Route) (App, tea.Cmd) {
	if a.users.ConnectRequired() && route != RouteConnect {
		route = RouteConnect
	}
	if route != RouteHome && route != RouteError && !a.users.LoggedIn() {
		route = RouteHome
	}
	a.route = route
	a.mount++

	switch route {
	case RouteQueue:
		return a, tea.Batch(
			a.fetchTickets(),
			a.fetchClaim(),
			tick(a.cfg.TicketPollInterval, ticketTickMsg{gen: a.mount}),
			tick(a.cfg.ClaimPollInterval, claimTickMsg{gen: a.mount}),
		)
	case RouteNetwork:
		a.networkView = a.networkView.reset()
		return a, tea.Batch(
			a.fetchSnapshot(),
			tick(a.cfg.GraphPollInterval, graphTickMsg{gen: a.mount}),
			tick(frameInterval, frameTickMsg{gen: a.mount}),
		)
	case RouteConnect:
		a.connectView = a.connectView.focus()
		return a, nil
	case RouteRanking:
		return a, a.fetchRankings()
	}
	return a, nil
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		if a.route == RouteNetwork {
			a.networkView = a.networkView.handleMouse(msg)
		}
		return a, nil

	case profileMsg:
		return a.handleProfile(msg)

	case ticketsMsg:
		if msg.err != nil {
			// A response landing after the viewer already left the
			// queue is discarded, same as a stale tick.
			if a.route != RouteQueue {
				return a, nil
			}
			a.errMsg = msg.err.Error()
			a.route = RouteError
			return a, nil
		}
		a.queueView = a.queueView.setTickets(msg.tickets)
		if msg.arrival != nil {
			a.notice = arrivalNotice(msg.arrival.Count)
			return a, tick(noticeFadeDelay, noticeFadeMsg{})
		}
		return a, nil

	case claimMsg:
		a.queueView = a.queueView.setClaim(msg.claim)
		return a, nil

	case snapshotMsg:
		if msg.err != nil {
			// The network view quietly waits out bad polls; the next
			// timer fires regardless.
			return a, nil
		}
		w, h := a.contentSize()
		a.networkView = a.networkView.setSnapshot(msg.snap, w, h)
		return a, nil

	case mutationMsg:
		if msg.err != nil {
			a.errMsg = msg.err.Error()
			a.route = RouteError
			return a, nil
		}
		a.notice = msg.result.Message
		return a, tick(noticeFadeDelay, noticeFadeMsg{})

	case rankingsMsg:
		if msg.err == nil {
			a.rankingView = a.rankingView.setRankings(msg.rankings)
		}
		return a, nil

	case logoutMsg:
		if msg.err == nil {
			a.route = RouteHome
		}
		return a, nil

	case ticketTickMsg:
		if a.route != RouteQueue || msg.gen != a.mount {
			return a, nil
		}
		return a, tea.Batch(a.fetchTickets(), tick(a.cfg.TicketPollInterval, msg))

	case claimTickMsg:
		if a.route != RouteQueue || msg.gen != a.mount {
			return a, nil
		}
		return a, tea.Batch(a.fetchClaim(), tick(a.cfg.ClaimPollInterval, msg))

	case graphTickMsg:
		if a.route != RouteNetwork || msg.gen != a.mount {
			return a, nil
		}
		return a, tea.Batch(a.fetchSnapshot(), tick(a.cfg.GraphPollInterval, msg))

	case frameTickMsg:
		if a.route != RouteNetwork || msg.gen != a.mount {
			return a, nil
		}
		a.networkView = a.networkView.advance()
		return a, tick(frameInterval, msg)

	case pushEventMsg:
		// Out-of-band change signal: refresh early, keep listening.
		cmds := []tea.Cmd{a.watchPush()}
		if a.route == RouteQueue {
			cmds = append(cmds, a.fetchTickets())
		}
		return a, tea.Batch(cmds...)

	case noticeFadeMsg:
		a.notice = ""
		return a, nil
	}

	return a, nil
}

func (a App) handleProfile(msg profileMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.errMsg = msg.err.Error()
		a.route = RouteError
		return a, nil
	}
	if !msg.profile.LoggedIn {
		a.route = RouteHome
		return a, nil
	}
	if a.users.ConnectRequired() {
		return a.navigate(RouteConnect)
	}
	if a.route == RouteHome {
		return a.navigate(RouteQueue)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.route == RouteConnect && a.connectView.editing() {
		var cmd tea.Cmd
		a.connectView, cmd = a.connectView.handleKey(msg, a.submitPhone)
		return a, cmd
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.TabQueue):
		return a.navigate(RouteQueue)
	case key.Matches(msg, a.keys.TabNetwork):
		return a.navigate(RouteNetwork)
	case key.Matches(msg, a.keys.TabRanking):
		return a.navigate(RouteRanking)
	case key.Matches(msg, a.keys.TabConnect):
		return a.navigate(RouteConnect)

	case key.Matches(msg, a.keys.Logout):
		return a, func() tea.Msg {
			return logoutMsg{err: a.users.Logout(a.ctx)}
		}
	}

	switch a.route {
	case RouteQueue:
		return a.handleQueueKey(msg)
	case RouteNetwork:
		a.networkView = a.networkView.handleKey(msg, a.keys)
		return a, nil
	case RouteConnect:
		if msg.String() == "m" {
			return a, a.submitPreferred(nextPreferred(a.users.Profile().Preferred))
		}
		var cmd tea.Cmd
		a.connectView, cmd = a.connectView.handleKey(msg, a.submitPhone)
		return a, cmd
	case RouteRanking:
		a.rankingView = a.rankingView.handleKey(msg, a.keys)
		return a, nil
	case RouteError:
		// Any other key retries from the top.
		return a.navigate(RouteHome)
	}
	return a, nil
}

func (a App) handleQueueKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Up):
		a.queueView = a.queueView.moveCursor(-1)
		return a, nil
	case key.Matches(msg, a.keys.Down):
		a.queueView = a.queueView.moveCursor(1)
		return a, nil

	case key.Matches(msg, a.keys.Claim):
		t, ok := a.queueView.selected()
		if !ok {
			return a, nil
		}
		return a, a.mutation(func() (api.Result, error) {
			return a.queue.ClaimTicket(a.ctx, t.ID)
		})

	case key.Matches(msg, a.keys.Unclaim):
		t, ok := a.queueView.selected()
		if !ok {
			return a, nil
		}
		return a, a.mutation(func() (api.Result, error) {
			return a.queue.UnclaimTicket(a.ctx, t.ID)
		})

	case key.Matches(msg, a.keys.Resolve):
		t, ok := a.queueView.selected()
		if !ok {
			return a, nil
		}
		return a, a.mutation(func() (api.Result, error) {
			return a.queue.ResolveTicket(a.ctx, t.ID, t.Creator)
		})
	}
	return a, nil
}

func (a App) mutation(call func() (api.Result, error)) tea.Cmd {
	return func() tea.Msg {
		res, err := call()
		return mutationMsg{result: res, err: err}
	}
}

// nextPreferred cycles email -> phone -> discord -> email.
func nextPreferred(p models.PreferredContact) models.PreferredContact {
	switch p {
	case models.PreferredEmail:
		return models.PreferredPhone
	case models.PreferredPhone:
		return models.PreferredDiscord
	default:
		return models.PreferredEmail
	}
}

func (a App) submitPreferred(p models.PreferredContact) tea.Cmd {
	prof := a.users.Profile()
	update := models.UserUpdate{
		Role:      prof.Role,
		Location:  prof.Location,
		Zoomlink:  prof.Zoomlink,
		Discord:   prof.Discord,
		Preferred: p,
	}
	return func() tea.Msg {
		res, err := a.users.Update(a.ctx, update)
		if err != nil {
			return mutationMsg{result: api.Result{Message: err.Error()}}
		}
		return mutationMsg{result: res}
	}
}

func (a App) submitPhone(raw string) tea.Cmd {
	return func() tea.Msg {
		res, err := a.users.SetPhone(a.ctx, raw)
		if err != nil {
			return mutationMsg{result: api.Result{Message: err.Error()}}
		}
		return mutationMsg{result: res}
	}
}

// contentSize is the viewport available to a view under the header
// and above the status bar.
func (a App) contentSize() (int, int) {
	h := a.height - 3
	if h < 1 {
		h = 1
	}
	w := a.width
	if w < 1 {
		w = 80
	}
	return w, h
}

func (a App) View() string {
	header := a.theme.Title.Render("qstack") + "  " + a.theme.StatusBar.Render(a.routeName())

	var body string
	w, h := a.contentSize()
	switch a.route {
	case RouteHome:
		body = a.viewHome()
	case RouteQueue:
		body = a.queueView.view(a.theme, w, h)
	case RouteNetwork:
		body = a.networkView.view(a.theme, w, h)
	case RouteConnect:
		body = a.connectView.view(a.theme, a.users.Profile(), a.users.DiscordLoginURL())
	case RouteRanking:
		body = a.rankingView.view(a.theme, w, h)
	case RouteError:
		body = a.theme.Notice.Foreground(a.theme.Error).Render("something went wrong: "+a.errMsg) +
			"\n\n" + a.theme.Help.Render("press any key to go home")
	}

	statusLine := a.theme.Help.Render("1 queue · 2 network · 3 ranking · 4 connect · L logout · q quit")
	if a.notice != "" {
		statusLine = a.theme.Notice.Render(a.notice)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, statusLine)
}

func (a App) viewHome() string {
	if !a.users.LoggedIn() {
		return "Welcome to qstack.\n\n" +
			"Log in with Discord to join the help queue:\n  " +
			a.theme.Selected.Render(a.users.DiscordLoginURL())
	}
	p := a.users.Profile()
	return "Signed in as " + a.theme.Selected.Render(p.Name) + " (" + p.Role + ")\n\n" +
		"Press 1 to open the queue."
}

func (a App) routeName() string {
	switch a.route {
	case RouteQueue:
		return "queue"
	case RouteNetwork:
		return "network"
	case RouteConnect:
		return "connect"
	case RouteRanking:
		return "ranking"
	case RouteError:
		return "error"
	default:
		return "home"
	}
}

func arrivalNotice(n int) string {
	if n == 1 {
		return "1 new ticket"
	}
	return strconv.Itoa(n) + " new tickets"
}
