// Package devserver is a self-contained backend for local development:
// the same REST surface the real qstack server exposes, backed by
// redis, with pubnub fan-out on queue mutations so push-mode clients
// refresh immediately.
package devserver

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v5"
	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"qstack-client/config"
	"qstack-client/models"
	"qstack-client/security"
	"qstack-client/utils"
)

const sessionCookie = "qstack_session"

type Server struct {
	e     *echo.Echo
	srv   *http.Server
	store *Store
	cfg   *config.Config
	pn    *pubnub.PubNub
}

func New(cfg *config.Config) *Server {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})

	var pn *pubnub.PubNub
	if cfg.PubNubPublishKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey
		pn = pubnub.NewPubNub(pnConfig)
	}

	s := &Server{
		e:     echo.New(),
		store: NewStore(rdb),
		cfg:   cfg,
		pn:    pn,
	}
	s.srv = &http.Server{
		Addr:    ":" + cfg.DevPort,
		Handler: s.e,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.e.GET("/api/auth/whoami", s.whoami)
	s.e.GET("/api/auth/logout", s.logout)
	s.e.GET("/api/auth/discord/login", s.discordLogin)
	s.e.POST("/api/auth/mentor-login", s.mentorLogin)
	s.e.POST("/api/auth/set-phone", s.setPhone)
	s.e.POST("/api/auth/update-user", s.updateUser)

	limit := security.NewRateLimiter(s.store.rdb).MutationLimit(30)

	s.e.GET("/api/queue", s.tickets)
	s.e.POST("/api/queue", s.createTicket, limit)
	s.e.GET("/api/queue/claimed", s.claimed)
	s.e.POST("/api/queue/claim", s.claim, limit)
	s.e.POST("/api/queue/unclaim", s.unclaim, limit)
	s.e.POST("/api/queue/resolve", s.resolve, limit)
	s.e.POST("/api/queue/rate", s.rate, limit)
	s.e.GET("/api/queue/ranking", s.rankings)
}

func (s *Server) Start() error {
	log.Printf("dev backend listening on %s", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// publish announces a queue change. Fire-and-forget; the client's next
// poll catches anything a lost message would have carried.
func (s *Server) publish(event string, ticketID int) {
	if s.pn == nil {
		return
	}
	go s.pn.Publish().
		Channel(s.cfg.PubNubChannel).
		Message(map[string]any{
			"type": event,
			"id":   ticketID,
		}).
		Execute()
}

func (s *Server) viewer(c echo.Context) (models.UserProfile, bool) {
	cookie, err := c.Cookie(sessionCookie)
	if err != nil {
		return models.UserProfile{}, false
	}
	userID, err := s.store.SessionUser(c.Request().Context(), cookie.Value)
	if err != nil || userID == "" {
		return models.UserProfile{}, false
	}
	profile, err := s.store.User(c.Request().Context(), userID)
	if err != nil {
		return models.UserProfile{}, false
	}
	profile.LoggedIn = true
	profile.DiscordRequired = profile.Discord == ""
	profile.ContactRequired = profile.Discord == "" && profile.Phone == ""
	return profile, true
}

func (s *Server) login(c echo.Context, profile models.UserProfile) error {
	ctx := c.Request().Context()
	if err := s.store.SaveUser(ctx, profile); err != nil {
		return err
	}
	token := newToken()
	if err := s.store.CreateSession(ctx, token, profile.ID); err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
	return nil
}

func newToken() string {
	var b [16]byte
	rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func (s *Server) whoami(c echo.Context) error {
	profile, ok := s.viewer(c)
	if !ok {
		return c.JSON(http.StatusOK, models.UserProfile{LoggedIn: false})
	}
	return c.JSON(http.StatusOK, profile)
}

func (s *Server) logout(c echo.Context) error {
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		s.store.DeleteSession(c.Request().Context(), cookie.Value)
	}
	c.SetCookie(&http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	return c.NoContent(http.StatusOK)
}

// discordLogin stands in for the real OAuth flow: it signs the caller
// in as a fixed dev hacker and bounces back to the app.
func (s *Server) discordLogin(c echo.Context) error {
	profile := models.UserProfile{
		ID:    "dev-hacker",
		Name:  "Dev Hacker",
		Email: "hacker@example.com",
		Role:  models.RoleHacker,
	}
	if err := s.login(c, profile); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/")
}

func (s *Server) mentorLogin(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, map[string]any{"ok": false, "message": "invalid request"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.MentorPassHash), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusOK, map[string]any{"ok": false, "message": "wrong password"})
	}

	profile := models.UserProfile{
		ID:   "mentor-" + req.Name,
		Name: req.Name,
		Role: models.RoleMentor,
	}
	if err := s.login(c, profile); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "message": "welcome " + req.Name})
}

func (s *Server) setPhone(c echo.Context) error {
	profile, ok := s.viewer(c)
	if !ok {
		return c.JSON(http.StatusOK, map[string]any{"success": false, "error": "not logged in"})
	}
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, map[string]any{"success": false, "error": "invalid request"})
	}
	phone := utils.NormalizePhone(req.Phone)
	if !utils.ValidPhone(phone) {
		return c.JSON(http.StatusOK, map[string]any{"success": false, "error": "phone must be 10 digits"})
	}
	if err := s.store.SetPhone(c.Request().Context(), profile.ID, phone); err != nil {
		return c.JSON(http.StatusOK, map[string]any{"success": false, "error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (s *Server) updateUser(c echo.Context) error {
	profile, ok := s.viewer(c)
	if !ok {
		return c.JSON(http.StatusOK, map[string]any{"ok": false, "message": "not logged in"})
	}
	var req models.UserUpdate
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, map[string]any{"ok": false, "message": "invalid request"})
	}

	if req.Location != "" {
		profile.Location = req.Location
	}
	if req.Zoomlink != "" {
		profile.Zoomlink = req.Zoomlink
	}
	if req.Discord != "" {
		profile.Discord = req.Discord
	}
	if req.Preferred != "" {
		profile.Preferred = req.Preferred
	}
	if err := s.store.SaveUser(c.Request().Context(), profile); err != nil {
		return c.JSON(http.StatusOK, map[string]any{"ok": false, "message": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "message": "profile updated"})
}

func (s *Server) tickets(c echo.Context) error {
	tickets, err := s.store.Tickets(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusOK, map[string]any{"ok": false, "message": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "tickets": tickets})
}

func (s *Server) createTicket(c echo.Context) error {
	profile, ok := s.viewer(c)
	if !ok {
		return c.JSON(http.StatusOK, map[string]any{"ok": false, "message": "not logged in"})
	}
	var t models.Ticket
	if err := c.Bind(&t); err != nil {
		return c.JSON(http.StatusOK, map[string]any{"ok": false, "message": "invalid request"})
	}
	t.Creator = profile.Name
	t.CreatorEmail = profile.Email

	id, err := s.store.CreateTicket(c.Request().Context(), t)
	if err != nil {
		return c.JSON(http.StatusOK, map[string]any{"ok": false, "message": err.Error()})
	}
	s.publish("ticket-created", id)
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "message": "ticket created"})
}

func (s *Server) claimed(c echo.Context) error {
	profile, ok := s.viewer(c)
	if !ok {
		return c.JSON(http.StatusOK, map[string]any{"ok": false})
	}
	id, held, err := s.store.ClaimedTicket(c.Request().Context(), profile.ID)
	if err != nil {
		return c.JSON(http.StatusOK, map[string]any{"ok": false})
	}
	if !held {
		return c.JSON(http.StatusOK, map[string]any{"ok": true})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "claimed": strconv.Itoa(id)})
}

type ticketRequest struct {
	ID int `json:"id"`
}

func (s *Server) claim(c echo.Context) error {
	profile, ok := s.viewer(c)
	if !ok {
		return c.JSON(http.StatusOK, map[string]any{"ok": false, "message": "not logged in"})
	}
	var req ticketRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, map[string]any{"ok": false, "message": "invalid request"})
	}
	if err := s.store.ClaimTicket(c.Request().Context(), profile.ID, profile.Name, req.ID); err != nil {
		return c.JSON(http.StatusOK, map[string]any{"ok": false, "message": err.Error()})
	}
	s.publish("ticket-claimed", req.ID)
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "message": "ticket claimed"})
}

func (s *Server) unclaim(c echo.Context) error {
	profile, ok := s.viewer(c)
	if !ok {
		return c.JSON(http.StatusOK, map[string]any{"ok": false, "message": "not logged in"})
	}
	var req ticketRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, map[string]any{"ok": false, "message": "invalid request"})
	}
	if err := s.store.UnclaimTicket(c.Request().Context(), profile.ID, req.ID); err != nil {
		return c.JSON(http.StatusOK, map[string]any{"ok": false, "message": err.Error()})
	}
	s.publish("ticket-unclaimed", req.ID)
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "message": "ticket unclaimed"})
}

func (s *Server) resolve(c echo.Context) error {
	if _, ok := s.viewer(c); !ok {
		return c.JSON(http.StatusOK, map[string]any{"ok": false, "message": "not logged in"})
	}
	var req struct {
		ID      int    `json:"id"`
		Creator string `json:"creator"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, map[string]any{"ok": false, "message": "invalid request"})
	}
	if err := s.store.ResolveTicket(c.Request().Context(), req.ID); err != nil {
		return c.JSON(http.StatusOK, map[string]any{"ok": false, "message": err.Error()})
	}
	s.publish("ticket-resolved", req.ID)
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "message": "ticket resolved"})
}

func (s *Server) rate(c echo.Context) error {
	if _, ok := s.viewer(c); !ok {
		return c.JSON(http.StatusOK, map[string]any{"ok": false, "message": "not logged in"})
	}
	var req struct {
		MentorID string `json:"mentor_id"`
		Rating   int    `json:"rating"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, map[string]any{"ok": false, "message": "invalid request"})
	}
	if err := s.store.RateMentor(c.Request().Context(), req.MentorID, req.Rating); err != nil {
		return c.JSON(http.StatusOK, map[string]any{"ok": false, "message": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "message": "thanks for the feedback"})
}

func (s *Server) rankings(c echo.Context) error {
	rankings, err := s.store.Rankings(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusOK, []models.MentorRanking{})
	}
	return c.JSON(http.StatusOK, rankings)
}
