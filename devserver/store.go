package devserver

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"qstack-client/models"
)

// Store keeps all dev backend state in redis so restarts keep the
// queue. Tickets are hashes keyed by a sequence id, claims are one key
// per mentor, and resolved counts feed the ranking.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func ticketKey(id int) string { return fmt.Sprintf("ticket:%d", id) }

func claimKey(userID string) string { return fmt.Sprintf("claim:%s", userID) }

func statsKey(mentorID string) string { return fmt.Sprintf("mentor:stats:%s", mentorID) }

func sessionKey(token string) string { return fmt.Sprintf("session:%s", token) }

func userKey(id string) string { return fmt.Sprintf("user:%s", id) }

func (s *Store) CreateTicket(ctx context.Context, t models.Ticket) (int, error) {
	id, err := s.rdb.Incr(ctx, "ticket:seq").Result()
	if err != nil {
		return 0, err
	}
	t.ID = int(id)
	t.Active = true
	t.Status = models.TicketOpen
	t.CreatedAt = time.Now().UTC()

	if err := s.writeTicket(ctx, t); err != nil {
		return 0, err
	}
	if err := s.rdb.SAdd(ctx, "ticket:ids", t.ID).Err(); err != nil {
		return 0, err
	}
	return t.ID, nil
}

func (s *Store) writeTicket(ctx context.Context, t models.Ticket) error {
	return s.rdb.HSet(ctx, ticketKey(t.ID), map[string]any{
		"question":      t.Question,
		"content":       t.Content,
		"tags":          strings.Join(t.Tags, ","),
		"location":      t.Location,
		"creator":       t.Creator,
		"creator_email": t.CreatorEmail,
		"email":         t.Email,
		"phone":         t.Phone,
		"discord":       t.Discord,
		"preferred":     string(t.Preferred),
		"active":        strconv.FormatBool(t.Active),
		"status":        t.Status,
		"created_at":    t.CreatedAt.Format(time.RFC3339Nano),
		"mentor_id":     t.MentorID,
		"mentor_name":   t.MentorName,
	}).Err()
}

func (s *Store) Ticket(ctx context.Context, id int) (models.Ticket, error) {
	fields, err := s.rdb.HGetAll(ctx, ticketKey(id)).Result()
	if err != nil {
		return models.Ticket{}, err
	}
	if len(fields) == 0 {
		return models.Ticket{}, fmt.Errorf("ticket %d not found", id)
	}
	return ticketFromFields(id, fields), nil
}

func ticketFromFields(id int, fields map[string]string) models.Ticket {
	active, _ := strconv.ParseBool(fields["active"])
	createdAt, _ := time.Parse(time.RFC3339Nano, fields["created_at"])
	var tags []string
	if fields["tags"] != "" {
		tags = strings.Split(fields["tags"], ",")
	}
	return models.Ticket{
		ID:           id,
		Question:     fields["question"],
		Content:      fields["content"],
		Tags:         tags,
		Location:     fields["location"],
		Creator:      fields["creator"],
		CreatorEmail: fields["creator_email"],
		Email:        fields["email"],
		Phone:        fields["phone"],
		Discord:      fields["discord"],
		Preferred:    models.PreferredContact(fields["preferred"]),
		Active:       active,
		Status:       fields["status"],
		CreatedAt:    createdAt,
		MentorID:     fields["mentor_id"],
		MentorName:   fields["mentor_name"],
	}
}

func (s *Store) Tickets(ctx context.Context) ([]models.Ticket, error) {
	ids, err := s.rdb.SMembers(ctx, "ticket:ids").Result()
	if err != nil {
		return nil, err
	}

	tickets := make([]models.Ticket, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		t, err := s.Ticket(ctx, id)
		if err != nil {
			continue
		}
		tickets = append(tickets, t)
	}
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.Before(tickets[j].CreatedAt)
	})
	return tickets, nil
}

// ClaimTicket assigns the ticket to the mentor. One claim per mentor;
// a ticket already held by someone else cannot be taken over.
func (s *Store) ClaimTicket(ctx context.Context, mentorID, mentorName string, id int) error {
	if _, ok, err := s.ClaimedTicket(ctx, mentorID); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("you already have a claimed ticket")
	}

	t, err := s.Ticket(ctx, id)
	if err != nil {
		return err
	}
	if t.MentorID != "" && t.MentorID != mentorID {
		return fmt.Errorf("ticket is already claimed by %s", t.MentorName)
	}

	t.MentorID = mentorID
	t.MentorName = mentorName
	t.Status = models.TicketClaimed
	if err := s.writeTicket(ctx, t); err != nil {
		return err
	}
	return s.rdb.Set(ctx, claimKey(mentorID), id, 0).Err()
}

func (s *Store) UnclaimTicket(ctx context.Context, mentorID string, id int) error {
	t, err := s.Ticket(ctx, id)
	if err != nil {
		return err
	}
	if t.MentorID != mentorID {
		return fmt.Errorf("ticket is not claimed by you")
	}

	t.MentorID = ""
	t.MentorName = ""
	t.Status = models.TicketOpen
	if err := s.writeTicket(ctx, t); err != nil {
		return err
	}
	return s.rdb.Del(ctx, claimKey(mentorID)).Err()
}

// ResolveTicket closes the ticket. The mentor attribution stays on the
// ticket so the network view can draw the resolved link.
func (s *Store) ResolveTicket(ctx context.Context, id int) error {
	t, err := s.Ticket(ctx, id)
	if err != nil {
		return err
	}

	t.Status = models.TicketResolved
	t.Active = false
	if err := s.writeTicket(ctx, t); err != nil {
		return err
	}

	if t.MentorID != "" {
		if err := s.rdb.Del(ctx, claimKey(t.MentorID)).Err(); err != nil {
			return err
		}
		if err := s.rdb.HIncrBy(ctx, statsKey(t.MentorID), "resolved", 1).Err(); err != nil {
			return err
		}
		if err := s.rdb.HSet(ctx, statsKey(t.MentorID), "name", t.MentorName).Err(); err != nil {
			return err
		}
		if err := s.rdb.SAdd(ctx, "mentor:ids", t.MentorID).Err(); err != nil {
			return err
		}
	}
	return nil
}

// ClaimedTicket reports which ticket the mentor currently holds.
func (s *Store) ClaimedTicket(ctx context.Context, mentorID string) (int, bool, error) {
	id, err := s.rdb.Get(ctx, claimKey(mentorID)).Int()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// RateMentor records a creator's rating of a resolution, 1 to 5.
func (s *Store) RateMentor(ctx context.Context, mentorID string, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	if err := s.rdb.HIncrBy(ctx, statsKey(mentorID), "ratings", 1).Err(); err != nil {
		return err
	}
	return s.rdb.HIncrBy(ctx, statsKey(mentorID), "rating_total", int64(rating)).Err()
}

// Rankings orders mentors by resolved tickets, then average rating.
func (s *Store) Rankings(ctx context.Context) ([]models.MentorRanking, error) {
	ids, err := s.rdb.SMembers(ctx, "mentor:ids").Result()
	if err != nil {
		return nil, err
	}

	rankings := make([]models.MentorRanking, 0, len(ids))
	for _, id := range ids {
		fields, err := s.rdb.HGetAll(ctx, statsKey(id)).Result()
		if err != nil || len(fields) == 0 {
			continue
		}
		resolved, _ := strconv.Atoi(fields["resolved"])
		ratings, _ := strconv.Atoi(fields["ratings"])
		total, _ := strconv.Atoi(fields["rating_total"])

		avg := decimal.Zero
		if ratings > 0 {
			avg = decimal.NewFromInt(int64(total)).
				Div(decimal.NewFromInt(int64(ratings))).
				Round(2)
		}
		rankings = append(rankings, models.MentorRanking{
			Name:               fields["name"],
			NumResolvedTickets: resolved,
			NumRatings:         ratings,
			AverageRating:      avg,
		})
	}

	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].NumResolvedTickets != rankings[j].NumResolvedTickets {
			return rankings[i].NumResolvedTickets > rankings[j].NumResolvedTickets
		}
		return rankings[i].AverageRating.GreaterThan(rankings[j].AverageRating)
	})
	for i := range rankings {
		rankings[i].Rank = i + 1
	}
	return rankings, nil
}

func (s *Store) SaveUser(ctx context.Context, p models.UserProfile) error {
	return s.rdb.HSet(ctx, userKey(p.ID), map[string]any{
		"name":      p.Name,
		"email":     p.Email,
		"role":      p.Role,
		"location":  p.Location,
		"zoomlink":  p.Zoomlink,
		"discord":   p.Discord,
		"phone":     p.Phone,
		"preferred": string(p.Preferred),
	}).Err()
}

func (s *Store) User(ctx context.Context, id string) (models.UserProfile, error) {
	fields, err := s.rdb.HGetAll(ctx, userKey(id)).Result()
	if err != nil {
		return models.UserProfile{}, err
	}
	if len(fields) == 0 {
		return models.UserProfile{}, fmt.Errorf("user %s not found", id)
	}
	return models.UserProfile{
		ID:        id,
		Name:      fields["name"],
		Email:     fields["email"],
		Role:      fields["role"],
		Location:  fields["location"],
		Zoomlink:  fields["zoomlink"],
		Discord:   fields["discord"],
		Phone:     fields["phone"],
		Preferred: models.PreferredContact(fields["preferred"]),
	}, nil
}

func (s *Store) SetPhone(ctx context.Context, id, phone string) error {
	return s.rdb.HSet(ctx, userKey(id), "phone", phone).Err()
}

const sessionTTL = 24 * time.Hour

func (s *Store) CreateSession(ctx context.Context, token, userID string) error {
	return s.rdb.Set(ctx, sessionKey(token), userID, sessionTTL).Err()
}

func (s *Store) SessionUser(ctx context.Context, token string) (string, error) {
	id, err := s.rdb.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return id, err
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, sessionKey(token)).Err()
}
