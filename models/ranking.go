package models

import (
	"github.com/shopspring/decimal"
)

// MentorRanking is one leaderboard row. The backend stores ratings
// with a single decimal place, so the average comes across as an
// exact decimal rather than a float.
type MentorRanking struct {
	Rank               int             `json:"rank"`
	Name               string          `json:"name"`
	NumResolvedTickets int             `json:"num_resolved_tickets"`
	NumRatings         int             `json:"num_ratings"`
	AverageRating      decimal.Decimal `json:"average_rating"`
}
