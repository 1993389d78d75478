package events

import "github.com/maxaizer/offers-bot/internal/ranking"

var OffersChangedTopic = "OffersChangedEvent"

// OffersChanged is published after any mutation of a user's offers or weights.
type OffersChanged struct {
	UserID int64
}

var RankingUpdatedTopic = "RankingUpdatedEvent"

type RankingUpdated struct {
	UserID  int64
	Ranking ranking.Ranking
}
