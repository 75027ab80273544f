// Package metrics holds the prometheus collectors for engagement mutations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReviewsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinecore_reviews_created_total",
		Help: "Reviews successfully created.",
	})

	ReviewLikes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinecore_review_likes_total",
		Help: "Like toggles on reviews by resulting action.",
	}, []string{"action"})

	FanTheoryUpvotes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinecore_fan_theory_upvotes_total",
		Help: "Fan theory upvote attempts by result.",
	}, []string{"result"})

	PollVotes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinecore_poll_votes_total",
		Help: "Poll vote attempts by result.",
	}, []string{"result"})
)
