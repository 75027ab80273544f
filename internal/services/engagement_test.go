package services

import (
	"context"
	"strings"
	"testing"

	"cinecore/internal/apperr"
	"cinecore/internal/db/dbtest"
	"cinecore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeToggle(t *testing.T) {
	d, svc := newTestServices(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, d, "alice")
	bob := dbtest.CreateUser(t, d, "bob")
	movie := dbtest.CreateMovie(t, d, "Arrival")
	review, err := svc.Reviews.Create(ctx, alice.ID, movieRef(movie), CreateReviewInput{Body: "x", Rating: 4})
	require.NoError(t, err)

	res, err := svc.Likes.Toggle(ctx, review.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: true, LikeCount: 1}, *res)

	liked, err := svc.Likes.IsLiked(ctx, review.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	res, err = svc.Likes.Toggle(ctx, review.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeResult{Liked: false, LikeCount: 0}, *res)

	// two toggles leave the original state
	_, err = svc.Likes.Toggle(ctx, review.ID, alice.ID)
	require.NoError(t, err)
	_, err = svc.Likes.Toggle(ctx, review.ID, bob.ID)
	require.NoError(t, err)
	got, err := svc.Reviews.Get(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.LikeCount)

	_, err = svc.Likes.Toggle(ctx, 999, bob.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	other, err := svc.Reviews.Create(ctx, bob.ID, movieRef(movie), CreateReviewInput{Body: "y", Rating: 2})
	require.NoError(t, err)
	views := []ReviewView{*got, *other}
	require.NoError(t, svc.Likes.MarkLiked(ctx, bob.ID, views))
	assert.True(t, views[0].LikedByMe)
	assert.False(t, views[1].LikedByMe)

	require.NoError(t, svc.Likes.MarkLiked(ctx, 0, views))
}

func TestFanTheoryUpvoteCap(t *testing.T) {
	d, svc := newTestServices(t)
	ctx := context.Background()
	author := dbtest.CreateUser(t, d, "author")
	fan := dbtest.CreateUser(t, d, "fan")
	movie := dbtest.CreateMovie(t, d, "Inception")

	theory, err := svc.Theories.Create(ctx, movie.ID, author.ID, "The top keeps spinning")
	require.NoError(t, err)
	assert.Zero(t, theory.Upvotes)

	for i := 1; i <= models.MaxTheoryPoints; i++ {
		res, err := svc.Theories.Upvote(ctx, theory.ID, fan.ID)
		require.NoError(t, err)
		assert.Equal(t, i, res.Upvotes)
		assert.Equal(t, i, res.Points)
	}

	res, err := svc.Theories.Upvote(ctx, theory.ID, fan.ID)
	assert.ErrorIs(t, err, apperr.ErrLimitReached)
	require.NotNil(t, res)
	assert.Equal(t, models.MaxTheoryPoints, res.Upvotes)

	var vote models.FanTheoryVote
	require.NoError(t, d.Where("theory_id = ? AND user_id = ?", theory.ID, fan.ID).First(&vote).Error)
	assert.Equal(t, models.MaxTheoryPoints, vote.Points)

	for i := 0; i < models.MaxTheoryPoints; i++ {
		_, err := svc.Theories.Upvote(ctx, theory.ID, author.ID)
		require.NoError(t, err)
	}
	got, err := svc.Theories.Get(ctx, theory.ID)
	require.NoError(t, err)
	assert.Equal(t, 2*models.MaxTheoryPoints, got.Upvotes)

	var sum int
	require.NoError(t, d.Model(&models.FanTheoryVote{}).Where("theory_id = ?", theory.ID).Select("SUM(points)").Scan(&sum).Error)
	assert.Equal(t, got.Upvotes, sum)
}

func TestFanTheoryCreateAndDelete(t *testing.T) {
	d, svc := newTestServices(t)
	ctx := context.Background()
	author := dbtest.CreateUser(t, d, "author")
	other := dbtest.CreateUser(t, d, "other")
	movie := dbtest.CreateMovie(t, d, "Inception")

	_, err := svc.Theories.Create(ctx, movie.ID, author.ID, strings.Repeat("x", 201))
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Theories.Create(ctx, 999, author.ID, "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	low, err := svc.Theories.Create(ctx, movie.ID, author.ID, "It was all a dream")
	require.NoError(t, err)
	high, err := svc.Theories.Create(ctx, movie.ID, author.ID, "Cobb is the mark")
	require.NoError(t, err)
	_, err = svc.Theories.Upvote(ctx, high.ID, other.ID)
	require.NoError(t, err)

	list, err := svc.Theories.List(ctx, movie.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, high.ID, list[0].ID)

	assert.ErrorIs(t, svc.Theories.Delete(ctx, high.ID, other.ID), apperr.ErrForbidden)
	require.NoError(t, svc.Theories.Delete(ctx, high.ID, author.ID))

	var votes int64
	require.NoError(t, d.Model(&models.FanTheoryVote{}).Count(&votes).Error)
	assert.Zero(t, votes)

	_, err = svc.Theories.Upvote(ctx, high.ID, other.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.Theories.Get(ctx, low.ID)
	assert.NoError(t, err)
}

func TestPollVote(t *testing.T) {
	d, svc := newTestServices(t)
	ctx := context.Background()
	creator := dbtest.CreateUser(t, d, "creator")
	voter := dbtest.CreateUser(t, d, "voter")
	movie := dbtest.CreateMovie(t, d, "Heat")

	poll, err := svc.Polls.Create(ctx, movie.ID, creator.ID, CreatePollInput{Question: "Best scene?", Options: []string{"Diner", "Bank"}})
	require.NoError(t, err)
	require.Len(t, poll.Options, 2)
	other, err := svc.Polls.Create(ctx, movie.ID, creator.ID, CreatePollInput{Question: "Ending?", Options: []string{"Airport", "Street"}})
	require.NoError(t, err)

	_, err = svc.Polls.Vote(ctx, 999, poll.Options[0].ID, voter.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Polls.Vote(ctx, poll.ID, 0, voter.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// option from another poll
	_, err = svc.Polls.Vote(ctx, poll.ID, other.Options[0].ID, voter.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	res, err := svc.Polls.Vote(ctx, poll.ID, poll.Options[1].ID, voter.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Votes)

	_, err = svc.Polls.Vote(ctx, poll.ID, poll.Options[0].ID, voter.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	got, err := svc.Polls.Get(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Options[0].Votes)
	assert.Equal(t, 1, got.Options[1].Votes)
	assert.Equal(t, 1, got.TotalVotes)

	var votes int64
	require.NoError(t, d.Model(&models.PollVote{}).Where("poll_id = ?", poll.ID).Count(&votes).Error)
	assert.Equal(t, int64(got.TotalVotes), votes)
}

func TestPollCreateValidation(t *testing.T) {
	d, svc := newTestServices(t)
	ctx := context.Background()
	creator := dbtest.CreateUser(t, d, "creator")
	movie := dbtest.CreateMovie(t, d, "Heat")

	_, err := svc.Polls.Create(ctx, movie.ID, creator.ID, CreatePollInput{Question: "Q", Options: []string{"only"}})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Polls.Create(ctx, movie.ID, creator.ID, CreatePollInput{Question: " ", Options: []string{"a", "b"}})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Polls.Create(ctx, 999, creator.ID, CreatePollInput{Question: "Q", Options: []string{"a", "b"}})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPollUpdateIsAdditive(t *testing.T) {
	d, svc := newTestServices(t)
	ctx := context.Background()
	creator := dbtest.CreateUser(t, d, "creator")
	voter := dbtest.CreateUser(t, d, "voter")
	late := dbtest.CreateUser(t, d, "late")
	movie := dbtest.CreateMovie(t, d, "Heat")

	poll, err := svc.Polls.Create(ctx, movie.ID, creator.ID, CreatePollInput{Question: "Best scene?", Options: []string{"Diner", "Bank"}})
	require.NoError(t, err)
	diner, bank := poll.Options[0].ID, poll.Options[1].ID
	_, err = svc.Polls.Vote(ctx, poll.ID, diner, voter.ID)
	require.NoError(t, err)

	_, err = svc.Polls.Update(ctx, poll.ID, voter.ID, UpdatePollInput{AddOptions: []string{"Airport"}})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	updated, err := svc.Polls.Update(ctx, poll.ID, creator.ID, UpdatePollInput{AddOptions: []string{"Airport"}, RetireOptions: []uint{diner}})
	require.NoError(t, err)
	require.Len(t, updated.Options, 3)
	assert.True(t, updated.Options[0].Retired)
	assert.Equal(t, 1, updated.Options[0].Votes)
	assert.Equal(t, "Airport", updated.Options[2].OptionText)
	assert.Equal(t, 1, updated.TotalVotes)

	_, err = svc.Polls.Vote(ctx, poll.ID, diner, late.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.Polls.Vote(ctx, poll.ID, updated.Options[2].ID, late.ID)
	require.NoError(t, err)

	_, err = svc.Polls.Update(ctx, poll.ID, creator.ID, UpdatePollInput{RetireOptions: []uint{bank, updated.Options[2].ID}})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Polls.Update(ctx, poll.ID, creator.ID, UpdatePollInput{RetireOptions: []uint{9999}})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	q := "Greatest scene?"
	renamed, err := svc.Polls.Update(ctx, poll.ID, creator.ID, UpdatePollInput{Question: &q})
	require.NoError(t, err)
	assert.Equal(t, q, renamed.Question)
	assert.Equal(t, 2, renamed.TotalVotes)
}
