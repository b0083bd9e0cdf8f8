// Package storagetest holds the behaviour shared by every storage backend.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/nohumanman/descenders-modding/internal/model"
	"github.com/nohumanman/descenders-modding/internal/storage"
)

// Suite runs the common storage tests against Storage.
// Backend packages embed it and set Storage and Ctx in their SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

var submittedAt = time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)

func sampleTime(id model.TimeID) *model.TimeRecord {
	return &model.TimeRecord{
		ID:            id,
		PlayerID:      "76561198000000001",
		PlayerName:    "Alice",
		TrailName:     "Igloo Bypass",
		WorldName:     "Glaciers",
		TotalTime:     83.412,
		BikeType:      model.BikeDownhill,
		StartingSpeed: 4.5,
		Version:       "0.2.1",
		SubmittedAt:   submittedAt,
	}
}

// Allow-list tests

func (s *Suite) TestAllowListEmpty() {
	ids, err := s.Storage.GetAuthorizedIDs(s.Ctx)
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *Suite) TestAllowListAddAndRemove() {
	s.Require().NoError(s.Storage.AddAuthorizedID(s.Ctx, "u1"))
	s.Require().NoError(s.Storage.AddAuthorizedID(s.Ctx, "u2"))
	s.Require().NoError(s.Storage.AddAuthorizedID(s.Ctx, "u1"))

	ids, err := s.Storage.GetAuthorizedIDs(s.Ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]model.IdentityID{"u1", "u2"}, ids)

	s.Require().NoError(s.Storage.RemoveAuthorizedID(s.Ctx, "u1"))
	ids, err = s.Storage.GetAuthorizedIDs(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]model.IdentityID{"u2"}, ids)
}

func (s *Suite) TestAllowListRemoveMissing() {
	s.NoError(s.Storage.RemoveAuthorizedID(s.Ctx, "nobody"))
}

// Operator tests

func (s *Suite) TestSaveAndGetOperator() {
	op := &model.Operator{
		ID:          "u1",
		Username:    "nohumanman",
		Email:       "admin@example.com",
		SteamID:     "76561198000000001",
		LastLoginAt: submittedAt,
	}
	s.Require().NoError(s.Storage.SaveOperator(s.Ctx, op))

	got, err := s.Storage.GetOperator(s.Ctx, "u1")
	s.Require().NoError(err)
	s.Equal(op.Username, got.Username)
	s.Equal(op.Email, got.Email)
	s.Equal(op.SteamID, got.SteamID)
	s.True(op.LastLoginAt.Equal(got.LastLoginAt))
}

func (s *Suite) TestSaveOperatorOverwrites() {
	s.Require().NoError(s.Storage.SaveOperator(s.Ctx, &model.Operator{ID: "u1", Username: "old"}))
	s.Require().NoError(s.Storage.SaveOperator(s.Ctx, &model.Operator{ID: "u1", Username: "new"}))

	got, err := s.Storage.GetOperator(s.Ctx, "u1")
	s.Require().NoError(err)
	s.Equal("new", got.Username)
}

func (s *Suite) TestGetOperatorNotFound() {
	_, err := s.Storage.GetOperator(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrOperatorNotFound)
}

// Time record tests

func (s *Suite) TestSaveAndGetTime() {
	rec := sampleTime("t1")
	s.Require().NoError(s.Storage.SaveTime(s.Ctx, rec))

	got, err := s.Storage.GetTime(s.Ctx, "t1")
	s.Require().NoError(err)
	s.Equal(rec.PlayerID, got.PlayerID)
	s.Equal(rec.PlayerName, got.PlayerName)
	s.Equal(rec.TrailName, got.TrailName)
	s.Equal(rec.WorldName, got.WorldName)
	s.InDelta(rec.TotalTime, got.TotalTime, 1e-9)
	s.Equal(rec.BikeType, got.BikeType)
	s.InDelta(rec.StartingSpeed, got.StartingSpeed, 1e-9)
	s.Equal(rec.Version, got.Version)
	s.False(got.Verified)
	s.False(got.Ignored)
	s.True(rec.SubmittedAt.Equal(got.SubmittedAt))
	s.True(got.VerifiedAt.IsZero())
}

func (s *Suite) TestGetTimeNotFound() {
	_, err := s.Storage.GetTime(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrTimeNotFound)
}

func (s *Suite) TestSetTimeVerified() {
	s.Require().NoError(s.Storage.SaveTime(s.Ctx, sampleTime("t1")))
	at := submittedAt.Add(time.Hour)

	s.Require().NoError(s.Storage.SetTimeVerified(s.Ctx, "t1", at))

	got, err := s.Storage.GetTime(s.Ctx, "t1")
	s.Require().NoError(err)
	s.True(got.Verified)
	s.True(at.Equal(got.VerifiedAt))
}

func (s *Suite) TestSetTimeVerifiedNotFound() {
	err := s.Storage.SetTimeVerified(s.Ctx, "missing", submittedAt)
	s.ErrorIs(err, model.ErrTimeNotFound)
}

func (s *Suite) TestSetTimeIgnored() {
	s.Require().NoError(s.Storage.SaveTime(s.Ctx, sampleTime("t1")))

	s.Require().NoError(s.Storage.SetTimeIgnored(s.Ctx, "t1", true))
	got, err := s.Storage.GetTime(s.Ctx, "t1")
	s.Require().NoError(err)
	s.True(got.Ignored)

	s.Require().NoError(s.Storage.SetTimeIgnored(s.Ctx, "t1", false))
	got, err = s.Storage.GetTime(s.Ctx, "t1")
	s.Require().NoError(err)
	s.False(got.Ignored)
}

func (s *Suite) TestSetTimeIgnoredNotFound() {
	err := s.Storage.SetTimeIgnored(s.Ctx, "missing", true)
	s.ErrorIs(err, model.ErrTimeNotFound)
}

func (s *Suite) TestReturnedTimeIsACopy() {
	s.Require().NoError(s.Storage.SaveTime(s.Ctx, sampleTime("t1")))

	got, err := s.Storage.GetTime(s.Ctx, "t1")
	s.Require().NoError(err)
	got.Verified = true

	again, err := s.Storage.GetTime(s.Ctx, "t1")
	s.Require().NoError(err)
	s.False(again.Verified)
}

// Leaderboard and listing tests

func run(id model.TimeID, player model.PlayerID, trail, world string, total float64, offset time.Duration) *model.TimeRecord {
	rec := sampleTime(id)
	rec.PlayerID = player
	rec.PlayerName = string(player)
	rec.TrailName = trail
	rec.WorldName = world
	rec.TotalTime = total
	rec.SubmittedAt = submittedAt.Add(offset)
	return rec
}

func (s *Suite) saveRuns(recs ...*model.TimeRecord) {
	for _, rec := range recs {
		s.Require().NoError(s.Storage.SaveTime(s.Ctx, rec))
	}
}

func timeIDs(recs []model.TimeRecord) []model.TimeID {
	ids := make([]model.TimeID, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
	}
	return ids
}

func (s *Suite) TestLeaderboardEmpty() {
	recs, err := s.Storage.GetLeaderboard(s.Ctx, "Igloo Bypass", 10)
	s.Require().NoError(err)
	s.Empty(recs)
}

func (s *Suite) TestLeaderboardBestRunPerPlayerFastestFirst() {
	s.saveRuns(
		run("a1", "alice", "Igloo Bypass", "Glaciers", 90.0, 0),
		run("a2", "alice", "Igloo Bypass", "Glaciers", 84.5, time.Minute),
		run("b1", "bob", "Igloo Bypass", "Glaciers", 86.0, 2*time.Minute),
		run("c1", "carol", "Igloo Bypass", "Glaciers", 81.2, 3*time.Minute),
		run("x1", "carol", "Ridge Run", "Highlands", 50.0, 4*time.Minute),
	)

	recs, err := s.Storage.GetLeaderboard(s.Ctx, "Igloo Bypass", 0)
	s.Require().NoError(err)
	s.Equal([]model.TimeID{"c1", "a2", "b1"}, timeIDs(recs))
	s.Equal("Igloo Bypass", recs[0].TrailName)
}

func (s *Suite) TestLeaderboardLimit() {
	s.saveRuns(
		run("a1", "alice", "Igloo Bypass", "Glaciers", 84.0, 0),
		run("b1", "bob", "Igloo Bypass", "Glaciers", 86.0, 0),
		run("c1", "carol", "Igloo Bypass", "Glaciers", 81.0, 0),
	)

	recs, err := s.Storage.GetLeaderboard(s.Ctx, "Igloo Bypass", 2)
	s.Require().NoError(err)
	s.Equal([]model.TimeID{"c1", "a1"}, timeIDs(recs))
}

func (s *Suite) TestLeaderboardTiesGoToEarlierRun() {
	s.saveRuns(
		run("late", "bob", "Igloo Bypass", "Glaciers", 84.0, time.Hour),
		run("early", "alice", "Igloo Bypass", "Glaciers", 84.0, 0),
	)

	recs, err := s.Storage.GetLeaderboard(s.Ctx, "Igloo Bypass", 0)
	s.Require().NoError(err)
	s.Equal([]model.TimeID{"early", "late"}, timeIDs(recs))
}

func (s *Suite) TestIgnoredRunDropsOutOfLeaderboard() {
	s.saveRuns(
		run("a1", "alice", "Igloo Bypass", "Glaciers", 90.0, 0),
		run("a2", "alice", "Igloo Bypass", "Glaciers", 70.0, time.Minute),
		run("b1", "bob", "Igloo Bypass", "Glaciers", 80.0, 2*time.Minute),
	)

	s.Require().NoError(s.Storage.SetTimeIgnored(s.Ctx, "a2", true))
	recs, err := s.Storage.GetLeaderboard(s.Ctx, "Igloo Bypass", 0)
	s.Require().NoError(err)
	s.Equal([]model.TimeID{"b1", "a1"}, timeIDs(recs))

	s.Require().NoError(s.Storage.SetTimeIgnored(s.Ctx, "a2", false))
	recs, err = s.Storage.GetLeaderboard(s.Ctx, "Igloo Bypass", 0)
	s.Require().NoError(err)
	s.Equal([]model.TimeID{"a2", "b1"}, timeIDs(recs))
}

func (s *Suite) TestRecentTimesNewestFirst() {
	s.saveRuns(
		run("t1", "alice", "Igloo Bypass", "Glaciers", 90.0, 0),
		run("t3", "bob", "Ridge Run", "Highlands", 50.0, 2*time.Minute),
		run("t2", "carol", "Igloo Bypass", "Glaciers", 80.0, time.Minute),
	)
	s.Require().NoError(s.Storage.SetTimeIgnored(s.Ctx, "t2", true))

	recs, err := s.Storage.GetRecentTimes(s.Ctx, 0)
	s.Require().NoError(err)
	s.Equal([]model.TimeID{"t3", "t2", "t1"}, timeIDs(recs))
	s.True(recs[1].Ignored)

	recs, err = s.Storage.GetRecentTimes(s.Ctx, 2)
	s.Require().NoError(err)
	s.Equal([]model.TimeID{"t3", "t2"}, timeIDs(recs))
}

func (s *Suite) TestTrailsAndWorldsAreDistinctAndSorted() {
	trails, err := s.Storage.GetTrails(s.Ctx)
	s.Require().NoError(err)
	s.Empty(trails)

	s.saveRuns(
		run("t1", "alice", "Ridge Run", "Highlands", 50.0, 0),
		run("t2", "bob", "Igloo Bypass", "Glaciers", 80.0, 0),
		run("t3", "carol", "Igloo Bypass", "Glaciers", 82.0, 0),
		run("t4", "dave", "", "", 60.0, 0),
	)

	trails, err = s.Storage.GetTrails(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]string{"Igloo Bypass", "Ridge Run"}, trails)

	worlds, err := s.Storage.GetWorlds(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]string{"Glaciers", "Highlands"}, worlds)
}
