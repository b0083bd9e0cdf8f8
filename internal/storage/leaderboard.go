package storage

import (
	"sort"

	"github.com/nohumanman/descenders-modding/internal/model"
)

// RankLeaderboard keeps each player's best run on trail that is not ignored,
// ordered fastest first. Equal times go to the earlier submission.
func RankLeaderboard(recs []model.TimeRecord, trail string, limit int) []model.TimeRecord {
	best := make(map[model.PlayerID]model.TimeRecord)
	for _, rec := range recs {
		if rec.Ignored || rec.TrailName != trail {
			continue
		}
		if cur, ok := best[rec.PlayerID]; !ok || runLess(rec, cur) {
			best[rec.PlayerID] = rec
		}
	}

	ranked := make([]model.TimeRecord, 0, len(best))
	for _, rec := range best {
		ranked = append(ranked, rec)
	}
	sort.Slice(ranked, func(i, j int) bool { return runLess(ranked[i], ranked[j]) })
	return truncate(ranked, limit)
}

// SortRecent orders runs newest first
func SortRecent(recs []model.TimeRecord, limit int) []model.TimeRecord {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].SubmittedAt.Equal(recs[j].SubmittedAt) {
			return recs[i].SubmittedAt.After(recs[j].SubmittedAt)
		}
		return recs[i].ID > recs[j].ID
	})
	return truncate(recs, limit)
}

func runLess(a, b model.TimeRecord) bool {
	if a.TotalTime != b.TotalTime {
		return a.TotalTime < b.TotalTime
	}
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.SubmittedAt.Before(b.SubmittedAt)
	}
	return a.ID < b.ID
}

func truncate(recs []model.TimeRecord, limit int) []model.TimeRecord {
	if limit > 0 && len(recs) > limit {
		return recs[:limit]
	}
	return recs
}
