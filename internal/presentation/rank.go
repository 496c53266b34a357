package presentation

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/KirkDiggler/guild-progression/internal/errors"
)

// Rank names every level from Start to End inclusive
type Rank struct {
	Start int32
	End   int32
	Name  string
}

// RankTable resolves a level to a rank name
type RankTable struct {
	ranks    []Rank
	fallback string
}

// NewRankTable orders ranks by Start; fallback is used for uncovered levels
func NewRankTable(ranks []Rank, fallback string) RankTable {
	sorted := append([]Rank(nil), ranks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})
	return RankTable{ranks: sorted, fallback: fallback}
}

// ParseRanks reads a JSON object of "start-end": name
func ParseRanks(raw, fallback string) (RankTable, error) {
	entries := map[string]string{}
	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			return RankTable{}, errors.InvalidArgument("rank names must be a JSON object of \"start-end\": name")
		}
	}

	ranks := make([]Rank, 0, len(entries))
	for key, name := range entries {
		start, end, ok := strings.Cut(key, "-")
		if !ok {
			return RankTable{}, errors.InvalidArgumentf("rank range %q must look like start-end", key)
		}
		lo, err := strconv.ParseInt(strings.TrimSpace(start), 10, 32)
		if err != nil {
			return RankTable{}, errors.InvalidArgumentf("rank range %q has a bad start", key)
		}
		hi, err := strconv.ParseInt(strings.TrimSpace(end), 10, 32)
		if err != nil {
			return RankTable{}, errors.InvalidArgumentf("rank range %q has a bad end", key)
		}
		if lo > hi {
			return RankTable{}, errors.InvalidArgumentf("rank range %q ends before it starts", key)
		}
		ranks = append(ranks, Rank{Start: int32(lo), End: int32(hi), Name: name})
	}

	return NewRankTable(ranks, fallback), nil
}

// Name returns the first rank covering level, or the fallback
func (t RankTable) Name(level int32) string {
	for _, r := range t.ranks {
		if r.Start <= level && level <= r.End {
			return r.Name
		}
	}
	return t.fallback
}

// Ranks returns the ordered ranges
func (t RankTable) Ranks() []Rank {
	return append([]Rank(nil), t.ranks...)
}
