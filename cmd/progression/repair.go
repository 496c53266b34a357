package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	entities "github.com/KirkDiggler/guild-progression/internal/entities/progression"
	"github.com/KirkDiggler/guild-progression/internal/pkg/clock"
	dailycounter "github.com/KirkDiggler/guild-progression/internal/repositories/daily_counter"
	"github.com/KirkDiggler/guild-progression/internal/repositories/player"
)

var (
	repairGuilds []string
	repairFix    bool
	repairYes    bool
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Find stored records that can no longer be read",
	Long: `Scan player and daily counter records and list the ones that fail to decode.
With --fix, unreadable players are deleted and unreadable counters are replaced
with zeroed counters.`,
	RunE: runRepair,
}

func init() {
	repairCmd.Flags().StringSliceVar(&repairGuilds, "guild", nil, "guild ids to scan (default all)")
	repairCmd.Flags().BoolVar(&repairFix, "fix", false, "delete or reset the unreadable records")
	repairCmd.Flags().BoolVar(&repairYes, "yes", false, "do not ask for confirmation")
}

// corruptPlayer identifies one unreadable player record
type corruptPlayer struct {
	GuildID string
	DcID    string
	Err     error
}

// repairReport lists the unreadable records found by a scan
type repairReport struct {
	Checked  int
	Players  []corruptPlayer
	Counters map[string]error
}

// Empty reports whether the scan found nothing to repair
func (r *repairReport) Empty() bool {
	return len(r.Players) == 0 && len(r.Counters) == 0
}

func runRepair(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	w := cmd.OutOrStdout()
	report, err := scanRecords(ctx, a.players, a.counters, repairGuilds)
	if err != nil {
		return err
	}
	printReport(w, report)

	if report.Empty() || !repairFix {
		return nil
	}

	if !repairYes {
		fmt.Fprint(w, "\nDo you want to FIX these records? (yes/no): ")
		var response string
		_, _ = fmt.Fscanln(cmd.InOrStdin(), &response)
		if response != "yes" {
			fmt.Fprintln(w, "Aborted - no changes made")
			return nil
		}
	}

	failures := fixRecords(ctx, w, a.players, a.counters, clock.New(), report)
	if failures > 0 {
		return fmt.Errorf("%d record(s) could not be fixed", failures)
	}
	fmt.Fprintln(w, "\nCleanup complete!")
	return nil
}

// scanRecords reads every player of the given guilds (all guilds when none
// are given) and every daily counter
func scanRecords(ctx context.Context, players player.Repository, counters dailycounter.Repository, guilds []string) (*repairReport, error) {
	if len(guilds) == 0 {
		out, err := players.ListGuilds(ctx, player.ListGuildsInput{})
		if err != nil {
			return nil, fmt.Errorf("failed to list guilds: %w", err)
		}
		guilds = out.GuildIDs
	}

	report := &repairReport{Counters: map[string]error{}}

	for _, guild := range guilds {
		out, err := players.ListByGuild(ctx, player.ListByGuildInput{GuildID: guild})
		if err != nil {
			return nil, fmt.Errorf("failed to list players of guild %s: %w", guild, err)
		}
		report.Checked += len(out.Records) + len(out.Failed)
		for dcID, cause := range out.Failed {
			report.Players = append(report.Players, corruptPlayer{GuildID: guild, DcID: dcID, Err: cause})
		}
	}
	sort.Slice(report.Players, func(i, j int) bool {
		if report.Players[i].GuildID != report.Players[j].GuildID {
			return report.Players[i].GuildID < report.Players[j].GuildID
		}
		return report.Players[i].DcID < report.Players[j].DcID
	})

	out, err := counters.ListAll(ctx, dailycounter.ListAllInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list daily counters: %w", err)
	}
	report.Checked += len(out.Records) + len(out.Failed)
	for dcID, cause := range out.Failed {
		report.Counters[dcID] = cause
	}

	return report, nil
}

func printReport(w io.Writer, report *repairReport) {
	total := len(report.Players) + len(report.Counters)
	fmt.Fprintf(w, "Checked %d records, found %d corrupted entries\n", report.Checked, total)

	if report.Empty() {
		fmt.Fprintln(w, "No corrupted data found!")
		return
	}

	if len(report.Players) > 0 {
		fmt.Fprintln(w, "\nCorrupted players:")
		for _, p := range report.Players {
			fmt.Fprintf(w, "  - %s: %v\n", entities.PlayerKey(p.GuildID, p.DcID), p.Err)
		}
	}

	if len(report.Counters) > 0 {
		fmt.Fprintln(w, "\nCorrupted daily counters:")
		for _, id := range sortedKeys(report.Counters) {
			fmt.Fprintf(w, "  - %s: %v\n", id, report.Counters[id])
		}
	}
}

// fixRecords deletes unreadable players and overwrites unreadable counters
// with zeroed ones stamped now. It returns the number of failures.
func fixRecords(ctx context.Context, w io.Writer, players player.Repository, counters dailycounter.Repository, clk clock.Clock, report *repairReport) int {
	failures := 0

	for _, p := range report.Players {
		key := entities.PlayerKey(p.GuildID, p.DcID)
		if _, err := players.Delete(ctx, player.DeleteInput{GuildID: p.GuildID, DcID: p.DcID}); err != nil {
			fmt.Fprintf(w, "Failed to delete %s: %v\n", key, err)
			failures++
			continue
		}
		fmt.Fprintf(w, "Deleted %s\n", key)
	}

	now := clk.Now()
	for _, id := range sortedKeys(report.Counters) {
		c := entities.NewDailyCounter(now)
		c.SetDcID(id)
		if _, err := counters.Save(ctx, dailycounter.SaveInput{Record: c.Snapshot()}); err != nil {
			fmt.Fprintf(w, "Failed to reset %s: %v\n", id, err)
			failures++
			continue
		}
		fmt.Fprintf(w, "Reset %s\n", id)
	}

	return failures
}

func sortedKeys(m map[string]error) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
