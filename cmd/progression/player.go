package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	entities "github.com/KirkDiggler/guild-progression/internal/entities/progression"
	"github.com/KirkDiggler/guild-progression/internal/orchestrators/progression"
	"github.com/KirkDiggler/guild-progression/internal/presentation"
)

var (
	guildID string
	dcID    string
	dcTag   string

	expAmount      int64
	currencyCode   string
	currencyAmount int64
	taskID         string
	rewardTier     string
	roleName       string
	boardLimit     int32
)

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "Inspect and change player progression",
}

var playerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a player's profile card",
	RunE:  runPlayerShow,
}

var grantExpCmd = &cobra.Command{
	Use:   "grant-exp",
	Short: "Add (or with a negative amount remove) experience",
	RunE:  runGrantExp,
}

var currencyCmd = &cobra.Command{
	Use:   "currency",
	Short: "Change a currency balance by a signed amount",
	RunE:  runCurrency,
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage the player's task slot",
}

var taskAcceptCmd = &cobra.Command{
	Use:   "accept",
	Short: "Assign a task to the empty slot",
	RunE:  runTaskAccept,
}

var taskCompleteCmd = &cobra.Command{
	Use:   "complete",
	Short: "Complete the active task and pay its reward",
	RunE:  runTaskComplete,
}

var taskAbandonCmd = &cobra.Command{
	Use:   "abandon",
	Short: "Drop the active task without a reward",
	RunE:  runTaskAbandon,
}

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Change the player's role",
	RunE:  runRole,
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Rank a guild's players by experience",
	RunE:  runLeaderboard,
}

func init() {
	playerCmd.PersistentFlags().StringVar(&guildID, "guild", "", "guild id")
	playerCmd.PersistentFlags().StringVar(&dcID, "dc", "", "participant id")
	playerCmd.PersistentFlags().StringVar(&dcTag, "tag", "", "participant display tag")
	_ = playerCmd.MarkPersistentFlagRequired("guild")

	grantExpCmd.Flags().Int64Var(&expAmount, "amount", 0, "experience delta")
	currencyCmd.Flags().StringVar(&currencyCode, "code", string(entities.CurrencySilverCoin), "currency code")
	currencyCmd.Flags().Int64Var(&currencyAmount, "amount", 0, "balance delta")
	taskAcceptCmd.Flags().StringVar(&taskID, "id", "", "task id")
	_ = taskAcceptCmd.MarkFlagRequired("id")
	taskCompleteCmd.Flags().StringVar(&rewardTier, "tier", string(entities.RewardNormal), "reward tier")
	roleCmd.Flags().StringVar(&roleName, "role", "", "super-admin, admin, premium-member or member")
	_ = roleCmd.MarkFlagRequired("role")
	leaderboardCmd.Flags().Int32Var(&boardLimit, "limit", progression.DefaultLeaderboardLimit, "number of entries")

	taskCmd.AddCommand(taskAcceptCmd)
	taskCmd.AddCommand(taskCompleteCmd)
	taskCmd.AddCommand(taskAbandonCmd)

	playerCmd.AddCommand(playerShowCmd)
	playerCmd.AddCommand(grantExpCmd)
	playerCmd.AddCommand(currencyCmd)
	playerCmd.AddCommand(taskCmd)
	playerCmd.AddCommand(roleCmd)
	playerCmd.AddCommand(leaderboardCmd)
}

func runPlayerShow(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.progression.GetProfile(cmd.Context(), &progression.GetProfileInput{
		GuildID: guildID,
		DcID:    dcID,
	})
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	var renderer presentation.Renderer = presentation.TextRenderer{}
	return renderer.Render(cmd.OutOrStdout(), out.Profile)
}

func runGrantExp(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.progression.GrantExperience(cmd.Context(), &progression.GrantExperienceInput{
		GuildID: guildID,
		DcID:    dcID,
		DcTag:   dcTag,
		Amount:  expAmount,
	})
	if err != nil {
		return fmt.Errorf("failed to grant experience: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exp: %d, Level: %d\n", out.Player.Exp(), out.Player.Level())
	if out.LevelsGained > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Leveled up %d time(s)\n", out.LevelsGained)
	}
	return nil
}

func runCurrency(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.progression.UpdateCurrency(cmd.Context(), &progression.UpdateCurrencyInput{
		GuildID:  guildID,
		DcID:     dcID,
		Currency: entities.Currency(currencyCode),
		Amount:   currencyAmount,
	})
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", currencyCode, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", currencyCode, out.Balance)
	return nil
}

func runTaskAccept(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.progression.AcceptTask(cmd.Context(), &progression.AcceptTaskInput{
		GuildID: guildID,
		DcID:    dcID,
		TaskID:  taskID,
	}); err != nil {
		return fmt.Errorf("failed to accept task: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Accepted task %s\n", taskID)
	return nil
}

func runTaskComplete(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.progression.CompleteTask(cmd.Context(), &progression.CompleteTaskInput{
		GuildID: guildID,
		DcID:    dcID,
		Tier:    entities.RewardTier(strings.ToUpper(rewardTier)),
	})
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Completed task %s: +%d exp, +%d %s\n",
		out.TaskID, out.ExpAwarded, out.CoinsAwarded, entities.CurrencySilverCoin)
	if out.LevelsGained > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Leveled up %d time(s), now level %d\n", out.LevelsGained, out.Player.Level())
	}
	return nil
}

func runTaskAbandon(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.progression.AbandonTask(cmd.Context(), &progression.AbandonTaskInput{
		GuildID: guildID,
		DcID:    dcID,
	})
	if err != nil {
		return fmt.Errorf("failed to abandon task: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Abandoned task %s\n", out.TaskID)
	return nil
}

func runRole(cmd *cobra.Command, _ []string) error {
	role, err := parseRole(roleName)
	if err != nil {
		return err
	}

	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.progression.UpdateRole(cmd.Context(), &progression.UpdateRoleInput{
		GuildID: guildID,
		DcID:    dcID,
		Role:    role,
	})
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Role: %s\n", out.Player.Role)
	return nil
}

func runLeaderboard(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.progression.Leaderboard(cmd.Context(), &progression.LeaderboardInput{
		GuildID: guildID,
		Limit:   boardLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to build leaderboard: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tPLAYER\tLEVEL\tEXP")
	for _, e := range out.Entries {
		name := e.DcTag
		if name == "" {
			name = e.DcID
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", e.Position, name, e.Level, e.Exp)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if out.Skipped > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d unreadable record(s) skipped; run repair to list them\n", out.Skipped)
	}
	return nil
}

var roleFlags = map[string]entities.Role{
	"super-admin":    entities.RoleSuperAdmin,
	"admin":          entities.RoleAdmin,
	"premium-member": entities.RolePremiumMember,
	"member":         entities.RoleMember,
}

func parseRole(name string) (entities.Role, error) {
	role, ok := roleFlags[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown role %q", name)
	}
	return role, nil
}
