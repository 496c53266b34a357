package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	entities "github.com/KirkDiggler/guild-progression/internal/entities/progression"
	"github.com/KirkDiggler/guild-progression/internal/orchestrators/activity"
)

var (
	counterDcID   string
	counterDcTag  string
	counterAmount int64
)

var countersCmd = &cobra.Command{
	Use:   "counters",
	Short: "Inspect and change daily activity counters",
}

var recordTextCmd = &cobra.Command{
	Use:   "record-text",
	Short: "Count chat messages",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runRecord(cmd, activity.ChannelText)
	},
}

var recordVoiceCmd = &cobra.Command{
	Use:   "record-voice",
	Short: "Count voice minutes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runRecord(cmd, activity.ChannelVoice)
	},
}

var retractTextCmd = &cobra.Command{
	Use:   "retract",
	Short: "Take back one chat message",
	RunE:  runRetract,
}

var countersShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print today's counters",
	RunE:  runCountersShow,
}

var resetDailyCmd = &cobra.Command{
	Use:   "reset-daily",
	Short: "Zero every stored counter now",
	Long: `Run the daily reset immediately instead of waiting for the scheduler.
Records that fail to reset are listed and do not stop the run.`,
	RunE: runResetDaily,
}

func init() {
	for _, c := range []*cobra.Command{recordTextCmd, recordVoiceCmd, retractTextCmd, countersShowCmd} {
		c.Flags().StringVar(&counterDcID, "dc", "", "participant id")
		_ = c.MarkFlagRequired("dc")
	}
	for _, c := range []*cobra.Command{recordTextCmd, recordVoiceCmd} {
		c.Flags().StringVar(&counterDcTag, "tag", "", "participant display tag")
		c.Flags().Int64Var(&counterAmount, "amount", 1, "messages or minutes to add")
	}

	countersCmd.AddCommand(recordTextCmd)
	countersCmd.AddCommand(recordVoiceCmd)
	countersCmd.AddCommand(retractTextCmd)
	countersCmd.AddCommand(countersShowCmd)
	countersCmd.AddCommand(resetDailyCmd)
}

func runRecord(cmd *cobra.Command, channel string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	input := &activity.RecordInput{
		DcID:   counterDcID,
		DcTag:  counterDcTag,
		Amount: counterAmount,
	}

	var out *activity.RecordOutput
	if channel == activity.ChannelVoice {
		out, err = a.activity.RecordVoice(cmd.Context(), input)
	} else {
		out, err = a.activity.RecordText(cmd.Context(), input)
	}
	if err != nil {
		return fmt.Errorf("failed to record %s activity: %w", channel, err)
	}

	printCounter(cmd.OutOrStdout(), out.Counter)
	return nil
}

func runRetract(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.activity.RetractText(cmd.Context(), &activity.RetractTextInput{DcID: counterDcID})
	if err != nil {
		return fmt.Errorf("failed to retract message: %w", err)
	}

	printCounter(cmd.OutOrStdout(), out.Counter)
	return nil
}

func runCountersShow(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.activity.GetCounter(cmd.Context(), &activity.GetCounterInput{DcID: counterDcID})
	if err != nil {
		return fmt.Errorf("failed to load counters: %w", err)
	}

	printCounter(cmd.OutOrStdout(), out.Counter)
	return nil
}

func runResetDaily(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.activity.ResetDaily(cmd.Context(), &activity.ResetDailyInput{})
	if err != nil {
		return fmt.Errorf("daily reset failed: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s at %s: reset %d counter(s)\n",
		out.RunID, out.ResetAt.Format(time.RFC3339), out.Reset)

	if len(out.Failed) > 0 {
		ids := make([]string, 0, len(out.Failed))
		for id := range out.Failed {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		fmt.Fprintf(w, "%d counter(s) failed:\n", len(ids))
		for _, id := range ids {
			fmt.Fprintf(w, "  - %s: %v\n", id, out.Failed[id])
		}
	}
	return nil
}

func printCounter(w io.Writer, c *entities.DailyCounter) {
	id, tag := "", ""
	if c.DcID != nil {
		id = *c.DcID
	}
	if c.DcTag != nil {
		tag = *c.DcTag
	}

	reset := "never"
	if c.LastResetTime != nil {
		reset = c.LastResetTime.Format(time.RFC3339)
	}

	fmt.Fprintf(w, "%s %s\n", id, tag)
	fmt.Fprintf(w, "Text: %d, Voice: %d\n", c.TextChatDailyCounter, c.VoiceChatDailyCounter)
	fmt.Fprintf(w, "Last reset: %s\n", reset)
}
