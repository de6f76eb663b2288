package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/groblegark/gymwall/internal/model"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Track personal goals",
}

func parseGoalID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid goal id %q", arg)
	}
	return id, nil
}

var progressListCmd = &cobra.Command{
	Use:   "list",
	Short: "List goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		goals, err := wall.ListProgress(context.Background())
		if err != nil {
			return handleAuthExpired(fmt.Errorf("listing goals: %w", err))
		}
		if jsonOutput {
			printJSON(goals)
		} else {
			printProgressListTable(goals)
		}
		return nil
	},
}

var progressShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		id, err := parseGoalID(args[0])
		if err != nil {
			return err
		}
		goal, err := wall.GetProgress(context.Background(), id)
		if err != nil {
			return handleAuthExpired(fmt.Errorf("fetching goal %d: %w", id, err))
		}
		if jsonOutput {
			printJSON(goal)
		} else {
			printProgressTable(goal)
		}
		return nil
	},
}

var progressCreateCmd = &cobra.Command{
	Use:   "create <goal-type>",
	Short: "Start tracking a goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		initial, _ := cmd.Flags().GetFloat64("initial")
		target, _ := cmd.Flags().GetFloat64("target")
		unit, _ := cmd.Flags().GetString("unit")
		description, _ := cmd.Flags().GetString("description")
		due, _ := cmd.Flags().GetString("due")

		p := &model.Progress{
			GoalType:        args[0],
			GoalDescription: description,
			InitialValue:    initial,
			CurrentValue:    initial,
			TargetValue:     target,
			Unit:            unit,
			StartedAt:       time.Now(),
		}
		if due != "" {
			d, err := time.Parse("2006-01-02", due)
			if err != nil {
				return fmt.Errorf("invalid --due date %q (want YYYY-MM-DD)", due)
			}
			p.TargetDate = d
		}

		created, err := wall.CreateProgress(context.Background(), p)
		if err != nil {
			return handleAuthExpired(fmt.Errorf("creating goal: %w", err))
		}
		if jsonOutput {
			printJSON(created)
		} else {
			printProgressTable(created)
		}
		return nil
	},
}

var progressUpdateCmd = &cobra.Command{
	Use:   "update <id> <current-value>",
	Short: "Update a goal's current value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		id, err := parseGoalID(args[0])
		if err != nil {
			return err
		}
		value, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid value %q", args[1])
		}

		goal, err := wall.GetProgress(context.Background(), id)
		if err != nil {
			return handleAuthExpired(fmt.Errorf("fetching goal %d: %w", id, err))
		}
		goal.CurrentValue = value
		if done, _ := cmd.Flags().GetBool("done"); done {
			goal.Completed = true
		}

		updated, err := wall.UpdateProgress(context.Background(), id, goal)
		if err != nil {
			return handleAuthExpired(fmt.Errorf("updating goal %d: %w", id, err))
		}
		if jsonOutput {
			printJSON(updated)
		} else {
			printProgressTable(updated)
		}
		return nil
	},
}

var progressDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Stop tracking a goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		id, err := parseGoalID(args[0])
		if err != nil {
			return err
		}
		if err := wall.DeleteProgress(context.Background(), id); err != nil {
			return handleAuthExpired(fmt.Errorf("deleting goal %d: %w", id, err))
		}
		fmt.Printf("Deleted goal %d\n", id)
		return nil
	},
}

var progressHistoryCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show a goal's recorded measurements",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		id, err := parseGoalID(args[0])
		if err != nil {
			return err
		}
		history, err := wall.GetProgressHistory(context.Background(), id)
		if err != nil {
			return handleAuthExpired(fmt.Errorf("fetching history for goal %d: %w", id, err))
		}
		if jsonOutput {
			printJSON(history)
			return nil
		}
		for _, h := range history {
			line := fmt.Sprintf("%s  %.1f", formatTime(h.RecordedAt), h.MeasurementValue)
			if h.Notes != "" {
				line += "  " + h.Notes
			}
			fmt.Println(line)
		}
		fmt.Printf("\n%d measurements\n", len(history))
		return nil
	},
}

var progressRecordCmd = &cobra.Command{
	Use:   "record <id> <value>",
	Short: "Record a measurement for a goal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		id, err := parseGoalID(args[0])
		if err != nil {
			return err
		}
		value, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid value %q", args[1])
		}
		notes, _ := cmd.Flags().GetString("notes")

		h := &model.ProgressHistory{
			MeasurementValue: value,
			RecordedAt:       time.Now(),
			Notes:            notes,
		}
		recorded, err := wall.AddProgressHistory(context.Background(), id, h)
		if err != nil {
			return handleAuthExpired(fmt.Errorf("recording measurement: %w", err))
		}
		if jsonOutput {
			printJSON(recorded)
		} else {
			fmt.Printf("Recorded %.1f for goal %d\n", recorded.MeasurementValue, id)
		}
		return nil
	},
}

func init() {
	progressCreateCmd.Flags().Float64("initial", 0, "starting value")
	progressCreateCmd.Flags().Float64("target", 0, "target value")
	progressCreateCmd.Flags().String("unit", "", "unit of measurement (kg, km, ...)")
	progressCreateCmd.Flags().StringP("description", "d", "", "goal description")
	progressCreateCmd.Flags().String("due", "", "target date (YYYY-MM-DD)")
	progressUpdateCmd.Flags().Bool("done", false, "mark the goal completed")
	progressRecordCmd.Flags().String("notes", "", "notes for the measurement")

	progressCmd.AddCommand(progressListCmd)
	progressCmd.AddCommand(progressShowCmd)
	progressCmd.AddCommand(progressCreateCmd)
	progressCmd.AddCommand(progressUpdateCmd)
	progressCmd.AddCommand(progressDeleteCmd)
	progressCmd.AddCommand(progressHistoryCmd)
	progressCmd.AddCommand(progressRecordCmd)
}
