package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/groblegark/gymwall/internal/model"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage weekly workout schedules",
}

func parseScheduleID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid schedule id %q", arg)
	}
	return id, nil
}

// parseExercises converts repeated --exercise name:sets:reps flags.
func parseExercises(specs []string) ([]model.Exercise, error) {
	var out []model.Exercise
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		e := model.Exercise{Name: parts[0]}
		if e.Name == "" {
			return nil, fmt.Errorf("invalid exercise %q: expected name[:sets[:reps]]", spec)
		}
		var err error
		if len(parts) > 1 {
			if e.Sets, err = strconv.Atoi(parts[1]); err != nil {
				return nil, fmt.Errorf("invalid sets in %q", spec)
			}
		}
		if len(parts) > 2 {
			if e.Reps, err = strconv.Atoi(parts[2]); err != nil {
				return nil, fmt.Errorf("invalid reps in %q", spec)
			}
		}
		out = append(out, e)
	}
	return out, nil
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List schedules",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		schedules, err := wall.ListSchedules(context.Background())
		if err != nil {
			return handleAuthExpired(fmt.Errorf("listing schedules: %w", err))
		}
		if jsonOutput {
			printJSON(schedules)
		} else {
			printScheduleListTable(schedules)
		}
		return nil
	},
}

var scheduleShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one schedule with its exercises",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		id, err := parseScheduleID(args[0])
		if err != nil {
			return err
		}
		s, err := wall.GetSchedule(context.Background(), id)
		if err != nil {
			return handleAuthExpired(fmt.Errorf("fetching schedule %d: %w", id, err))
		}
		if jsonOutput {
			printJSON(s)
		} else {
			printScheduleTable(s)
		}
		return nil
	},
}

var scheduleCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		description, _ := cmd.Flags().GetString("description")
		days, _ := cmd.Flags().GetStringSlice("day")
		intensity, _ := cmd.Flags().GetString("intensity")
		duration, _ := cmd.Flags().GetInt("duration")
		exerciseSpecs, _ := cmd.Flags().GetStringArray("exercise")

		exercises, err := parseExercises(exerciseSpecs)
		if err != nil {
			return err
		}

		s := &model.WorkoutSchedule{
			Title:       args[0],
			Description: description,
			Days:        days,
			Exercises:   exercises,
			Intensity:   intensity,
			Duration:    duration,
		}
		created, err := wall.CreateSchedule(context.Background(), s)
		if err != nil {
			return handleAuthExpired(fmt.Errorf("creating schedule: %w", err))
		}
		if jsonOutput {
			printJSON(created)
		} else {
			printScheduleTable(created)
		}
		return nil
	},
}

var scheduleDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		id, err := parseScheduleID(args[0])
		if err != nil {
			return err
		}
		if err := wall.DeleteSchedule(context.Background(), id); err != nil {
			return handleAuthExpired(fmt.Errorf("deleting schedule %d: %w", id, err))
		}
		fmt.Printf("Deleted schedule %d\n", id)
		return nil
	},
}

var scheduleCompleteCmd = &cobra.Command{
	Use:   "complete <schedule-id> <exercise-id>",
	Short: "Mark an exercise completed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		scheduleID, err := parseScheduleID(args[0])
		if err != nil {
			return err
		}
		exerciseID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || exerciseID <= 0 {
			return fmt.Errorf("invalid exercise id %q", args[1])
		}
		s, err := wall.CompleteExercise(context.Background(), scheduleID, exerciseID)
		if err != nil {
			return handleAuthExpired(fmt.Errorf("completing exercise %d: %w", exerciseID, err))
		}
		if jsonOutput {
			printJSON(s)
		} else {
			printScheduleTable(s)
		}
		return nil
	},
}

func init() {
	scheduleCreateCmd.Flags().StringP("description", "d", "", "schedule description")
	scheduleCreateCmd.Flags().StringSlice("day", nil, "workout day (repeatable, e.g. monday)")
	scheduleCreateCmd.Flags().String("intensity", model.IntensityMedium, "intensity (low, medium, high)")
	scheduleCreateCmd.Flags().Int("duration", 0, "session length in minutes")
	scheduleCreateCmd.Flags().StringArrayP("exercise", "e", nil, "exercise as name:sets:reps (repeatable)")

	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleShowCmd)
	scheduleCmd.AddCommand(scheduleCreateCmd)
	scheduleCmd.AddCommand(scheduleDeleteCmd)
	scheduleCmd.AddCommand(scheduleCompleteCmd)
}
