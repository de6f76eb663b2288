package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/groblegark/gymwall/internal/feed"
	"github.com/groblegark/gymwall/internal/model"
	"github.com/groblegark/gymwall/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

func printPostTable(p *model.Post) {
	fmt.Printf("Post:     #%d\n", p.ID)
	fmt.Printf("Author:   %s\n", ui.RenderAccent(p.User.Username))
	fmt.Printf("Text:     %s\n", p.Text)
	if len(p.Images) > 0 {
		fmt.Printf("Images:   %d\n", len(p.Images))
	}
	if p.Video != nil {
		fmt.Printf("Video:    %s\n", p.Video.URL)
	}
	fmt.Printf("Likes:    %d", p.LikesCount)
	if p.LikedByCurrentUser {
		fmt.Print("  (liked)")
	}
	fmt.Println()
	fmt.Printf("Comments: %d\n", p.CommentsCount)
	if s := formatTime(p.CreatedAt); s != "" {
		fmt.Printf("Posted:   %s\n", ui.RenderMuted(s))
	}
}

func printPostListTable(posts []*model.Post) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAUTHOR\tLIKES\tCOMMENTS\tPOSTED\tTEXT")
	for _, p := range posts {
		text := p.Text
		if len(text) > 50 {
			text = text[:47] + "..."
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\t%s\n",
			p.ID, p.User.Username, p.LikesCount, p.CommentsCount, formatTime(p.CreatedAt), text)
	}
	w.Flush()
	fmt.Printf("\n%d posts\n", len(posts))
}

// printThread renders a comment thread. Entries still waiting on the server
// show a pending marker instead of an identifier.
func printThread(postID int64, view feed.View) {
	if view.Err != "" {
		fmt.Println(ui.RenderError(view.Err))
		return
	}
	if len(view.Comments) == 0 {
		fmt.Printf("No comments on post %d\n", postID)
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAUTHOR\tWHEN\tTEXT")
	for i := range view.Comments {
		c := &view.Comments[i]
		id := c.ID.String()
		if c.Provisional() {
			id = ui.RenderPending("(pending)")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, c.User.Username, formatTime(c.CreatedAt), c.Text)
	}
	w.Flush()
	fmt.Printf("\n%d comments on post %d\n", len(view.Comments), postID)
}

func printProgressTable(p *model.Progress) {
	fmt.Printf("Goal:     #%d %s\n", p.ID, p.GoalType)
	if p.GoalDescription != "" {
		fmt.Printf("About:    %s\n", p.GoalDescription)
	}
	fmt.Printf("Progress: %.1f -> %.1f (target %.1f) %s\n", p.InitialValue, p.CurrentValue, p.TargetValue, p.Unit)
	if s := formatTime(p.TargetDate); s != "" {
		fmt.Printf("Due:      %s\n", s)
	}
	if p.Completed {
		fmt.Println("Status:   completed")
	}
}

func printProgressListTable(goals []*model.Progress) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tGOAL\tCURRENT\tTARGET\tUNIT\tDONE")
	for _, p := range goals {
		done := ""
		if p.Completed {
			done = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%.1f\t%.1f\t%s\t%s\n", p.ID, p.GoalType, p.CurrentValue, p.TargetValue, p.Unit, done)
	}
	w.Flush()
	fmt.Printf("\n%d goals\n", len(goals))
}

func printScheduleTable(s *model.WorkoutSchedule) {
	fmt.Printf("Schedule: #%d %s\n", s.ID, s.Title)
	if s.Description != "" {
		fmt.Printf("About:    %s\n", s.Description)
	}
	if len(s.Days) > 0 {
		fmt.Printf("Days:     %v\n", s.Days)
	}
	if s.Intensity != "" {
		fmt.Printf("Intensity: %s, %d min\n", s.Intensity, s.Duration)
	}
	for _, e := range s.Exercises {
		mark := " "
		if e.Completed {
			mark = "x"
		}
		fmt.Printf("  [%s] #%d %s %dx%d\n", mark, e.ID, e.Name, e.Sets, e.Reps)
	}
}

func printScheduleListTable(schedules []*model.WorkoutSchedule) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDAYS\tINTENSITY\tEXERCISES")
	for _, s := range schedules {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%d\n", s.ID, s.Title, len(s.Days), s.Intensity, len(s.Exercises))
	}
	w.Flush()
	fmt.Printf("\n%d schedules\n", len(schedules))
}
