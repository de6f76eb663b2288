package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/groblegark/gymwall/internal/api"
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Create and manage wall posts",
}

func parsePostID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid post id %q", arg)
	}
	return id, nil
}

// openUploads opens the named files as multipart attachments. The returned
// close function must run after the request finishes.
func openUploads(paths []string) ([]api.FileUpload, func(), error) {
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	var uploads []api.FileUpload
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("opening %s: %w", p, err)
		}
		files = append(files, f)
		uploads = append(uploads, api.FileUpload{Name: filepath.Base(p), Reader: f})
	}
	return uploads, closeAll, nil
}

var postCreateCmd = &cobra.Command{
	Use:   "create <text>",
	Short: "Create a post with optional images and video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		imagePaths, _ := cmd.Flags().GetStringSlice("image")
		videoPath, _ := cmd.Flags().GetString("video")

		if len(imagePaths) > api.MaxPostImages {
			return fmt.Errorf("at most %d images per post", api.MaxPostImages)
		}

		req := &api.CreatePostRequest{Text: args[0]}

		images, closeImages, err := openUploads(imagePaths)
		if err != nil {
			return err
		}
		defer closeImages()
		req.Images = images

		if videoPath != "" {
			videos, closeVideo, err := openUploads([]string{videoPath})
			if err != nil {
				return err
			}
			defer closeVideo()
			req.Video = &videos[0]
		}

		// Uploads get a longer deadline than plain JSON calls.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.UploadTimeout)
		defer cancel()

		ctrl, _, cleanup := newFeedController()
		defer cleanup()

		post, err := ctrl.CreatePost(ctx, req)
		if err != nil {
			return handleAuthExpired(err)
		}
		if jsonOutput {
			printJSON(post)
		} else {
			printPostTable(post)
		}
		return nil
	},
}

var postUpdateCmd = &cobra.Command{
	Use:   "update <id> <text>",
	Short: "Replace a post's text",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		id, err := parsePostID(args[0])
		if err != nil {
			return err
		}
		ctrl, _, cleanup := newFeedController()
		defer cleanup()

		post, err := ctrl.UpdatePost(context.Background(), id, args[1])
		if err != nil {
			return handleAuthExpired(err)
		}
		if jsonOutput {
			printJSON(post)
		} else {
			printPostTable(post)
		}
		return nil
	},
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		id, err := parsePostID(args[0])
		if err != nil {
			return err
		}
		ctrl, _, cleanup := newFeedController()
		defer cleanup()

		if err := ctrl.DeletePost(context.Background(), id); err != nil {
			return handleAuthExpired(err)
		}
		fmt.Printf("Deleted post %d\n", id)
		return nil
	},
}

var postLikeCmd = &cobra.Command{
	Use:   "like <id>",
	Short: "Like a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		id, err := parsePostID(args[0])
		if err != nil {
			return err
		}
		if err := wall.LikePost(context.Background(), id); err != nil {
			return handleAuthExpired(fmt.Errorf("liking post %d: %w", id, err))
		}
		fmt.Printf("Liked post %d\n", id)
		return nil
	},
}

var postUnlikeCmd = &cobra.Command{
	Use:   "unlike <id>",
	Short: "Remove a like",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		id, err := parsePostID(args[0])
		if err != nil {
			return err
		}
		if err := wall.UnlikePost(context.Background(), id); err != nil {
			return handleAuthExpired(fmt.Errorf("unliking post %d: %w", id, err))
		}
		fmt.Printf("Unliked post %d\n", id)
		return nil
	},
}

var postShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		id, err := parsePostID(args[0])
		if err != nil {
			return err
		}
		post, err := wall.GetPost(context.Background(), id)
		if err != nil {
			return handleAuthExpired(fmt.Errorf("fetching post %d: %w", id, err))
		}
		if jsonOutput {
			printJSON(post)
		} else {
			printPostTable(post)
		}
		return nil
	},
}

func init() {
	postCreateCmd.Flags().StringSliceP("image", "i", nil, "image file (repeatable, max 3)")
	postCreateCmd.Flags().String("video", "", "video file")

	postCmd.AddCommand(postCreateCmd)
	postCmd.AddCommand(postShowCmd)
	postCmd.AddCommand(postUpdateCmd)
	postCmd.AddCommand(postDeleteCmd)
	postCmd.AddCommand(postLikeCmd)
	postCmd.AddCommand(postUnlikeCmd)
}
