package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	story "folklore-pipeline/01_story"
	voice "folklore-pipeline/03_voice"
	render "folklore-pipeline/05_render"
	publish "folklore-pipeline/06_publish"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check tools, config, content files and credentials before a run",
	RunE: func(cmd *cobra.Command, args []string) error {
		failures := 0
		check := func(name string, err error) {
			if err != nil {
				failures++
				fmt.Printf("✗ %s: %v\n", name, err)
				return
			}
			fmt.Printf("✓ %s\n", name)
		}
		optional := func(name string, err error) {
			if err != nil {
				fmt.Printf("⚠ %s: %v\n", name, err)
				return
			}
			fmt.Printf("✓ %s\n", name)
		}

		check("ffmpeg/ffprobe", render.CheckTools())
		check("edge-tts", voice.CheckTool())
		check("config", cfgErr)

		db, err := story.LoadDatabase(cfg.Paths.Database)
		check(fmt.Sprintf("content database (%s)", cfg.Paths.Database), err)
		if err == nil {
			_, rotErr := story.NewRotation(cfg.Paths.RotationState, db)
			check(fmt.Sprintf("rotation state (%s)", cfg.Paths.RotationState), rotErr)
		}

		check(fmt.Sprintf("output dir (%s)", cfg.Paths.Output), writableDir(cfg.Paths.Output))
		check(fmt.Sprintf("logs dir (%s)", cfg.Paths.Logs), writableDir(cfg.Paths.Logs))
		check("image provider keys", imageKeysPresent())

		optional("youtube credentials", publish.CheckCredentials())
		optional("reddit credentials", redditKeysPresent())

		if failures > 0 {
			return fmt.Errorf("verification failed: %d problem(s) found", failures)
		}
		fmt.Println("✅ environment ready")
		return nil
	},
}

func writableDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".write_probe_*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

func imageKeysPresent() error {
	for _, key := range []string{"UNSPLASH_ACCESS_KEY", "PEXELS_API_KEY", "PIXABAY_API_KEY"} {
		if os.Getenv(key) != "" {
			return nil
		}
	}
	return fmt.Errorf("none of UNSPLASH_ACCESS_KEY, PEXELS_API_KEY, PIXABAY_API_KEY are set")
}

func redditKeysPresent() error {
	for _, key := range []string{"REDDIT_CLIENT_ID", "REDDIT_CLIENT_SECRET", "REDDIT_USERNAME", "REDDIT_PASSWORD"} {
		if os.Getenv(key) == "" {
			return fmt.Errorf("%s not set, suggest will use the public read-only API", key)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
