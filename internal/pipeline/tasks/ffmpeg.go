package tasks

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// sceneThreshold is the frame-difference score above which ffmpeg's select
// filter counts a cut.
const sceneThreshold = 0.4

var ptsTimeRe = regexp.MustCompile(`pts_time:([0-9]+\.?[0-9]*)`)

// probeDuration reads the container duration with ffprobe.
func probeDuration(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: parse duration: %w", path, err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

type sceneFrame struct {
	Timestamp time.Duration
	ImagePath string
}

// extractSceneFrames runs one ffmpeg pass that writes a jpeg per detected
// scene change and prints a showinfo line per selected frame; the pts_time
// values on stderr pair up with the numbered images.
func extractSceneFrames(ctx context.Context, src, outDir string) ([]sceneFrame, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create scene dir: %w", err)
	}
	pattern := filepath.Join(outDir, "scene_%04d.jpg")
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner",
		"-i", src,
		"-vf", fmt.Sprintf("select='gt(scene,%g)',showinfo", sceneThreshold),
		"-vsync", "vfr",
		"-y",
		pattern,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg scene extract %s: %w: %s", src, err, strings.TrimSpace(string(output)))
	}

	var timestamps []time.Duration
	for _, m := range ptsTimeRe.FindAllStringSubmatch(string(output), -1) {
		seconds, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		timestamps = append(timestamps, time.Duration(seconds*float64(time.Second)))
	}

	images, err := filepath.Glob(filepath.Join(outDir, "scene_*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("glob scene frames: %w", err)
	}
	sort.Strings(images)
	if len(images) != len(timestamps) {
		return nil, fmt.Errorf("scene extract %s: %d frames but %d timestamps", src, len(images), len(timestamps))
	}

	frames := make([]sceneFrame, len(images))
	for i := range images {
		frames[i] = sceneFrame{Timestamp: timestamps[i], ImagePath: images[i]}
	}
	return frames, nil
}
