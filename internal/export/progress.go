package export

import (
	"math"
	"regexp"
	"strconv"
)

var (
	frameRe = regexp.MustCompile(`frame=\s*(\d+)`)
	fpsRe   = regexp.MustCompile(`fps=\s*([\d.]+)`)
	timeRe  = regexp.MustCompile(`time=(\d+):(\d+):([\d.]+)`)
)

// Fallback when ffmpeg has not printed an fps figure yet.
const assumedFPS = 30.0

// Progress is one decoded ffmpeg status line.
type Progress struct {
	CurrentFrame int64
	TotalFrames  int64
	FPS          float64
	Progress     float64
	ETASeconds   int64
}

// ParseProgress decodes an ffmpeg stderr status line. Lines without a frame
// counter are not status lines and report ok=false.
func ParseProgress(line string, totalDuration float64) (Progress, bool) {
	frameMatch := frameRe.FindStringSubmatch(line)
	if frameMatch == nil {
		return Progress{}, false
	}
	frame, err := strconv.ParseInt(frameMatch[1], 10, 64)
	if err != nil {
		return Progress{}, false
	}

	fps := assumedFPS
	if m := fpsRe.FindStringSubmatch(line); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
			fps = v
		}
	}

	elapsed := 0.0
	if m := timeRe.FindStringSubmatch(line); m != nil {
		hours, _ := strconv.ParseFloat(m[1], 64)
		minutes, _ := strconv.ParseFloat(m[2], 64)
		seconds, _ := strconv.ParseFloat(m[3], 64)
		elapsed = hours*3600 + minutes*60 + seconds
	}

	p := Progress{CurrentFrame: frame, FPS: fps}
	if totalDuration > 0 {
		p.TotalFrames = int64(totalDuration * fps)
		p.Progress = math.Min(math.Max(elapsed/totalDuration, 0), 1)
		if fps > 0 && frame > 0 {
			remaining := p.TotalFrames - frame
			if remaining < 0 {
				remaining = 0
			}
			p.ETASeconds = int64(float64(remaining) / fps)
		}
	}
	return p, true
}
