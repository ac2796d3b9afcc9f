package export

import (
	"fmt"
	"strconv"
)

// ProcessSpec is a fully-specified encoder invocation ready to spawn.
type ProcessSpec struct {
	Binary string
	Args   []string
}

const (
	defaultBinary = "ffmpeg"

	// Hardware encoders on commodity platforms do not reliably honor CRF,
	// so they receive a fixed target bitrate instead.
	hardwareBitrate = "5M"
	softwarePreset  = "medium"
)

// BuildCommand translates the manifest location, output path, and user
// settings into the ffmpeg argument list. The manifest is consumed through
// the concat demuxer in unsafe-path mode because its entries are absolute
// paths.
func BuildCommand(binary, manifestPath, outputPath string, settings Settings) ProcessSpec {
	if binary == "" {
		binary = defaultBinary
	}

	args := []string{"-f", "concat", "-safe", "0", "-i", manifestPath}

	hardware := settings.HardwareAcceleration && settings.Codec == CodecH264
	encoder := settings.Codec.FFmpegName()
	if hardware && hardwareH264Encoder != "" {
		encoder = hardwareH264Encoder
	}
	args = append(args, "-c:v", encoder)

	if hardware {
		args = append(args, "-b:v", hardwareBitrate)
	} else {
		args = append(args, "-crf", strconv.Itoa(settings.Quality.CRF()))
	}
	if !settings.HardwareAcceleration {
		args = append(args, "-preset", softwarePreset)
	}

	if width, height, ok := settings.Resolution.Dimensions(); ok {
		args = append(args, "-vf", fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", width, height))
	}
	if settings.FPS > 0 {
		args = append(args, "-r", strconv.Itoa(settings.FPS))
	}

	args = append(args, "-c:a", settings.AudioCodec.FFmpegName())
	args = append(args, "-b:a", fmt.Sprintf("%dk", settings.AudioBitrate))

	args = append(args, "-y", outputPath)

	return ProcessSpec{Binary: binary, Args: args}
}
