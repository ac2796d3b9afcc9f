package export

import "fmt"

// Resolution is the output resolution target.
type Resolution string

const (
	ResolutionSource Resolution = "source"
	Resolution2160p  Resolution = "2160p"
	Resolution1440p  Resolution = "1440p"
	Resolution1080p  Resolution = "1080p"
	Resolution720p   Resolution = "720p"
	Resolution480p   Resolution = "480p"
)

// Dimensions returns the explicit width and height for the resolution.
// ok is false for ResolutionSource, which keeps the input dimensions.
func (r Resolution) Dimensions() (width, height int, ok bool) {
	switch r {
	case Resolution2160p:
		return 3840, 2160, true
	case Resolution1440p:
		return 2560, 1440, true
	case Resolution1080p:
		return 1920, 1080, true
	case Resolution720p:
		return 1280, 720, true
	case Resolution480p:
		return 854, 480, true
	default:
		return 0, 0, false
	}
}

func (r Resolution) valid() bool {
	switch r {
	case ResolutionSource, Resolution2160p, Resolution1440p, Resolution1080p, Resolution720p, Resolution480p:
		return true
	}
	return false
}

// VideoCodec selects the output video codec.
type VideoCodec string

const (
	CodecH264 VideoCodec = "h264"
	CodecHEVC VideoCodec = "hevc"
	CodecVP9  VideoCodec = "vp9"
)

// FFmpegName returns the software encoder name for the codec.
func (c VideoCodec) FFmpegName() string {
	switch c {
	case CodecHEVC:
		return "libx265"
	case CodecVP9:
		return "libvpx-vp9"
	default:
		return "libx264"
	}
}

func (c VideoCodec) valid() bool {
	switch c {
	case CodecH264, CodecHEVC, CodecVP9:
		return true
	}
	return false
}

// Quality maps the user-facing tier to a constant-quality value
// (lower = higher quality).
type Quality string

const (
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)

// CRF returns the constant rate factor for the tier.
func (q Quality) CRF() int {
	switch q {
	case QualityMedium:
		return 23
	case QualityLow:
		return 28
	default:
		return 18
	}
}

func (q Quality) valid() bool {
	switch q {
	case QualityHigh, QualityMedium, QualityLow:
		return true
	}
	return false
}

// AudioCodec selects the output audio codec.
type AudioCodec string

const (
	AudioAAC  AudioCodec = "aac"
	AudioMP3  AudioCodec = "mp3"
	AudioOpus AudioCodec = "opus"
)

// FFmpegName returns the encoder name for the audio codec.
func (c AudioCodec) FFmpegName() string {
	switch c {
	case AudioMP3:
		return "libmp3lame"
	case AudioOpus:
		return "libopus"
	default:
		return "aac"
	}
}

func (c AudioCodec) valid() bool {
	switch c {
	case AudioAAC, AudioMP3, AudioOpus:
		return true
	}
	return false
}

// Settings describe how a timeline is rendered to a file.
type Settings struct {
	Resolution           Resolution `json:"resolution"`
	Codec                VideoCodec `json:"codec"`
	Quality              Quality    `json:"quality"`
	FPS                  int        `json:"fps,omitempty"`
	AudioCodec           AudioCodec `json:"audio_codec"`
	AudioBitrate         int        `json:"audio_bitrate"`
	HardwareAcceleration bool       `json:"hardware_acceleration"`
}

// DefaultSettings returns the settings applied when the caller supplies none.
func DefaultSettings() Settings {
	return Settings{
		Resolution:           Resolution1080p,
		Codec:                CodecH264,
		Quality:              QualityHigh,
		AudioCodec:           AudioAAC,
		AudioBitrate:         192,
		HardwareAcceleration: true,
	}
}

// Validate checks that every enum carries a known value.
func (s Settings) Validate() error {
	if !s.Resolution.valid() {
		return fmt.Errorf("unsupported resolution %q", s.Resolution)
	}
	if !s.Codec.valid() {
		return fmt.Errorf("unsupported video codec %q", s.Codec)
	}
	if !s.Quality.valid() {
		return fmt.Errorf("unsupported quality tier %q", s.Quality)
	}
	if !s.AudioCodec.valid() {
		return fmt.Errorf("unsupported audio codec %q", s.AudioCodec)
	}
	if s.AudioBitrate <= 0 {
		return fmt.Errorf("audio bitrate must be positive, got %d", s.AudioBitrate)
	}
	if s.FPS < 0 {
		return fmt.Errorf("fps override must be non-negative, got %d", s.FPS)
	}
	return nil
}
