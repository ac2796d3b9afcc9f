package export

// VideoToolbox is present on every supported macOS release.
const hardwareH264Encoder = "h264_videotoolbox"
