package export

const hardwareH264Encoder = "h264_nvenc"
