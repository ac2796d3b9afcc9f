//go:build !darwin && !windows

package export

// No portable hardware H.264 path on this platform; the software encoder
// keeps its name and the bitrate mode still applies when acceleration was
// requested.
const hardwareH264Encoder = ""
