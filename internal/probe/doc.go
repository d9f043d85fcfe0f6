// Package probe inspects source recordings with ffprobe.
//
// It answers two questions for the HLS pipeline: which tracks can be stream
// copied instead of re-encoded, and how long the recording is. Every probe
// is bounded by a short timeout and every failure degrades to "unknown"
// rather than propagating, so a broken or slow probe can never prevent a
// transcode from starting.
package probe
