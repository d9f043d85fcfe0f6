// Package hls runs the on-demand transcode pipeline: a bounded admission
// gate, per-job encoder processes writing fMP4 segments into working
// directories, and supervisors that reap, cancel and clean up every job
// exactly once.
package hls
