// Package streaming provides the file-serving primitives behind the media
// endpoints: byte-range request parsing and serving, fixed-size chunked
// response copying with write timeouts, and bounded waits for HLS segment
// files that the encoder has not flushed yet.
//
// Range serving never loads a whole file into memory, and a stalled or
// disconnected client releases its handler goroutine within the configured
// write timeout.
package streaming
