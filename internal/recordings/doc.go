// Package recordings understands the on-disk layout produced by the
// cameras: a camera/year/month/day directory tree of snapshot/video pairs
// named Camera_SS_YYYYMMDDHHMMSS.(jpg|mp4).
//
// It also provides the sandboxed path resolution every file-serving endpoint
// goes through, with Forbidden kept distinct from NotFound.
package recordings
