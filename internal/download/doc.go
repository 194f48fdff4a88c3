// Package download runs download jobs: it resolves a URL into items, picks
// streams, fetches them in chunks, hands them to ffmpeg for merging or
// conversion, tags audio output and moves the result into the destination
// folder. Service starts one goroutine per job and exposes its progress as a
// bounded event channel.
package download
