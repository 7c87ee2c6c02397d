// Package media probes, fetches and renders audio/video files through
// ffmpeg, ffprobe and yt-dlp.
package media

import "fmt"

// MediaError reports an unreadable or unwritable media file
type MediaError struct {
	Op   string
	Path string
	Err  error
}

func (e *MediaError) Error() string {
	return fmt.Sprintf("media %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *MediaError) Unwrap() error {
	return e.Err
}
