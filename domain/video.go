package domain

import (
	"regexp"
	"time"

	"watch-party/errors"
)

// Video references the currently loaded video of a room.
type Video struct {
	VideoID  string    `json:"videoId"`
	LoadedAt time.Time `json:"loadedAt"`
}

// videoIDPattern accepts watch?v=, youtu.be/ and embed/ URL forms. The id is
// the first run of characters before '&', newline, '?' or '#'.
var videoIDPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`)

// ExtractVideoID pulls the video id out of a YouTube URL.
func ExtractVideoID(url string) (string, error) {
	match := videoIDPattern.FindStringSubmatch(url)
	if match == nil {
		return "", errors.ErrInvalidURL
	}
	return match[1], nil
}
