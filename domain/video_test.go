package domain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"watch-party/errors"
)

func Test_ExtractVideoID(t *testing.T) {
	req := require.New(t)

	testCases := []struct {
		url      string
		expected string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
	}
	for _, tc := range testCases {
		id, err := ExtractVideoID(tc.url)
		req.NoError(err, tc.url)
		req.Equal(tc.expected, id, tc.url)
	}
}

func Test_ExtractVideoID_Invalid(t *testing.T) {
	req := require.New(t)

	for _, url := range []string{"", "not a url", "https://vimeo.com/12345"} {
		_, err := ExtractVideoID(url)
		req.ErrorIs(err, errors.ErrInvalidURL, url)
	}
}
