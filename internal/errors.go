package internal

import "errors"

var (
	// ErrNoURLSource is returned when neither --link, --search nor YOUTUBE_URL yield a target
	ErrNoURLSource = errors.New("provide -s, -l, or set YOUTUBE_URL in .env")

	// ErrNoPlaylistFound is returned when a playlist search has no playlist in its results
	ErrNoPlaylistFound = errors.New("no playlist found")

	// ErrDriveNeedsVideoURL is returned when --drive is used without a direct video URL
	ErrDriveNeedsVideoURL = errors.New("--drive requires a direct YouTube video URL")

	// ErrNoDriveID is returned when no file ID can be recovered from a Drive URL
	ErrNoDriveID = errors.New("could not find a Drive file ID in URL")

	// ErrIncompleteFolder is returned when some entries of a Drive folder could not be fetched
	ErrIncompleteFolder = errors.New("drive folder incomplete")
)
