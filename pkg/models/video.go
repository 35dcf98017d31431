package models

import "io"

// Container format and quality served by the gateway
const (
	FormatMP4      = "mp4"
	QualityHighest = "highest"
)

// DownloadRequest is the parsed input of a download call
type DownloadRequest struct {
	URL string `json:"url"`
}

// VideoMetadata represents what a resolver knows about a video
type VideoMetadata struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Author    string       `json:"author,omitempty"`
	Duration  float64      `json:"duration,omitempty"`
	Thumbnail string       `json:"thumbnail,omitempty"`
	Formats   []FormatInfo `json:"formats"`
}

// FormatInfo describes one downloadable representation of a video
type FormatInfo struct {
	ID           string `json:"id"`
	Ext          string `json:"ext,omitempty"`
	MimeType     string `json:"mimeType,omitempty"`
	QualityLabel string `json:"qualityLabel,omitempty"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	Bitrate      int    `json:"bitrate,omitempty"`
	Size         int64  `json:"size,omitempty"`
	HasAudio     bool   `json:"hasAudio"`
	HasVideo     bool   `json:"hasVideo"`
}

// StreamOptions selects the representation a resolver should open
type StreamOptions struct {
	Format  string
	Quality string
}

// DefaultStreamOptions returns the mp4 / highest selection used for downloads
func DefaultStreamOptions() StreamOptions {
	return StreamOptions{
		Format:  FormatMP4,
		Quality: QualityHighest,
	}
}

// MediaStream is a single-pass byte stream returned by a resolver.
// Size is -1 when the length is not known up front.
type MediaStream struct {
	Body     io.ReadCloser
	Size     int64
	MimeType string
}
