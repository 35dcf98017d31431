package resolver

import (
	"errors"
	"net/url"
	"strings"
)

var ErrVideoIDNotFound = errors.New("video ID not found")

// NormalizeURL trims s, adds a missing https scheme and rewrites youtu.be and
// shorts links into watch URLs. Other URLs are returned otherwise untouched.
func NormalizeURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}

	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	parsedURL, err := url.Parse(s)
	if err != nil {
		return s
	}

	host := strings.ToLower(parsedURL.Hostname())
	if host == "youtu.be" || (isYouTubeHost(host) && strings.HasPrefix(parsedURL.Path, "/shorts/")) {
		if videoID, err := ExtractVideoID(s); err == nil {
			return watchURL(videoID)
		}
	}

	return s
}

// IsSupportedURL checks if s is an http(s) URL on a YouTube host
func IsSupportedURL(s string) bool {
	if s == "" {
		return false
	}

	parsedURL, err := url.Parse(s)
	if err != nil {
		return false
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return false
	}

	return isYouTubeHost(parsedURL.Hostname())
}

// ExtractVideoID extracts the video ID from a YouTube URL
func ExtractVideoID(s string) (string, error) {
	parsedURL, err := url.Parse(s)
	if err != nil {
		return "", err
	}

	host := strings.ToLower(parsedURL.Hostname())

	// youtu.be/VIDEO_ID
	if host == "youtu.be" {
		if videoID := strings.SplitN(strings.TrimPrefix(parsedURL.Path, "/"), "/", 2)[0]; videoID != "" {
			return videoID, nil
		}
		return "", ErrVideoIDNotFound
	}

	if !isYouTubeHost(host) {
		return "", ErrVideoIDNotFound
	}

	if parsedURL.Path == "/watch" {
		if videoID := parsedURL.Query().Get("v"); videoID != "" {
			return videoID, nil
		}
		return "", ErrVideoIDNotFound
	}

	for _, prefix := range []string{"/embed/", "/v/", "/shorts/"} {
		if strings.HasPrefix(parsedURL.Path, prefix) {
			videoID := strings.SplitN(strings.TrimPrefix(parsedURL.Path, prefix), "/", 2)[0]
			if videoID != "" {
				return videoID, nil
			}
		}
	}

	return "", ErrVideoIDNotFound
}

func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(videoID)
}

func isYouTubeHost(host string) bool {
	host = strings.ToLower(host)
	return host == "youtube.com" || strings.HasSuffix(host, ".youtube.com") || host == "youtu.be"
}
