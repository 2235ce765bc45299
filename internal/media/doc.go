// Package media downloads post videos, thumbnails, and profile pictures into
// staging.
//
// References may be http(s) URLs, file:// URLs, or local paths. HTTP
// downloads are retried with backoff on network errors, 429, and 5xx
// responses; every attempt runs under its own timeout. Downloaded videos are
// sniffed, and a payload that is not video (an HTML login page, an image) is
// reported as a transient error so the post is retried later.
package media
