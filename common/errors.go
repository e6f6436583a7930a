package common

import (
	"errors"
)

// Source resolution
var ErrUnresolvedReference = errors.New("reference not resolved to a url or bytes")
var ErrFetchFailed = errors.New("remote fetch failed")
var ErrUnsupportedFormat = errors.New("unsupported media format")

// Downloading
var ErrExtractionFailed = errors.New("extraction failed")
var ErrDownloadInterrupted = errors.New("download interrupted")

// Transformation
var ErrDecodeFailed = errors.New("media could not be decoded")
var ErrFontLoad = errors.New("caption font could not be loaded")
var ErrInvalidParameter = errors.New("invalid parameter")

// Offloading
var ErrBackendUnreachable = errors.New("upload backend unreachable")
var ErrBackendRejected = errors.New("upload backend rejected the media")
var ErrUploadFailed = errors.New("all upload backends failed")

// Delivery
var ErrMediaTooLarge = errors.New("media too large")
