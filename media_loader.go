package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
)

var sidFileType = filetype.NewType("sid", "audio/prs.sid")

func init() {
	filetype.AddMatcher(sidFileType, func(buf []byte) bool {
		if len(buf) < 4 {
			return false
		}
		magic := string(buf[:4])
		return magic == sidMagicPSID || magic == sidMagicRSID
	})
}

var mediaErrNames = map[int]string{
	MEDIA_ERR_NOT_FOUND:    "not found",
	MEDIA_ERR_BAD_FORMAT:   "bad format",
	MEDIA_ERR_UNSUPPORTED:  "unsupported",
	MEDIA_ERR_PATH_INVALID: "invalid path",
	MEDIA_ERR_TOO_LARGE:    "too large",
}

// MediaError reports why an input file could not be loaded
type MediaError struct {
	Code int
	Path string
	Err  error
}

func (e *MediaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, mediaErrNames[e.Code], e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, mediaErrNames[e.Code])
}

func (e *MediaError) Unwrap() error {
	return e.Err
}

// loadMedia reads an input file after checking it exists, is a regular file
// and fits in memory as a SID image. Content is not validated here.
func loadMedia(path string) ([]byte, error) {
	if path == "" {
		return nil, &MediaError{Code: MEDIA_ERR_PATH_INVALID, Path: path}
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MediaError{Code: MEDIA_ERR_NOT_FOUND, Path: path, Err: err}
		}
		return nil, &MediaError{Code: MEDIA_ERR_BAD_FORMAT, Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &MediaError{Code: MEDIA_ERR_PATH_INVALID, Path: path}
	}
	if info.Size() > MEDIA_MAX_SIZE {
		return nil, &MediaError{Code: MEDIA_ERR_TOO_LARGE, Path: path, Err: fmt.Errorf("%d bytes, limit %d", info.Size(), MEDIA_MAX_SIZE)}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &MediaError{Code: MEDIA_ERR_BAD_FORMAT, Path: path, Err: err}
	}
	return data, nil
}

func detectMediaType(data []byte) uint32 {
	if filetype.IsType(data, sidFileType) {
		return MEDIA_TYPE_SID
	}
	return MEDIA_TYPE_NONE
}

// describeInput names what a buffer appears to be, for error messages
func describeInput(data []byte) string {
	if len(data) > mediaSniffLen {
		data = data[:mediaSniffLen]
	}
	kind, err := filetype.Match(data)
	if err != nil || kind == types.Unknown {
		return "unrecognised data"
	}
	return fmt.Sprintf("%s (%s)", kind.MIME.Value, kind.Extension)
}
