//go:build !headless

// clipboard_copy.go - Copy tune metadata to the system clipboard

package main

import (
	"errors"
	"sync"

	"golang.design/x/clipboard"
)

var (
	clipboardOnce sync.Once
	clipboardErr  error
)

func init() {
	compiledFeatures = append(compiledFeatures, "clipboard")
}

func copyToClipboard(text string) error {
	clipboardOnce.Do(func() {
		clipboardErr = clipboard.Init()
	})
	if clipboardErr != nil {
		return errors.Join(errors.New("clipboard unavailable"), clipboardErr)
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
