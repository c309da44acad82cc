//go:build headless

package main

import "errors"

func copyToClipboard(string) error {
	return errors.New("clipboard unavailable in headless build")
}
