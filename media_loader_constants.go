package main

// Media type values.
const (
	MEDIA_TYPE_NONE = iota
	MEDIA_TYPE_SID
)

// Media error values.
const (
	MEDIA_ERR_OK = iota
	MEDIA_ERR_NOT_FOUND
	MEDIA_ERR_BAD_FORMAT
	MEDIA_ERR_UNSUPPORTED
	MEDIA_ERR_PATH_INVALID
	MEDIA_ERR_TOO_LARGE
)

// Largest accepted input: the whole C64 address space plus an extended
// header and embedded load address.
const MEDIA_MAX_SIZE = 0x10000 + sidExtendedSize + 2

// Bytes handed to content sniffing when describing unknown input.
const mediaSniffLen = 262
