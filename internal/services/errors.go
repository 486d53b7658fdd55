package services

import "errors"

var (
	ErrPathNotFound     = errors.New("path does not exist")
	ErrNotDirectory     = errors.New("path is not a directory")
	ErrNoPaths          = errors.New("no paths provided")
	ErrUnknownDigest    = errors.New("unknown digest algorithm")
	ErrInvalidBlockSize = errors.New("block size must be positive")
)
