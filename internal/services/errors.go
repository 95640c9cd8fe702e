package services

import "errors"

// Run service errors
var (
	ErrNoUpload   = errors.New("no workbook uploaded")
	ErrNoFilename = errors.New("uploaded workbook has no filename")
)
