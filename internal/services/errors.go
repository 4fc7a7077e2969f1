package services

import "errors"

// Service errors
var (
	// ErrDatasetNotLoaded is returned by queries made before a table is installed
	ErrDatasetNotLoaded = errors.New("no dataset has been loaded")
)
