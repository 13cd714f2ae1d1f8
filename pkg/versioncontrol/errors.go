package versioncontrol

import "errors"

// ErrInvalidArgument is returned before any network call when a required argument is
// missing or unusable
var ErrInvalidArgument = errors.New("invalid argument")
