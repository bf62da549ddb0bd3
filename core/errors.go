package core

import "errors"

var (
	ErrBadIndex             = errors.New("index out of range")
	ErrOutOfSpace           = errors.New("not enough room in Jingle Data")
	ErrAlreadyPlaying       = errors.New("haptic is already playing")
	ErrEmptySequence        = errors.New("no notes to play")
	ErrInvalidPersistedData = errors.New("invalid Jingle Data")
	ErrStorageIO            = errors.New("persistent storage access failed")
	ErrStoreBusy            = errors.New("Jingle Data in use by playback")
	ErrBadArgument          = errors.New("bad argument")
)
