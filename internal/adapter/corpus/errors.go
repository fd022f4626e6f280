package corpus

import "errors"

var (
	ErrNoSource       = errors.New("no corpus files match")
	ErrNoVerses       = errors.New("corpus has no verses")
	ErrMissingColumn  = errors.New("missing required column")
	ErrMalformedRow   = errors.New("malformed row")
	ErrDuplicateVerse = errors.New("duplicate verse")
)
