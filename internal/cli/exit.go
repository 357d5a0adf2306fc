package cli

import (
	"errors"
	"io/fs"

	"github.com/haskel/2b2q/internal/dataset"
	"github.com/haskel/2b2q/internal/nn"
	"github.com/haskel/2b2q/internal/storage"
	"github.com/haskel/2b2q/internal/train"
)

// errUsage marks bad invocations (unknown flags, malformed arguments).
var errUsage = errors.New("usage error")

// Exit codes, one per error category so scripts can branch on the failure
// kind without parsing stderr.
const (
	exitError      = 1
	exitUsage      = 2
	exitIO         = 10
	exitParse      = 11
	exitEmpty      = 12
	exitExists     = 13
	exitNotFound   = 14
	exitCorrupt    = 15
	exitNoHalt     = 16
	exitConflict   = 17
	exitDivergence = 18
	exitShape      = 19
)

func exitCode(err error) int {
	var (
		parseErr *dataset.ParseError
		divErr   *train.DivergenceError
		shapeErr *nn.ShapeError
		pathErr  *fs.PathError
	)
	switch {
	case errors.Is(err, errUsage):
		return exitUsage
	case errors.As(err, &parseErr):
		return exitParse
	case errors.Is(err, dataset.ErrEmpty):
		return exitEmpty
	case errors.Is(err, storage.ErrAlreadyExists):
		return exitExists
	case errors.Is(err, storage.ErrNotFound):
		return exitNotFound
	case errors.Is(err, storage.ErrCorrupt):
		return exitCorrupt
	case errors.Is(err, train.ErrNoHaltCondition):
		return exitNoHalt
	case errors.Is(err, train.ErrConflictingOptions):
		return exitConflict
	case errors.As(err, &divErr):
		return exitDivergence
	case errors.As(err, &shapeErr):
		return exitShape
	case errors.As(err, &pathErr):
		return exitIO
	}
	return exitError
}
