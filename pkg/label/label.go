package label

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultMarker precedes the action id in NTU RGB+D file names, e.g.
// S001C001P001R001A007.skeleton is action 7.
const DefaultMarker = "A"

const digits = 3

var ErrNoLabel = errors.New("no label in filename")

// FromFilename returns the zero based class id encoded after the first
// occurrence of marker in the base name of filename.
func FromFilename(filename string, marker string) (int, error) {
	if marker == "" {
		return 0, fmt.Errorf("%w: empty marker", ErrNoLabel)
	}

	name := filepath.Base(filename)
	i := strings.Index(name, marker)
	if i < 0 {
		return 0, fmt.Errorf("%w: %q has no marker %q", ErrNoLabel, name, marker)
	}

	rest := name[i+len(marker):]
	if len(rest) < digits {
		return 0, fmt.Errorf("%w: %q is too short after marker %q", ErrNoLabel, name, marker)
	}

	id := 0
	for _, c := range rest[:digits] {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %q is not a %d digit action id", ErrNoLabel, rest[:digits], digits)
		}
		id = id*10 + int(c-'0')
	}

	if id < 1 {
		return 0, fmt.Errorf("%w: action id %d in %q", ErrNoLabel, id, name)
	}
	return id - 1, nil
}
