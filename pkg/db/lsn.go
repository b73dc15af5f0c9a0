package db

import (
	"fmt"
	"strconv"
	"strings"
)

// LSN is a PostgreSQL write-ahead log position.
type LSN uint64

// InvalidLSN marks a log position that has not been measured.
const InvalidLSN LSN = 0

// IsValid reports whether the position has been measured.
func (lsn LSN) IsValid() bool {
	return lsn != InvalidLSN
}

// String formats the position in the server's XXX/XXX hexadecimal notation.
func (lsn LSN) String() string {
	return fmt.Sprintf("%X/%X", uint32(lsn>>32), uint32(lsn))
}

// ParseLSN parses the server's XXX/XXX notation.
func ParseLSN(s string) (LSN, error) {
	hiStr, loStr, ok := strings.Cut(s, "/")
	if !ok {
		return InvalidLSN, fmt.Errorf("invalid log position %q", s)
	}
	hi, err := strconv.ParseUint(hiStr, 16, 32)
	if err != nil {
		return InvalidLSN, fmt.Errorf("invalid log position %q: %w", s, err)
	}
	lo, err := strconv.ParseUint(loStr, 16, 32)
	if err != nil {
		return InvalidLSN, fmt.Errorf("invalid log position %q: %w", s, err)
	}
	return LSN(hi<<32 | lo), nil
}
