package config

import (
	"fmt"
	"strings"
)

// Strictness indicates how the "check" mode should behave when it
// encounters an error.
type Strictness int

const (
	CrashOnError Strictness = iota
	WarnOnError
)

func (s Strictness) String() string {
	switch s {
	case CrashOnError:
		return "Crash"
	case WarnOnError:
		return "Warn"
	}
	return fmt.Sprintf("Strictness(%d)", int(s))
}

func (con *RunConfig) ParsedStrictness() (Strictness, error) {
	switch strings.ToLower(con.Strictness) {
	case "crash":
		return CrashOnError, nil
	case "warn":
		return WarnOnError, nil
	}
	return 0, fmt.Errorf("[Run] Strictness is '%s', but must be one of "+
		"'Crash' or 'Warn'.", con.Strictness)
}
