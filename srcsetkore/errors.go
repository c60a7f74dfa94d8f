package srcsetkore

import (
	"errors"
	"fmt"
	"strings"
)

// Kinds of configuration errors. All of them are fatal for an evaluation and
// are reported before any task is scheduled. Use [errors.Is] to check the kind
// of an error returned from this package.
var (
	ErrUnknownUnit           = errors.New("unknown unit")
	ErrCyclicDependency      = errors.New("cyclic dependency")
	ErrDuplicateArtifactName = errors.New("duplicate artifact name")
	ErrInvalidDeclaration    = errors.New("invalid declaration")
)

// ConfigError reports a defect in a build description. Kind is one of the
// Err* kinds of this package. Units names the units involved; for
// [ErrCyclicDependency] it is the cycle path with the first unit repeated at
// the end.
type ConfigError struct {
	Kind  error
	Units []string
	Msg   string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if len(e.Units) > 0 {
		sb.WriteString(": ")
		if e.Kind == ErrCyclicDependency {
			sb.WriteString(strings.Join(e.Units, " -> "))
		} else {
			sb.WriteString(strings.Join(e.Units, ", "))
		}
	}
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	return sb.String()
}

func (e *ConfigError) Unwrap() error { return e.Kind }

func configError(kind error, units ...string) *ConfigError {
	return &ConfigError{Kind: kind, Units: units}
}

func invalidf(format string, args ...any) *ConfigError {
	return &ConfigError{Kind: ErrInvalidDeclaration, Msg: fmt.Sprintf(format, args...)}
}

func unitNames(us []*Unit) []string {
	res := make([]string, len(us))
	for i, u := range us {
		res[i] = u.Name()
	}
	return res
}
