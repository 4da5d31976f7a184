package learning

import (
	"errors"
	"fmt"
)

// Label is the class of a training example or a classification result
type Label int

const (
	Ham Label = iota
	Spam
)

// ErrUnknownLabel is returned when a label string is neither "spam" nor "ham"
var ErrUnknownLabel = errors.New("unknown label")

// ParseLabel converts the wire form of a label
func ParseLabel(s string) (Label, error) {
	switch s {
	case "spam":
		return Spam, nil
	case "ham":
		return Ham, nil
	}
	return Ham, fmt.Errorf("%w: %q", ErrUnknownLabel, s)
}

func (l Label) String() string {
	if l == Spam {
		return "spam"
	}
	return "ham"
}

// MarshalText implements encoding.TextMarshaler
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (l *Label) UnmarshalText(text []byte) error {
	parsed, err := ParseLabel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
