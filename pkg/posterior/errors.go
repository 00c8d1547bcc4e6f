package posterior

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownTeam      = errors.New("unknown team")
	ErrMalformedSamples = errors.New("malformed posterior samples")
)

// UnknownTeamError is returned when a team is not in the samples' index
type UnknownTeamError struct {
	Team string
}

func (e *UnknownTeamError) Error() string {
	return fmt.Sprintf("unknown team: %q", e.Team)
}

func (e *UnknownTeamError) Unwrap() error {
	return ErrUnknownTeam
}
