package encounter

import "errors"

var (
	ErrNoEncounters      = errors.New("no encounters waiting to be closed")
	ErrEncounterNotFound = errors.New("encounter not found")
)
