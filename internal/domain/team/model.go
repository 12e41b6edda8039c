package team

import (
	"fmt"
	"strings"
)

// Team is a club taking part in one or more tournaments. Identity is
// immutable; other records reference it by ID.
type Team struct {
	ID           string
	Name         string
	Abbreviation string
}

func (t Team) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("team id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}
	if len(t.Abbreviation) > 5 {
		return fmt.Errorf("team abbreviation must be at most 5 characters")
	}

	return nil
}
