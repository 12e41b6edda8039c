package tournament

import (
	"fmt"
	"strings"
)

// Tournament owns one season's matches and standings.
type Tournament struct {
	ID             string
	Name           string
	TotalMatchdays int
	Active         bool
}

func (t Tournament) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("tournament id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("tournament name is required")
	}
	if t.TotalMatchdays < 0 {
		return fmt.Errorf("total matchdays must be >= 0")
	}

	return nil
}
