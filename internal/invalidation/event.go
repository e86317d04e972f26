// Package invalidation purges the details cache when the landslide
// inventory dataset is republished.
package invalidation

import (
	"fmt"
	"strings"
	"time"
)

// Event announces a dataset republish. Revision increases with every
// publish; replays of an already-applied revision are ignored.
type Event struct {
	Version  int       `json:"version"`
	Dataset  string    `json:"dataset"`
	Revision uint64    `json:"revision"`
	TS       time.Time `json:"ts"`
}

func (e Event) Validate() error {
	if e.Version != 1 {
		return fmt.Errorf("version must be 1")
	}
	if strings.TrimSpace(e.Dataset) == "" {
		return fmt.Errorf("dataset is required")
	}
	if e.Revision == 0 {
		return fmt.Errorf("revision is required")
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	return nil
}
