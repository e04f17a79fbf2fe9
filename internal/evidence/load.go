package evidence

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"crosscheck/internal/services"
)

// Decode reads one device snapshot from r, validating shape at the boundary.
// Shape problems (non-object payload, collections that are not arrays) are
// the one fatal input condition and return services.ErrValidation.
func Decode(r io.Reader) (*Snapshot, error) {
	decoder := json.NewDecoder(r)
	var snapshot Snapshot
	if err := decoder.Decode(&snapshot); err != nil {
		return nil, services.Wrap(services.ErrValidation, "evidence", "decode", "device snapshot", err)
	}
	if err := snapshot.validate(); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Load reads and decodes a snapshot file.
func Load(path string) (*Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "evidence", "load", path, err)
		}
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer file.Close()

	snapshot, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snapshot, nil
}

func (s *Snapshot) validate() error {
	if strings.TrimSpace(s.Profile.ID) == "" {
		return services.Wrap(services.ErrValidation, "evidence", "validate", "profile.id is required", nil)
	}
	if s.Profile.Platform == "" {
		s.Profile.Platform = PlatformUnknown
	}
	if s.Profile.Role == "" {
		s.Profile.Role = RoleUnknown
	}
	return nil
}
