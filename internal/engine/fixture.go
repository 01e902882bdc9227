package engine

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/fieldstate/internal/diffusion"
	"github.com/danielpatrickdp/fieldstate/internal/journal"
)

// #region fixture

// Fixture bundles everything needed to replay a recorded run offline: the
// engine configuration, the adjacency graph, the event sequence, and the
// expected final snapshot hash.
type Fixture struct {
	Description  string           `json:"description"`
	Config       Config           `json:"config"`
	Graph        diffusion.Config `json:"graph"`
	Events       []journal.Event  `json:"events"`
	ExpectedHash string           `json:"expected_hash"`
}

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// SaveFixture writes a fixture as indented JSON.
func SaveFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion fixture
