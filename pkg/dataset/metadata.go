package dataset

import (
	"encoding/json"
	"fmt"
)

// Metadata describes the bundled dataset for report headers.
type Metadata struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Source          string   `json:"source"`
	NumNodes        int      `json:"num_nodes"`
	NumEdges        int      `json:"num_edges"`
	Attribute       string   `json:"attribute"`
	AttributeValues []string `json:"attribute_values"`
}

// LoadMetadata parses the embedded dataset description.
func LoadMetadata() (*Metadata, error) {
	data, err := dataFS.ReadFile("data/metadata.json")
	if err != nil {
		return nil, fmt.Errorf("embedded metadata missing: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("embedded metadata corrupt: %w", err)
	}
	return &meta, nil
}
