// Package dataset loads the bundled Zachary Karate Club graph and, for
// external experiments, plain-text edge list and label files in the same
// format.
package dataset

import (
	"bytes"
	"embed"
	"fmt"

	"github.com/DZIMDZEM/social-media-analysis/pkg/graph"
)

//go:embed data/karate.edgelist data/karate.factions data/metadata.json
var dataFS embed.FS

// Faction labels recorded by Zachary after the club split.
const (
	FactionMrHi    = "Mr. Hi"
	FactionOfficer = "Officer"
)

// Expected shape of the bundled dataset.
const (
	KarateNodes = 34
	KarateEdges = 78
)

// Load materializes the karate club graph from the embedded data: 34 nodes,
// 78 edges, every node labeled with its faction. The call takes no parameters
// and always produces the same graph; any failure means the embedded data is
// corrupt and is returned as a fatal error.
func Load() (*graph.Graph, error) {
	edgeData, err := dataFS.ReadFile("data/karate.edgelist")
	if err != nil {
		return nil, fmt.Errorf("embedded edge list missing: %w", err)
	}
	g, err := parseEdgeList(bytes.NewReader(edgeData))
	if err != nil {
		return nil, fmt.Errorf("embedded edge list corrupt: %w", err)
	}

	factionData, err := dataFS.ReadFile("data/karate.factions")
	if err != nil {
		return nil, fmt.Errorf("embedded faction file missing: %w", err)
	}
	labels, err := parseLabels(bytes.NewReader(factionData))
	if err != nil {
		return nil, fmt.Errorf("embedded faction file corrupt: %w", err)
	}
	for node, label := range labels {
		if err := g.SetLabel(node, label); err != nil {
			return nil, fmt.Errorf("faction for invalid node: %w", err)
		}
	}

	if err := validateKarate(g); err != nil {
		return nil, fmt.Errorf("embedded dataset corrupt: %w", err)
	}
	return g, nil
}

// validateKarate checks the invariants of the bundled graph: exact node and
// edge counts, structural consistency, connectivity, and a faction on every
// node.
func validateKarate(g *graph.Graph) error {
	if g.NumNodes != KarateNodes {
		return fmt.Errorf("expected %d nodes, got %d", KarateNodes, g.NumNodes)
	}
	if g.NumEdges() != KarateEdges {
		return fmt.Errorf("expected %d edges, got %d", KarateEdges, g.NumEdges())
	}
	if err := g.Validate(); err != nil {
		return err
	}
	if !graph.IsConnected(g) {
		return fmt.Errorf("graph is not connected")
	}
	for v := 0; v < g.NumNodes; v++ {
		switch g.Label(v) {
		case FactionMrHi, FactionOfficer:
		default:
			return fmt.Errorf("node %d has no recognized faction: %q", v, g.Label(v))
		}
	}
	return nil
}
