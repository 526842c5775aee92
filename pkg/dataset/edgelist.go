package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/DZIMDZEM/social-media-analysis/pkg/graph"
)

// ReadEdgeList reads a graph from a plain-text edge list file. Empty lines
// and lines starting with '#' are skipped; the first data line must be
// "num_nodes num_edges", each following line "u v".
func ReadEdgeList(path string) (*graph.Graph, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open edge list: %w", err)
	}
	defer file.Close()
	return parseEdgeList(file)
}

// ReadLabels reads node labels from a plain-text file with one "node label"
// entry per line. Labels may contain spaces.
func ReadLabels(path string) (map[int]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open label file: %w", err)
	}
	defer file.Close()
	return parseLabels(file)
}

func parseEdgeList(r io.Reader) (*graph.Graph, error) {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	sawHeader := false
	var g *graph.Graph
	var wantEdges int

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid format on line %d: expected two fields, got %d", lineNum, len(parts))
		}

		if !sawHeader {
			numNodes, err := strconv.Atoi(parts[0])
			if err != nil {
				return nil, fmt.Errorf("invalid node count on line %d: %v", lineNum, err)
			}
			numEdges, err := strconv.Atoi(parts[1])
			if err != nil {
				return nil, fmt.Errorf("invalid edge count on line %d: %v", lineNum, err)
			}
			if numNodes <= 0 || numEdges < 0 {
				return nil, fmt.Errorf("invalid header on line %d: %d nodes, %d edges", lineNum, numNodes, numEdges)
			}
			g = graph.NewGraph(numNodes)
			wantEdges = numEdges
			sawHeader = true
			continue
		}

		u, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid node id on line %d: %v", lineNum, err)
		}
		v, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid node id on line %d: %v", lineNum, err)
		}
		if err := g.AddEdge(u, v); err != nil {
			return nil, fmt.Errorf("bad edge on line %d: %v", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read edge list: %w", err)
	}
	if !sawHeader {
		return nil, fmt.Errorf("edge list has no header line")
	}
	if g.NumEdges() != wantEdges {
		return nil, fmt.Errorf("header promises %d edges, file contains %d", wantEdges, g.NumEdges())
	}
	return g, nil
}

func parseLabels(r io.Reader) (map[int]string, error) {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	labels := make(map[int]string)

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid format on line %d: expected \"node label\"", lineNum)
		}
		node, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid node id on line %d: %v", lineNum, err)
		}
		if _, dup := labels[node]; dup {
			return nil, fmt.Errorf("duplicate label for node %d on line %d", node, lineNum)
		}
		labels[node] = strings.Join(parts[1:], " ")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	return labels, nil
}
