package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	// GraphFileName is the name of the annotated graph file.
	GraphFileName = "program-graph.json"
	// GraphVersion is the current version of the graph format.
	GraphVersion = "1.0"
)

// GraphData is the serialized form of an annotated program graph.
type GraphData struct {
	Metadata GraphMetadata `json:"_metadata"`
	Units    []UnitData    `json:"units"`
}

// GraphMetadata contains metadata about the serialized graph.
type GraphMetadata struct {
	Version     string    `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
	UnitCount   int       `json:"unit_count"`
	NodeCount   int       `json:"node_count"`
}

// UnitData holds one compilation unit's nodes in document order.
type UnitData struct {
	File     string `json:"file"`
	Language string `json:"language"`
	Nodes    []Node `json:"nodes"`
}

// Storage handles reading and writing annotated graph data to disk.
type Storage interface {
	// Load loads the graph data from disk. Returns nil if no file exists.
	Load() (*GraphData, error)

	// Save saves the graph data to disk using atomic write pattern.
	Save(data *GraphData) error

	// Exists checks if the graph file exists.
	Exists() bool
}

// storage implements Storage with atomic write support.
type storage struct {
	graphDir string
}

// NewStorage creates a new graph storage instance.
func NewStorage(graphDir string) (Storage, error) {
	if err := os.MkdirAll(graphDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create graph directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(graphDir, ".tmp"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &storage{graphDir: graphDir}, nil
}

// Export converts a program into its serialized form.
func Export(p *Program) *GraphData {
	data := &GraphData{}
	for _, unit := range p.Units() {
		ud := UnitData{File: unit.File(), Language: unit.Language()}
		unit.Walk(func(n *Node) {
			ud.Nodes = append(ud.Nodes, *n)
		})
		data.Units = append(data.Units, ud)
	}
	sort.Slice(data.Units, func(i, j int) bool { return data.Units[i].File < data.Units[j].File })
	return data
}

// Load loads the graph data from disk.
func (s *storage) Load() (*GraphData, error) {
	filePath := s.graphFilePath()

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, nil // Not an error, just no graph yet
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}

	var data GraphData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse graph JSON: %w", err)
	}
	return &data, nil
}

// Save saves the graph data to disk using atomic write pattern.
func (s *storage) Save(data *GraphData) error {
	data.Metadata.Version = GraphVersion
	data.Metadata.GeneratedAt = time.Now()
	data.Metadata.UnitCount = len(data.Units)
	nodeCount := 0
	for _, u := range data.Units {
		nodeCount += len(u.Nodes)
	}
	data.Metadata.NodeCount = nodeCount

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal graph data: %w", err)
	}

	// Write to temp file first, then rename into place.
	tempPath := filepath.Join(s.graphDir, ".tmp", GraphFileName)
	if err := os.WriteFile(tempPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write temp graph file: %w", err)
	}
	if err := os.Rename(tempPath, s.graphFilePath()); err != nil {
		return fmt.Errorf("failed to move graph file into place: %w", err)
	}
	return nil
}

// Exists checks if the graph file exists.
func (s *storage) Exists() bool {
	_, err := os.Stat(s.graphFilePath())
	return err == nil
}

func (s *storage) graphFilePath() string {
	return filepath.Join(s.graphDir, GraphFileName)
}
