// Package storage persists coupled-run results: a metadata JSON document and
// a CSV trace of the interface field per coupling step.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/kspanier/cosolve/internal/solver"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID             string    `json:"id"`
	Participant    string    `json:"participant"`
	Mesh           string    `json:"mesh"`
	Timestamp      time.Time `json:"timestamp"`
	Dt             float64   `json:"dt"`
	Refine         int       `json:"refine"`
	Steps          int       `json:"steps"`
	InterfaceNodes int       `json:"interface_nodes"`
	CGIterations   int       `json:"cg_iterations"`
}

// Save writes one run directory: metadata.json plus boundary.csv holding the
// interface trace (step, time, one column per interface node).
func (s *Store) Save(participant, mesh string, dt float64, refine int, result *solver.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", participant, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:             runID,
		Participant:    participant,
		Mesh:           mesh,
		Timestamp:      time.Now(),
		Dt:             dt,
		Refine:         refine,
		Steps:          result.Steps,
		InterfaceNodes: result.InterfaceNodes,
		CGIterations:   result.CGIterations,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "boundary.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := []string{"step", "time"}
	for i := 0; i < result.InterfaceNodes; i++ {
		header = append(header, "node"+strconv.Itoa(i))
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for step, trace := range result.BoundaryTrace {
		row := []string{
			strconv.Itoa(step),
			strconv.FormatFloat(result.Times[step], 'g', -1, 64),
		}
		for _, v := range trace {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// List returns the stored run ids, newest-first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []RunMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.LoadMetadata(e.Name())
		if err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

// LoadMetadata reads one run's metadata document.
func (s *Store) LoadMetadata(runID string) (RunMetadata, error) {
	var meta RunMetadata
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return meta, err
	}
	return meta, json.Unmarshal(data, &meta)
}

// LoadBoundary reads one run's interface trace, one row of node values per
// step.
func (s *Store) LoadBoundary(runID string) (times []float64, trace [][]float64, err error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "boundary.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("storage: run %s has no boundary trace", runID)
	}

	for _, row := range rows[1:] {
		if len(row) < 3 {
			return nil, nil, fmt.Errorf("storage: malformed boundary row in run %s", runID)
		}
		t, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, nil, err
		}
		vals := make([]float64, 0, len(row)-2)
		for _, cell := range row[2:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, err
			}
			vals = append(vals, v)
		}
		times = append(times, t)
		trace = append(trace, vals)
	}
	return times, trace, nil
}
