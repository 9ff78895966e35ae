package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/softsim/internal/config"
)

var ErrNoRun = errors.New("storage: run not found")

const (
	metadataFile  = "metadata.json"
	framesFile    = "frames.csv"
	positionsFile = "positions.csv"
)

var frameHeader = []string{"frame", "time", "animate", "cx", "cy", "cz", "radius", "speed", "min_height"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Timestamp time.Time           `json:"timestamp"`
	Dt        float64             `json:"dt"`
	Frames    int                 `json:"frames"`
	Steps     int                 `json:"steps"`
	Duration  float64             `json:"duration"`
	Particles int                 `json:"particles"`
	Tets      int                 `json:"tets"`
	Solver    config.SolverConfig `json:"solver"`
	Scenario  string              `json:"scenario,omitempty"`
	Metrics   map[string]float64  `json:"metrics"`
}

// FrameSample is one row of frames.csv.
type FrameSample struct {
	Frame     int
	Time      float64
	Animate   bool
	Centroid  [3]float64
	Radius    float64
	Speed     float64
	MinHeight float64
}

// Run is everything recorded for one headless session. Positions holds the
// final particle positions.
type Run struct {
	Meta      RunMetadata
	Frames    []FrameSample
	Positions []float32
}

// Save writes run into a fresh directory and returns its id. An id is
// generated when the metadata has none.
func (s *Store) Save(run *Run) (string, error) {
	if run.Meta.ID == "" {
		run.Meta.ID = fmt.Sprintf("%s_%s", run.Meta.Name, uuid.NewString()[:8])
	}
	if run.Meta.Timestamp.IsZero() {
		run.Meta.Timestamp = time.Now()
	}
	runDir := filepath.Join(s.baseDir, run.Meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), run.Meta); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, framesFile), frameRows(run.Frames)); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, positionsFile), positionRows(run.Positions)); err != nil {
		return "", err
	}
	return run.Meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Sync()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func frameRows(frames []FrameSample) [][]string {
	rows := make([][]string, 0, len(frames)+1)
	rows = append(rows, frameHeader)
	for _, f := range frames {
		rows = append(rows, []string{
			strconv.Itoa(f.Frame),
			formatFloat(f.Time),
			strconv.FormatBool(f.Animate),
			formatFloat(f.Centroid[0]),
			formatFloat(f.Centroid[1]),
			formatFloat(f.Centroid[2]),
			formatFloat(f.Radius),
			formatFloat(f.Speed),
			formatFloat(f.MinHeight),
		})
	}
	return rows
}

func positionRows(pos []float32) [][]string {
	rows := make([][]string, 0, len(pos)/3+1)
	rows = append(rows, []string{"particle", "x", "y", "z"})
	for i := 0; i+2 < len(pos); i += 3 {
		rows = append(rows, []string{
			strconv.Itoa(i / 3),
			formatFloat(float64(pos[i])),
			formatFloat(float64(pos[i+1])),
			formatFloat(float64(pos[i+2])),
		})
	}
	return rows
}

// List returns stored runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoRun, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", runID, err)
	}
	return &meta, nil
}

func readCSV(path, runID string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoRun, runID)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}
	return records[1:], nil
}

func (s *Store) LoadFrames(runID string) ([]FrameSample, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, framesFile), runID)
	if err != nil {
		return nil, err
	}

	frames := make([]FrameSample, 0, len(records))
	for _, rec := range records {
		if len(rec) != len(frameHeader) {
			continue
		}
		n, err := strconv.Atoi(rec[0])
		if err != nil {
			continue
		}
		animate, _ := strconv.ParseBool(rec[2])
		f := func(i int) float64 {
			v, _ := strconv.ParseFloat(rec[i], 64)
			return v
		}
		frames = append(frames, FrameSample{
			Frame:     n,
			Time:      f(1),
			Animate:   animate,
			Centroid:  [3]float64{f(3), f(4), f(5)},
			Radius:    f(6),
			Speed:     f(7),
			MinHeight: f(8),
		})
	}
	return frames, nil
}

func (s *Store) LoadPositions(runID string) ([]float32, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, positionsFile), runID)
	if err != nil {
		return nil, err
	}

	pos := make([]float32, 0, 3*len(records))
	for _, rec := range records {
		if len(rec) != 4 {
			continue
		}
		for _, field := range rec[1:] {
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, fmt.Errorf("parse position %q: %w", field, err)
			}
			pos = append(pos, float32(v))
		}
	}
	return pos, nil
}

// Heights extracts the centroid height series of running frames.
func Heights(frames []FrameSample) []float64 {
	out := make([]float64, 0, len(frames))
	for _, f := range frames {
		if f.Animate {
			out = append(out, f.Centroid[1])
		}
	}
	return out
}
