package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
)

type ExportData struct {
	Meta      RunMetadata   `json:"meta"`
	Frames    []FrameSample `json:"frames"`
	Positions []float32     `json:"positions"`
}

// Export loads a complete run.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return nil, err
	}
	pos, err := s.LoadPositions(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{Meta: *meta, Frames: frames, Positions: pos}, nil
}

func ExportJSON(w io.Writer, data *ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV writes the frame table in the frames.csv layout.
func ExportCSV(w io.Writer, data *ExportData) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(frameRows(data.Frames)); err != nil {
		return err
	}
	return cw.Error()
}
