// Package dataset writes rollout transitions to zstd-compressed parquet
// files for offline training.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/vovakirdan/routeboard/internal/games/routing/core"
	"github.com/vovakirdan/routeboard/internal/rollout"
)

// SchemaVersion is stored under the "schema" metadata key.
const SchemaVersion = "transition_row_v2"

// TransitionRow is one router turn.
//
// Board, Directions and Mask are the observation planes the router saw, one
// byte per cell in row-major order. StepsHint and Phase complete the
// observation. Action holds the chosen category per cell.
// Score is the episode's final total, repeated on every row so a single row
// is a complete training sample.
type TransitionRow struct {
	Variant    string  `parquet:"variant,dict"`
	EpisodeID  int32   `parquet:"episode_id"`
	Seed       int64   `parquet:"seed"`
	Turn       int32   `parquet:"turn"`
	Width      int32   `parquet:"width"`
	Height     int32   `parquet:"height"`
	Board      []byte  `parquet:"board"`
	Directions []byte  `parquet:"directions"`
	Mask       []byte  `parquet:"mask"`
	Action     []byte  `parquet:"action"`
	StepsHint  int32   `parquet:"steps_hint"`
	Phase      string  `parquet:"phase,dict"`
	Reward     float32 `parquet:"reward"`
	Terminated bool    `parquet:"terminated"`
	Score      int32   `parquet:"score"`
}

// FromEpisode flattens a recorded episode into rows.
func FromEpisode(ep rollout.Episode) []TransitionRow {
	rows := make([]TransitionRow, 0, len(ep.Transitions))
	for _, tr := range ep.Transitions {
		obs := tr.Observation
		action := make([]byte, len(tr.Action))
		for i, v := range tr.Action {
			action[i] = byte(v)
		}
		rows = append(rows, TransitionRow{
			Variant:    ep.Variant,
			EpisodeID:  int32(ep.Index),
			Seed:       ep.Seed,
			Turn:       int32(tr.Turn),
			Width:      int32(obs.Width),
			Height:     int32(obs.Height),
			Board:      append([]byte(nil), obs.Board...),
			Directions: append([]byte(nil), obs.Directions...),
			Mask:       append([]byte(nil), obs.EditMask...),
			Action:     action,
			StepsHint:  int32(obs.StepsHint),
			Phase:      obs.Phase,
			Reward:     float32(tr.Reward),
			Terminated: tr.Terminated,
			Score:      int32(ep.Score.Total),
		})
	}
	return rows
}

// Observation rebuilds the observation stored in a row.
func (r TransitionRow) Observation() core.Observation {
	return core.Observation{
		Width:      int(r.Width),
		Height:     int(r.Height),
		Board:      append([]uint8(nil), r.Board...),
		Directions: append([]uint8(nil), r.Directions...),
		EditMask:   append([]uint8(nil), r.Mask...),
		StepsHint:  int(r.StepsHint),
		Phase:      r.Phase,
	}
}

// Metadata builds the key/value metadata for a variant and rule set.
func Metadata(variant string, rules core.Rules) (map[string]string, error) {
	data, err := json.Marshal(rules)
	if err != nil {
		return nil, fmt.Errorf("dataset: encode rules: %w", err)
	}
	return map[string]string{"variant": variant, "rules": string(data)}, nil
}

// BatchWriter buffers rows and flushes them into numbered parquet files.
// Each file is written under a .tmp name and renamed when complete.
type BatchWriter struct {
	outDir  string
	maxRows int
	meta    map[string]string

	rows  []TransitionRow
	seq   int
	files []string
	total int
}

// NewBatchWriter creates outDir if needed. maxRows <= 0 means one file per
// explicit Flush.
func NewBatchWriter(outDir string, maxRows int, meta map[string]string) (*BatchWriter, error) {
	if outDir == "" {
		return nil, fmt.Errorf("dataset: outDir is required")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("dataset: create output dir: %w", err)
	}
	return &BatchWriter{outDir: outDir, maxRows: maxRows, meta: meta}, nil
}

// Write buffers rows, flushing whenever the buffer reaches maxRows.
func (b *BatchWriter) Write(rows ...TransitionRow) error {
	b.rows = append(b.rows, rows...)
	if b.maxRows > 0 && len(b.rows) >= b.maxRows {
		return b.Flush()
	}
	return nil
}

// Flush writes the buffered rows to a new file. An empty buffer is a no-op.
func (b *BatchWriter) Flush() error {
	if len(b.rows) == 0 {
		return nil
	}

	b.seq++
	name := fmt.Sprintf("transitions_%d_%d.parquet", time.Now().Unix(), b.seq)
	outPath := filepath.Join(b.outDir, name)
	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, b.rows, b.options()...); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("dataset: write parquet: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("dataset: rename parquet: %w", err)
	}

	b.total += len(b.rows)
	b.rows = b.rows[:0]
	b.files = append(b.files, outPath)
	return nil
}

func (b *BatchWriter) options() []parquet.WriterOption {
	opts := []parquet.WriterOption{
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", SchemaVersion),
	}
	keys := make([]string, 0, len(b.meta))
	for k := range b.meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		opts = append(opts, parquet.KeyValueMetadata(k, b.meta[k]))
	}
	return opts
}

// Close flushes any remaining rows.
func (b *BatchWriter) Close() error {
	return b.Flush()
}

// Files returns the paths written so far.
func (b *BatchWriter) Files() []string {
	return append([]string(nil), b.files...)
}

// Rows returns the number of rows written to disk.
func (b *BatchWriter) Rows() int { return b.total }

// Buffered returns the number of rows waiting for a flush.
func (b *BatchWriter) Buffered() int { return len(b.rows) }

// ReadTransitions loads every row of a file.
func ReadTransitions(path string) ([]TransitionRow, error) {
	rows, err := parquet.ReadFile[TransitionRow](path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	return rows, nil
}

// ReadMetadata returns the value stored under key in a file's footer.
func ReadMetadata(path, key string) (string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", false, fmt.Errorf("dataset: stat %s: %w", path, err)
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return "", false, fmt.Errorf("dataset: open parquet %s: %w", path, err)
	}
	v, ok := pf.Lookup(key)
	return v, ok, nil
}
