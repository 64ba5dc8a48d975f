// Package backup exports and imports the stored collections as a single
// JSON object keyed by storage key, the same layout as a browser
// localStorage dump.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/theirongolddev/waniala/internal/model"
	"github.com/theirongolddev/waniala/internal/store"
)

// Summary describes the contents of a backup.
type Summary struct {
	Keys        []string    `json:"keys"`
	MillRecords int         `json:"mill_records"`
	Rentals     int         `json:"rentals"`
	Summaries   int         `json:"summaries"`
	RepairFund  model.Money `json:"repair_fund"`
}

// Export writes every stored key to w. Values are the exact stored strings.
func Export(ctx context.Context, st *store.Store, w io.Writer) (Summary, error) {
	snap := st.Snapshot(ctx)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]string(snap)); err != nil {
		return Summary{}, fmt.Errorf("writing backup: %w", err)
	}
	return Summarize(snap), nil
}

// ExportFile writes a backup to path, replacing it atomically.
func ExportFile(ctx context.Context, st *store.Store, path string) (Summary, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return Summary{}, fmt.Errorf("creating backup dir: %w", err)
	}
	var buf bytes.Buffer
	sum, err := Export(ctx, st, &buf)
	if err != nil {
		return sum, err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return sum, fmt.Errorf("writing backup: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return sum, fmt.Errorf("writing backup: %w", err)
	}
	return sum, nil
}

// Parse reads a backup. Each value may be a JSON string holding the stored
// text, or the raw JSON value itself (an array or a number).
func Parse(r io.Reader) (store.Snapshot, error) {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(io.LimitReader(r, maxBackupSize))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing backup: %w", err)
	}

	snap := make(store.Snapshot, len(raw))
	for k, v := range raw {
		v = bytes.TrimSpace(v)
		if len(v) > 0 && v[0] == '"' {
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return nil, fmt.Errorf("parsing backup key %s: %w", k, err)
			}
			snap[k] = s
			continue
		}
		snap[k] = string(v)
	}
	return snap, nil
}

// Import replaces the stored keys present in r. Keys absent from the
// backup are left untouched.
func Import(ctx context.Context, st *store.Store, r io.Reader) (Summary, error) {
	snap, err := Parse(r)
	if err != nil {
		return Summary{}, err
	}
	if err := st.Restore(ctx, snap); err != nil {
		return Summary{}, fmt.Errorf("restoring backup: %w", err)
	}
	return Summarize(snap), nil
}

// ImportFile imports the backup at path.
func ImportFile(ctx context.Context, st *store.Store, path string) (Summary, error) {
	f, err := os.Open(path) //nolint:gosec // backup path is chosen by the local user
	if err != nil {
		return Summary{}, fmt.Errorf("opening backup: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Import(ctx, st, f)
}

// Summarize counts the records in snap. Malformed values count as empty.
func Summarize(snap store.Snapshot) Summary {
	var sum Summary
	for k, v := range snap {
		switch k {
		case store.KeyMill:
			var list []json.RawMessage
			_ = json.Unmarshal([]byte(v), &list)
			sum.MillRecords = len(list)
		case store.KeyRentals:
			var list []json.RawMessage
			_ = json.Unmarshal([]byte(v), &list)
			sum.Rentals = len(list)
		case store.KeySummaries:
			var list []json.RawMessage
			_ = json.Unmarshal([]byte(v), &list)
			sum.Summaries = len(list)
		case store.KeyRepairFund:
			sum.RepairFund = model.ParseAmount(v)
		default:
			continue
		}
		sum.Keys = append(sum.Keys, k)
	}
	sort.Strings(sum.Keys)
	return sum
}
