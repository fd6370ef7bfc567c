package knu

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Sentinel error kinds for batch loading. Callers use errors.Is to
// distinguish a malformed batch from file-level problems.
var (
	ErrLoad        = errors.New("load batch failed")
	ErrDuplicateID = errors.New("duplicate knu_id in batch")
)

// requiredKeys are the fields every entry must carry. An absent key is a
// load error for the whole batch, never a silent zero value: a missing
// dR_primary would otherwise zero-weight a payout instead of aborting.
var requiredKeys = []string{
	"knu_id", "knot_id", "owner", "E_pred", "dR_primary",
	"dR_adj_sum", "status", "artifacts", "validated_by", "validated_at",
}

// rawBatchFile is the wrapped input form: {"knus": [...]}.
type rawBatchFile struct {
	Knus []json.RawMessage `json:"knus"`
}

// LoadEntries reads a batch of entries from a JSON file. Both a bare array
// and an object with a "knus" key are accepted. Any decode failure, unknown
// field, missing required field, or duplicate knu_id is fatal for the whole
// batch - partial loads are never returned.
func LoadEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrLoad, path, err)
	}
	entries, err := ParseEntries(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// ParseEntries decodes a batch from raw JSON and validates it.
func ParseEntries(data []byte) ([]Entry, error) {
	var raws []json.RawMessage

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := decodeStrict(data, &raws); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoad, err)
		}
	} else {
		var wrapper rawBatchFile
		if err := decodeStrict(data, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoad, err)
		}
		raws = wrapper.Knus
	}

	entries := make([]Entry, 0, len(raws))
	for i, raw := range raws {
		entry, err := parseEntry(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrLoad, i, err)
		}
		entries = append(entries, entry)
	}

	if err := validateBatch(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// parseEntry decodes one entry, first checking that every required key is
// present so absent fields fail loudly instead of defaulting.
func parseEntry(raw json.RawMessage) (Entry, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return Entry{}, err
	}
	for _, key := range requiredKeys {
		if _, ok := keys[key]; !ok {
			return Entry{}, fmt.Errorf("missing required field %q", key)
		}
	}

	var entry Entry
	if err := decodeStrict(raw, &entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// decodeStrict rejects unknown fields so a typo in an input file surfaces
// as a load error instead of a silently ignored key.
func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func validateBatch(entries []Entry) error {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("%w: entry with empty knu_id", ErrLoad)
		}
		if e.KnotID == "" {
			return fmt.Errorf("%w: entry %s: empty knot_id", ErrLoad, e.ID)
		}
		if e.Owner == "" {
			return fmt.Errorf("%w: entry %s: empty owner", ErrLoad, e.ID)
		}
		if e.Effort < 0 {
			return fmt.Errorf("%w: entry %s: negative E_pred %v", ErrLoad, e.ID, e.Effort)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}
