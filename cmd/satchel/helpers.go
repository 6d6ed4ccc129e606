// Shared helpers for satchel CLI commands.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/satchel/internal/paths"
	"github.com/mesh-intelligence/satchel/pkg/item"
	"github.com/mesh-intelligence/satchel/pkg/sqlite"
	"github.com/mesh-intelligence/satchel/pkg/types"
	"github.com/mesh-intelligence/satchel/pkg/vanilla"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// cliError carries the exit code for a failed command.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

// userError marks err as caused by bad input.
func userError(err error) error { return &cliError{code: exitUserError, err: err} }

// sysError marks err as an environment or I/O failure.
func sysError(err error) error { return &cliError{code: exitSysError, err: err} }

// exitCode maps an error returned by Execute to a process exit code.
// Errors without a code come from cobra argument parsing.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitUserError
}

// storeError classifies a stash error.
func storeError(err error) error {
	switch {
	case errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidID),
		errors.Is(err, types.ErrInvalidData),
		errors.Is(err, types.ErrInvalidFilter):
		return userError(err)
	default:
		return sysError(err)
	}
}

// attachStash resolves the data directory and attaches the configured
// backend. The caller must defer Detach.
func attachStash() (types.Store, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	stash := sqlite.NewBackend(sqlite.WithLogger(log.Desugar()))
	if err := stash.Attach(cfg.storeConfig(dataDir)); err != nil {
		return nil, sysError(fmt.Errorf("attach stash: %w", err))
	}
	return stash, nil
}

// detach releases stash and joins a failed Detach into *err. With on_close
// or batch sync the pending writes reach items.jsonl only here.
func detach(stash types.Store, err *error) {
	if derr := stash.Detach(); derr != nil {
		*err = errors.Join(*err, sysError(fmt.Errorf("detach stash: %w", derr)))
	}
}

// loadPlatform returns the platform for the configured catalog.
func loadPlatform() (*item.Platform, error) {
	path, err := paths.ResolveCatalog(flagCatalog, cfg.Catalog)
	if err != nil {
		return nil, sysError(err)
	}
	if path == "" {
		p, err := vanilla.NewPlatform()
		if err != nil {
			return nil, sysError(err)
		}
		return p, nil
	}
	mats, enchs, err := vanilla.LoadFile(path)
	if err != nil {
		return nil, userError(err)
	}
	log.Debug("catalog loaded", "path", path)
	return item.NewPlatform(mats, enchs), nil
}

// newCodec returns a codec that honors strict_decode and logs through the
// CLI logger.
func newCodec(p *item.Platform) *item.Codec {
	return item.NewCodec(p,
		item.WithStrict(cfg.StrictDecode),
		item.WithLogger(log.Desugar()))
}

// readRecord reads a YAML or JSON record from path, or from stdin when path
// is empty or "-".
func readRecord(path string, stdin io.Reader) (types.Record, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return types.Record{}, sysError(err)
	}
	return parseRecord(data)
}

// parseRecord decodes a YAML document, which also covers JSON.
func parseRecord(data []byte) (types.Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return types.Record{}, userError(errors.New("empty record"))
	}
	var rec types.Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return types.Record{}, userError(fmt.Errorf("%w: %w", types.ErrMalformedData, err))
	}
	return rec, nil
}

// entryView is the printed form of a stash entry.
type entryView struct {
	ItemID    string       `json:"item_id" yaml:"item_id"`
	Type      string       `json:"type" yaml:"type"`
	Summary   string       `json:"summary,omitempty" yaml:"summary,omitempty"`
	Record    types.Record `json:"record" yaml:"record"`
	CreatedAt string       `json:"created_at" yaml:"created_at"`
	UpdatedAt string       `json:"updated_at" yaml:"updated_at"`
}

// viewOf builds the printed form of e. The summary is left empty when the
// record does not decode.
func viewOf(e *types.Entry, codec *item.Codec) entryView {
	v := entryView{
		ItemID:    e.ItemID,
		Type:      e.Type,
		Record:    e.Record,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
		UpdatedAt: e.UpdatedAt.Format(time.RFC3339),
	}
	if codec != nil {
		if s, err := codec.Deserialize(e.Record); err == nil {
			v.Summary = s.String()
		}
	}
	return v
}

// writeOutput prints v as indented JSON with --json, YAML otherwise.
func writeOutput(w io.Writer, v any) error {
	if flagJSON {
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return sysError(err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return sysError(err)
	}
	return enc.Close()
}

// loadStack fetches id from the stash and decodes it.
func loadStack(stash types.Store, codec *item.Codec, id string) (*item.Stack, error) {
	e, err := stash.Get(id)
	if err != nil {
		return nil, storeError(err)
	}
	s, err := codec.Deserialize(e.Record)
	if err != nil {
		return nil, userError(fmt.Errorf("item %s: %w", id, err))
	}
	return s, nil
}

// saveStack serializes s and stores it under id.
func saveStack(stash types.Store, codec *item.Codec, id string, s *item.Stack) (string, error) {
	id, err := stash.Put(id, codec.Serialize(s))
	if err != nil {
		return "", storeError(err)
	}
	return id, nil
}
