package savegame

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/gjson"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
	"github.com/Libretto-Pic/the-sage-game/internal/engine"
)

var (
	// ErrCorrupt is the engine's sentinel, so a Game can tell a damaged save from
	// an unreadable store.
	ErrCorrupt       = engine.ErrCorruptSave
	ErrInvalidImport = errors.New("not a valid save file")
)

// maxImportSize bounds how much of an import file is read.
const maxImportSize = 16 << 20

// Codec turns player states into save blobs and back.
type Codec struct {
	migrator Migrator
}

func NewCodec(cat *catalog.Catalog) *Codec {
	names := make([]string, 0, len(cat.Kazuki))
	for _, k := range cat.Kazuki {
		names = append(names, k.Name)
	}
	return &Codec{migrator: Migrator{KazukiNames: names}}
}

func (c *Codec) Encode(st *engine.PlayerState) ([]byte, error) {
	st = st.Clone()
	st.Normalize()
	b, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("encode save: %w", err)
	}
	return b, nil
}

// Decode migrates a blob of any known version and returns the current state.
func (c *Codec) Decode(data []byte) (*engine.PlayerState, error) {
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, ErrCorrupt
	}
	migrated, err := c.migrator.Migrate(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	var st engine.PlayerState
	if err := json.Unmarshal(migrated, &st); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	st.Normalize()
	return &st, nil
}

// Export writes the state as an indented JSON file.
func (c *Codec) Export(w io.Writer, st *engine.PlayerState) error {
	st = st.Clone()
	st.Normalize()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// Import reads an exported file. It only accepts input whose level is a number and
// whose missions are a list.
func (c *Codec) Import(r io.Reader) (*engine.PlayerState, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImportSize))
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	if err := Validate(data); err != nil {
		return nil, err
	}
	st, err := c.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImport, err)
	}
	return st, nil
}

func Validate(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: malformed JSON", ErrInvalidImport)
	}
	if gjson.GetBytes(data, "level").Type != gjson.Number {
		return fmt.Errorf("%w: level must be a number", ErrInvalidImport)
	}
	if !gjson.GetBytes(data, "missions").IsArray() {
		return fmt.Errorf("%w: missions must be a list", ErrInvalidImport)
	}
	return nil
}
