package processor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/woozymasta/gisimport/internal/geo"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	jsonmin "github.com/tdewolff/minify/v2/json"
	"gopkg.in/yaml.v3"
)

// DateLayout is the save-file date format; the engine sorts saves by this string.
const DateLayout = "2006-01-02 15:04:05"

// SaveFile is the envelope loaded by the engine from its Saved/GISData directory.
// Field order is the serialized key order.
type SaveFile struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"desc" yaml:"desc"`
	Date        string        `json:"date" yaml:"date"`
	Data        []geo.Feature `json:"data" yaml:"data"`
}

// WriteOptions controls save-file serialization.
type WriteOptions struct {
	Format    string // "json" or "yaml"
	Compact   bool   // single-line JSON
	Precision int    // significant digits kept in JSON numbers, 0 keeps all
}

// NewSaveFile wraps features into an envelope with a fresh id.
// Every %d in descTemplate is replaced with the feature count, other text is kept as is.
func NewSaveFile(name, descTemplate string, features []geo.Feature, now time.Time) SaveFile {
	if features == nil {
		features = []geo.Feature{}
	}

	desc := strings.ReplaceAll(descTemplate, "%d", strconv.Itoa(len(features)))

	return SaveFile{
		ID:          uuid.NewString(),
		Name:        name,
		Description: desc,
		Date:        now.Format(DateLayout),
		Data:        features,
	}
}

// MarshalSaveFile serializes the envelope.
// JSON keeps non-ASCII text verbatim and puts every element on its own line without indentation.
func MarshalSaveFile(sf SaveFile, opts WriteOptions) ([]byte, error) {
	if opts.Format == "yaml" {
		return yaml.Marshal(sf)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(sf); err != nil {
		return nil, err
	}
	raw := bytes.TrimRight(buf.Bytes(), "\n")

	if opts.Compact || opts.Precision > 0 {
		m := minify.New()
		m.Add("application/json", &jsonmin.Minifier{Precision: opts.Precision})

		minified, err := m.Bytes("application/json", raw)
		if err != nil {
			return nil, fmt.Errorf("minify save file: %w", err)
		}
		raw = minified
	}

	if opts.Compact {
		return raw, nil
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", ""); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// WriteSaveFile serializes the envelope to path, replacing any existing file.
// The file is written in place, an interrupted write leaves it truncated.
func WriteSaveFile(path string, sf SaveFile, opts WriteOptions) (err error) {
	data, err := MarshalSaveFile(sf, opts)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
			if err == nil {
				err = closeErr
			}
		}
	}()

	if _, err := f.Write(data); err != nil {
		return err
	}

	log.Debug().
		Str("path", path).
		Int("bytes", len(data)).
		Int("features", len(sf.Data)).
		Msg("Save file written")

	return nil
}
