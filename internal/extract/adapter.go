package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoInput is returned when the extraction source yields nothing at all.
// This is the only fatal condition in the pipeline; a partially broken
// extraction still produces a usable RawModel.
var ErrNoInput = errors.New("extraction produced no input")

// sectionError matches the error marker the extractor emits in place of a
// section it could not read, e.g. [{"error": "Failed to extract tables: ..."}].
type sectionError struct {
	Error string `json:"error"`
}

// document is the top-level shape of an extraction file. Sections are kept as
// raw JSON so each one can be decoded independently.
type document struct {
	FileInfo      FileInfo        `json:"file_info"`
	Tables        json.RawMessage `json:"tables"`
	Measures      json.RawMessage `json:"measures"`
	Relationships json.RawMessage `json:"relationships"`
	PowerQuery    json.RawMessage `json:"power_query"`
}

// powerQuerySection is the object form the extractor uses for M queries.
type powerQuerySection struct {
	Queries []RawQuery `json:"queries"`
	Error   string     `json:"error"`
}

// LoadFile reads an extraction JSON file and decodes it into a RawModel.
// Each section is decoded independently; a malformed section becomes a Failed
// section, never an error for the whole load. Only an unreadable or empty
// file is fatal.
func LoadFile(path string) (*RawModel, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is caller-provided input
	if err != nil {
		return nil, fmt.Errorf("read extraction file: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoInput
	}

	raw, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if raw.FileInfo.Name == "" {
		raw.FileInfo.Name = filepath.Base(path)
	}
	if raw.FileInfo.SizeBytes == 0 {
		raw.FileInfo.SizeBytes = int64(len(data))
	}
	return raw, nil
}

// Decode parses extraction JSON bytes into a RawModel. The fingerprint
// material (content hash + size) is derived from the bytes themselves so an
// unchanged extraction always fingerprints identically.
func Decode(data []byte) (*RawModel, error) {
	if len(data) == 0 {
		return nil, ErrNoInput
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode extraction document: %w", err)
	}

	sum := sha256.Sum256(data)
	raw := &RawModel{
		FileInfo:      doc.FileInfo,
		ContentSHA256: hex.EncodeToString(sum[:]),
	}
	if raw.FileInfo.SizeBytes == 0 {
		raw.FileInfo.SizeBytes = int64(len(data))
	}

	raw.Tables = decodeSection[RawTable]("tables", doc.Tables)
	raw.Measures = decodeSection[RawMeasure]("measures", doc.Measures)
	raw.Relationships = decodeSection[RawRelationship]("relationships", doc.Relationships)
	raw.Queries = decodeQueries(doc.PowerQuery)

	return raw, nil
}

// decodeSection decodes one list section. A missing section is an empty Ok;
// undecodable JSON or an embedded error marker becomes a Failed section.
func decodeSection[T any](name string, data json.RawMessage) Section[T] {
	if len(data) == 0 || string(data) == "null" {
		return Ok[T](nil)
	}

	var records []T
	if err := json.Unmarshal(data, &records); err == nil {
		// The extractor replaces an unreadable section with a single
		// error-marker record; detect it before accepting the slice.
		var markers []sectionError
		if merr := json.Unmarshal(data, &markers); merr == nil {
			for _, m := range markers {
				if m.Error != "" {
					return Fail[T](m.Error)
				}
			}
		}
		return Ok(records)
	}

	return Fail[T](fmt.Sprintf("section %q is not a record list", name))
}

// decodeQueries handles the power_query section, which the extractor emits as
// an object ({"queries": [...]}), a bare list, or an error object.
func decodeQueries(data json.RawMessage) Section[RawQuery] {
	if len(data) == 0 || string(data) == "null" {
		return Ok[RawQuery](nil)
	}

	var obj powerQuerySection
	if err := json.Unmarshal(data, &obj); err == nil {
		if obj.Error != "" {
			return Fail[RawQuery](obj.Error)
		}
		return Ok(obj.Queries)
	}

	var list []RawQuery
	if err := json.Unmarshal(data, &list); err == nil {
		return Ok(list)
	}

	return Fail[RawQuery]("section \"power_query\" is neither an object nor a list")
}

// Fingerprint returns the content-derived identifier for a raw extraction:
// sha256 of the source bytes plus the declared size. Two extractions of an
// unchanged source always produce the same fingerprint.
func (r *RawModel) Fingerprint() string {
	return fmt.Sprintf("sha256:%s/%d", r.ContentSHA256, r.FileInfo.SizeBytes)
}
