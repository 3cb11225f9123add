package suite

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/ulikunitz/xz"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/execprobe/internal/urlutil"
)

// ErrNoCases is returned when a case file declares no cases.
var ErrNoCases = errors.New("case file contains no cases")

// File is the on-disk layout of a case file.
type File struct {
	Cases []TestCase `json:"cases" yaml:"cases" toml:"cases"`
}

// Format identifies a case file encoding.
type Format string

// Supported case file formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// Fetcher retrieves the raw content of a case file.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (io.ReadCloser, error)
}

// compressionExts are stripped before the format extension is read.
var compressionExts = map[string]bool{".gz": true, ".bz2": true, ".xz": true}

// FormatFor picks the decoder for location from its extension, ignoring a
// trailing compression extension. Unknown extensions are read as YAML.
func FormatFor(location string) Format {
	p := location
	if urlutil.GetScheme(location) != "" {
		if u, err := url.Parse(location); err == nil {
			p = u.Path
		}
	}
	ext := strings.ToLower(path.Ext(p))
	if compressionExts[ext] {
		ext = strings.ToLower(path.Ext(strings.TrimSuffix(p, path.Ext(p))))
	}
	switch ext {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// Load fetches and decodes the case file at location. Gzip, bzip2 and xz
// compressed files are detected by their magic bytes.
func Load(ctx context.Context, fetcher Fetcher, location string) ([]TestCase, error) {
	rc, err := fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("fetching case file %s: %w", location, err)
	}
	defer rc.Close()

	r, err := decompress(rc)
	if err != nil {
		return nil, fmt.Errorf("case file %s: %w", location, err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading case file %s: %w", location, err)
	}

	cases, err := Decode(data, FormatFor(location))
	if err != nil {
		return nil, fmt.Errorf("case file %s: %w", location, err)
	}
	return cases, nil
}

// decompress wraps r in a decompressor chosen by the leading magic bytes.
// Uncompressed input is returned unchanged.
func decompress(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(6)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("peeking header: %w", err)
	}

	switch {
	case bytes.HasPrefix(header, []byte{0x1f, 0x8b}):
		gzr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		return gzr, nil
	case bytes.HasPrefix(header, []byte("BZh")):
		return bzip2.NewReader(br), nil
	case bytes.HasPrefix(header, []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}):
		xzr, err := xz.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("creating xz reader: %w", err)
		}
		return xzr, nil
	}
	return br, nil
}

// Decode parses data in the given format and validates every case.
func Decode(data []byte, format Format) ([]TestCase, error) {
	var f File
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &f)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&f)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&f)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}

	if len(f.Cases) == 0 {
		return nil, ErrNoCases
	}
	for i, tc := range f.Cases {
		if err := tc.Validate(); err != nil {
			return nil, fmt.Errorf("cases[%d]: %w", i, err)
		}
	}
	return f.Cases, nil
}

// EncodeYAML writes cases in the case file layout.
func EncodeYAML(w io.Writer, cases []TestCase) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(File{Cases: cases}); err != nil {
		return fmt.Errorf("encoding cases: %w", err)
	}
	return enc.Close()
}
