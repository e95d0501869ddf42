package union

import (
	"encoding/json"
	"mime"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Codec decodes the data embedded in widget placeholders.
type Codec interface {
	// Decode deserializes placeholder text into v.
	Decode(data []byte, v any) error

	// ContentType returns the MIME type placeholders declare to select this codec.
	ContentType() string
}

// format is a Codec backed by a decode function.
type format struct {
	contentType string
	decode      func([]byte, any) error
}

func (f format) Decode(data []byte, v any) error { return f.decode(data, v) }

func (f format) ContentType() string { return f.contentType }

// Built-in codecs. YAML is a superset of JSON, so YAML also accepts JSON
// placeholders.
var (
	JSON Codec = format{contentType: "application/json", decode: json.Unmarshal}
	YAML Codec = format{contentType: "application/x-yaml", decode: yaml.Unmarshal}
)

var (
	codecsMu sync.RWMutex
	codecs   = map[string]Codec{
		"application/json":   JSON,
		"text/json":          JSON,
		"application/x-yaml": YAML,
		"application/yaml":   YAML,
		"text/yaml":          YAML,
	}
)

// RegisterCodec makes c selectable by its content type and any aliases.
// A later registration for the same type replaces the earlier one.
func RegisterCodec(c Codec, aliases ...string) {
	codecsMu.Lock()
	defer codecsMu.Unlock()
	for _, ct := range append([]string{c.ContentType()}, aliases...) {
		codecs[normalizeContentType(ct)] = c
	}
}

// CodecFor returns the codec registered for contentType. Parameters such
// as charset are ignored.
func CodecFor(contentType string) (Codec, bool) {
	codecsMu.RLock()
	defer codecsMu.RUnlock()
	c, ok := codecs[normalizeContentType(contentType)]
	return c, ok
}

func normalizeContentType(ct string) string {
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
