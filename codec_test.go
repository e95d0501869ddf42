package union

import (
	"errors"
	"testing"
)

func TestJSON_DecodeData(t *testing.T) {
	var data map[string]any
	if err := JSON.Decode([]byte(`{"title": "cart", "limit": 5}`), &data); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if data["title"] != "cart" {
		t.Errorf("expected title 'cart', got %v", data["title"])
	}
	if data["limit"] != float64(5) {
		t.Errorf("expected limit 5, got %v", data["limit"])
	}
}

func TestJSON_DecodeAction(t *testing.T) {
	var a Action
	if err := JSON.Decode([]byte(`{"type": "INC", "meta": {"namespace": "w1"}}`), &a); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if a.Type != "INC" || a.Namespace() != "w1" {
		t.Errorf("unexpected action %+v", a)
	}
}

func TestYAML_DecodeAcceptsJSON(t *testing.T) {
	var data map[string]any
	if err := YAML.Decode([]byte(`{"title": "json-compat"}`), &data); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if data["title"] != "json-compat" {
		t.Errorf("expected title 'json-compat', got %v", data["title"])
	}
}

func TestCodecs_DecodeInvalid(t *testing.T) {
	tests := []struct {
		name  string
		codec Codec
		input string
	}{
		{"json", JSON, `{not valid json}`},
		{"yaml", YAML, "title: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data map[string]any
			if err := tt.codec.Decode([]byte(tt.input), &data); err == nil {
				t.Error("expected decode error")
			}
		})
	}
}

func TestCodecFor(t *testing.T) {
	tests := []struct {
		contentType string
		want        Codec
	}{
		{"application/json", JSON},
		{"application/json; charset=utf-8", JSON},
		{"Text/JSON", JSON},
		{"application/x-yaml", YAML},
		{"application/yaml", YAML},
		{"text/yaml", YAML},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			got, ok := CodecFor(tt.contentType)
			if !ok {
				t.Fatalf("no codec for %q", tt.contentType)
			}
			if got.ContentType() != tt.want.ContentType() {
				t.Errorf("expected %s, got %s", tt.want.ContentType(), got.ContentType())
			}
		})
	}

	if _, ok := CodecFor("text/plain"); ok {
		t.Error("expected no codec for text/plain")
	}
}

func TestRegisterCodec(t *testing.T) {
	errCSV := errors.New("csv not supported")
	csv := format{contentType: "text/x-union-test", decode: func([]byte, any) error { return errCSV }}
	RegisterCodec(csv, "application/x-union-test")

	for _, ct := range []string{"text/x-union-test", "application/x-union-test"} {
		c, ok := CodecFor(ct)
		if !ok {
			t.Fatalf("expected codec registered for %q", ct)
		}
		if err := c.Decode(nil, nil); !errors.Is(err, errCSV) {
			t.Errorf("expected registered codec, got error %v", err)
		}
	}
}
