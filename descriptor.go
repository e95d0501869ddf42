package union

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DOM attributes marking widget placeholders.
const (
	AttrWidget    = "data-union-widget"
	AttrNamespace = "data-union-namespace"
	AttrContainer = "data-union-container"

	// AttrType selects the codec for the data of a <script> placeholder by
	// content type, e.g. <script type="application/x-yaml" data-union-widget="...">.
	// It is ignored on other elements.
	AttrType = "type"
)

// validate is the shared validator instance.
var validate = validator.New()

// Descriptor describes one widget placeholder found in a page document.
type Descriptor struct {
	// Widget is the catalogued widget name.
	Widget string `json:"widget" yaml:"widget" validate:"required"`

	// Container identifies the element the widget renders into.
	Container string `json:"container,omitempty" yaml:"container,omitempty" validate:"required_without=Namespace"`

	// Namespace scopes the widget's state. Widgets without one are global.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty" validate:"required_without=Container"`

	// Data is the decoded content embedded in the placeholder element.
	Data map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// Key identifies the descriptor for reconciliation.
func (d Descriptor) Key() string {
	return d.Widget + "|" + d.Namespace + "|" + d.Container
}

// Validate checks the descriptor's struct tags.
func (d Descriptor) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDescriptor, d.label(), err)
	}
	return nil
}

func (d Descriptor) label() string {
	if d.Widget == "" {
		return "<unnamed>"
	}
	return d.Widget
}

// Scan parses an HTML document and returns a descriptor for every element
// carrying data-union-widget, in document order. Non-blank text inside the
// element is decoded into Data with the codec registered for the element's
// type attribute, or with codec when it has none; a nil codec means JSON.
// Every descriptor is validated and duplicates are rejected.
func Scan(r io.Reader, codec Codec) ([]Descriptor, error) {
	if codec == nil {
		codec = JSON
	}
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	var (
		out  []Descriptor
		errs []error
		seen = make(map[string]struct{})
	)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if d, ok, err := descriptorFrom(n, codec); ok {
				switch {
				case err != nil:
					errs = append(errs, err)
				default:
					if _, dup := seen[d.Key()]; dup {
						errs = append(errs, fmt.Errorf("%w: %s: duplicate placeholder (namespace %q, container %q)",
							ErrInvalidDescriptor, d.label(), d.Namespace, d.Container))
					} else {
						seen[d.Key()] = struct{}{}
						out = append(out, d)
					}
				}
				// Placeholders do not nest.
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// descriptorFrom reads the widget attributes of n. ok is false when n is
// not a placeholder.
func descriptorFrom(n *html.Node, codec Codec) (Descriptor, bool, error) {
	var (
		d           Descriptor
		isWidget    bool
		contentType string
	)
	for _, a := range n.Attr {
		switch a.Key {
		case AttrWidget:
			isWidget = true
			d.Widget = strings.TrimSpace(a.Val)
		case AttrNamespace:
			d.Namespace = strings.TrimSpace(a.Val)
		case AttrContainer:
			d.Container = strings.TrimSpace(a.Val)
		case AttrType:
			if n.DataAtom == atom.Script {
				contentType = a.Val
			}
		}
	}
	if !isWidget {
		return d, false, nil
	}

	if contentType != "" {
		c, ok := CodecFor(contentType)
		if !ok {
			return d, true, fmt.Errorf("%w: %s: no codec for type %q", ErrInvalidDescriptor, d.label(), contentType)
		}
		codec = c
	}
	if raw := strings.TrimSpace(textContent(n)); raw != "" {
		if err := codec.Decode([]byte(raw), &d.Data); err != nil {
			return d, true, fmt.Errorf("%w: %s: decode data: %v", ErrInvalidDescriptor, d.label(), err)
		}
	}
	if err := d.Validate(); err != nil {
		return d, true, err
	}
	return d, true, nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return b.String()
}
