package union

// Internal action types dispatched by the store and the page.
const (
	// ActionReplace is dispatched after the reducer registry changed so that
	// newly injected reducers can initialise their slice.
	ActionReplace = "@@union/REPLACE"

	// ActionWidgetMounted is dispatched in the widget namespace right after a
	// page mounts a widget. The payload is the widget Descriptor.
	ActionWidgetMounted = "@@union/WIDGET_MOUNTED"

	// ActionWidgetUpdated is dispatched in the widget namespace when the data
	// of a mounted widget's placeholder changes. The payload is the new
	// Descriptor.
	ActionWidgetUpdated = "@@union/WIDGET_UPDATED"

	// ActionWidgetUnmounted is dispatched in the widget namespace right before
	// a page unmounts a widget. The payload is the widget Descriptor.
	ActionWidgetUnmounted = "@@union/WIDGET_UNMOUNTED"
)

// Meta carries routing information for an Action.
type Meta struct {
	// Namespace routes the action to the reducers and epics of one widget
	// instance. Empty means the action is global.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// Action is a dispatched state transition request.
type Action struct {
	Type    string `json:"type" yaml:"type"`
	Payload any    `json:"payload,omitempty" yaml:"payload,omitempty"`
	Meta    Meta   `json:"meta,omitempty" yaml:"meta,omitempty"`
	Error   bool   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Namespace returns the namespace the action is routed to.
func (a Action) Namespace() string {
	return a.Meta.Namespace
}

// WithNamespace returns a copy of the action routed to ns.
func (a Action) WithNamespace(ns string) Action {
	a.Meta.Namespace = ns
	return a
}

// Global reports whether the action carries no namespace.
func (a Action) Global() bool {
	return a.Meta.Namespace == ""
}

// lifecycle reports whether the action is a registry lifecycle action every
// reducer must see regardless of namespace.
func (a Action) lifecycle() bool {
	return a.Type == ActionReplace
}
