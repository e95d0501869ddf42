package union

import "github.com/zoobzio/capitan"

// Field keys for union events.
var (
	// KeyActionType is the type of the dispatched action.
	KeyActionType = capitan.NewStringKey("action_type")

	// KeyNamespace is the namespace an action, reducer or widget belongs to.
	KeyNamespace = capitan.NewStringKey("namespace")

	// KeyWidget is the catalogued widget name.
	KeyWidget = capitan.NewStringKey("widget")

	// KeyMountID is the id assigned to a widget mount.
	KeyMountID = capitan.NewIntKey("mount_id")

	// KeyKeys is the comma separated list of registry keys affected.
	KeyKeys = capitan.NewStringKey("keys")

	// KeyCount is the number of items affected by an operation.
	KeyCount = capitan.NewIntKey("count")

	// KeyFunction names the connect function that misbehaved.
	KeyFunction = capitan.NewStringKey("function")

	// KeyState is the current state of the Page.
	KeyState = capitan.NewStringKey("state")

	// KeyOldState is the previous state before a transition.
	KeyOldState = capitan.NewStringKey("old_state")

	// KeyNewState is the new state after a transition.
	KeyNewState = capitan.NewStringKey("new_state")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyDebounce is the configured debounce duration.
	KeyDebounce = capitan.NewDurationKey("debounce")

	// KeyDuration is how long an operation took.
	KeyDuration = capitan.NewDurationKey("duration")

	// KeyPath is the document path a watcher follows.
	KeyPath = capitan.NewStringKey("path")
)
