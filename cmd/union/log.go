package main

import (
	"context"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/union"
	"go.uber.org/zap"
)

// logSignals forwards union signals to logger.
func logSignals(logger *zap.Logger) {
	debug := []capitan.Signal{
		union.StoreDispatched,
		union.StoreReducersInjected,
		union.StoreReducersRemoved,
		union.StoreEpicsInjected,
		union.StoreEpicsRemoved,
		union.PageChangeReceived,
	}
	info := []capitan.Signal{
		union.WidgetMounted,
		union.WidgetUnmounted,
		union.PageStarted,
		union.PageStopped,
		union.PageStateChanged,
		union.PageReconciled,
	}
	warn := []capitan.Signal{
		union.StoreDispatchFailed,
		union.EpicDispatchFailed,
		union.ConnectInvalidProps,
		union.PageScanFailed,
		union.PageValidationFailed,
		union.PageReconcileFailed,
		union.WatcherFailed,
	}

	for _, sig := range debug {
		hook(sig, logger.Debug)
	}
	for _, sig := range info {
		hook(sig, logger.Info)
	}
	for _, sig := range warn {
		hook(sig, logger.Warn)
	}
}

func hook(sig capitan.Signal, log func(string, ...zap.Field)) {
	name := sig.Name()
	capitan.Hook(sig, func(_ context.Context, e *capitan.Event) {
		log(name, eventFields(e)...)
	})
}

// stringKeys are the union string fields copied onto log entries.
var stringKeys = []capitan.StringKey{
	union.KeyActionType,
	union.KeyNamespace,
	union.KeyWidget,
	union.KeyKeys,
	union.KeyFunction,
	union.KeyState,
	union.KeyOldState,
	union.KeyNewState,
	union.KeyError,
	union.KeyPath,
}

// eventFields converts the union field keys present on e.
func eventFields(e *capitan.Event) []zap.Field {
	var fields []zap.Field
	for _, key := range stringKeys {
		if v, ok := key.From(e); ok && v != "" {
			fields = append(fields, zap.String(key.Name(), v))
		}
	}

	if v, ok := union.KeyMountID.From(e); ok {
		fields = append(fields, zap.Int("mount_id", v))
	}
	if v, ok := union.KeyCount.From(e); ok {
		fields = append(fields, zap.Int("count", v))
	}
	if v, ok := union.KeyDuration.From(e); ok {
		fields = append(fields, zap.Duration("duration", v))
	}
	if v, ok := union.KeyDebounce.From(e); ok {
		fields = append(fields, zap.Duration("debounce", v))
	}
	return fields
}
