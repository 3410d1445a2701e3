package econet

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/muurk/econet/internal/logging"
)

// Registry payload keys
const (
	errorMarker     = "error"
	regularDataKey  = "curr"
	editableDataKey = "data"
	editableValue   = "value"
)

// Params is the merged parameter record produced by FetchData
type Params map[string]any

// fetchRegistryKey fetches a registry and returns the value under key, or the
// whole payload when key is empty.
//
// A payload carrying the error marker is fetched exactly once more and the
// second payload is used as-is.
func (a *API) fetchRegistryKey(ctx context.Context, registry, key string) (any, error) {
	payload, err := a.client.GetParams(ctx, registry)
	if err != nil {
		return nil, err
	}

	if _, marked := payload[errorMarker]; marked {
		logging.Debug("Registry payload carries an error marker, fetching again",
			zap.String("registry", registry),
		)
		payload, err = a.client.GetParams(ctx, registry)
		if err != nil {
			return nil, err
		}
	}

	if payload == nil {
		return nil, NewDataError(fmt.Sprintf("data fetched for registry %s is empty", registry))
	}

	if key == "" {
		return map[string]any(payload), nil
	}

	value, ok := payload[key]
	if !ok {
		logging.Debug("Registry payload without expected key",
			zap.String("registry", registry),
			zap.String("key", key),
			zap.Any("payload", payload),
		)
		return nil, NewDataError(fmt.Sprintf("data for key %s does not exist in registry %s", key, registry))
	}

	return value, nil
}

// fetchRegistryMap fetches a registry key that must hold a JSON object
func (a *API) fetchRegistryMap(ctx context.Context, registry, key string) (map[string]any, error) {
	value, err := a.fetchRegistryKey(ctx, registry, key)
	if err != nil {
		return nil, err
	}
	m, ok := value.(map[string]any)
	if !ok {
		return nil, NewDataError(fmt.Sprintf("data for key %s in registry %s is not an object", key, registry))
	}
	return m, nil
}

// FetchData fetches the regular, system and editable registries and merges
// them into one record. Later registries win on key collisions and editable
// entries are reduced to their current value.
func (a *API) FetchData(ctx context.Context) (Params, error) {
	regular, err := a.fetchRegistryMap(ctx, RegistryRegular, regularDataKey)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch regular params: %w", err)
	}

	system, err := a.fetchRegistryMap(ctx, RegistrySystem, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch system params: %w", err)
	}

	editable, err := a.fetchRegistryMap(ctx, RegistryEditable, editableDataKey)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch editable params: %w", err)
	}

	return mergeParams(regular, system, unwrapEditable(editable)), nil
}

// unwrapEditable replaces each {value, minv, maxv} entry with its value.
// Entries that are not objects are kept unchanged.
func unwrapEditable(editable map[string]any) map[string]any {
	out := make(map[string]any, len(editable))
	for k, v := range editable {
		if entry, ok := v.(map[string]any); ok {
			out[k] = entry[editableValue]
			continue
		}
		out[k] = v
	}
	return out
}

// mergeParams merges maps in order, later maps overriding earlier ones
func mergeParams(layers ...map[string]any) Params {
	size := 0
	for _, l := range layers {
		size += len(l)
	}
	merged := make(Params, size)
	for _, l := range layers {
		for k, v := range l {
			merged[k] = v
		}
	}
	return merged
}
