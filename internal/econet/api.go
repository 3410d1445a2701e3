package econet

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/econet/internal/logging"
	"github.com/muurk/econet/internal/memcache"
)

// Identity placeholders used until the system registry reports real values
const (
	DefaultUID              = "default-uid"
	DefaultSoftwareRevision = "default-sw-revision"
	DefaultHardwareVersion  = "default-hw-version"
	DefaultModelID          = "default-model-id"
)

// System registry identity keys
const (
	sysKeyUID              = "uid"
	sysKeySoftwareRevision = "softVer"
	sysKeyHardwareVersion  = "routerType"
	sysKeyModelID          = "controllerID"
)

// Device information reported for every controller
const (
	Manufacturer   = "PLUM"
	Model          = "ecoNET300"
	ControllerName = "PLUM ecoNET300"
)

const (
	limitsCacheKey = "editParams.limits"
	resultKey      = "result"
	resultOK       = "OK"
)

// Identity identifies the controller behind the ecoNET-300 module
type Identity struct {
	UID              string `json:"uid"`
	SoftwareRevision string `json:"software_revision"`
	HardwareVersion  string `json:"hardware_version"`
	ModelID          string `json:"model_id"`
}

// DeviceInfo describes the controller for hosts that register devices
type DeviceInfo struct {
	Identifier       string `json:"identifier"`
	Name             string `json:"name"`
	Manufacturer     string `json:"manufacturer"`
	Model            string `json:"model"`
	ConfigurationURL string `json:"configuration_url"`
	SWVersion        string `json:"sw_version"`
	HWVersion        string `json:"hw_version"`
}

// API is the facade over a single controller.
// Calls are not meant to run concurrently; hosts serialize them.
type API struct {
	client   *Client
	cache    *memcache.MemCache
	params   ParamMap
	identity Identity
}

// Option configures an API
type Option func(*API)

// WithParamMap replaces the parameter name to device index table
func WithParamMap(m ParamMap) Option {
	return func(a *API) {
		a.params = m
	}
}

// NewAPI creates a facade with placeholder identity. Call Init before use.
func NewAPI(client *Client, cache *memcache.MemCache, opts ...Option) *API {
	if cache == nil {
		cache = memcache.New()
	}

	a := &API{
		client: client,
		cache:  cache,
		params: DefaultParamMap,
		identity: Identity{
			UID:              DefaultUID,
			SoftwareRevision: DefaultSoftwareRevision,
			HardwareVersion:  DefaultHardwareVersion,
			ModelID:          DefaultModelID,
		},
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Create builds a facade and populates its identity from the controller
func Create(ctx context.Context, client *Client, cache *memcache.MemCache, opts ...Option) (*API, error) {
	a := NewAPI(client, cache, opts...)
	if err := a.Init(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Init reads the controller identity from the system registry.
// Missing keys keep their placeholders. Only auth failures and
// cancellation are returned.
func (a *API) Init(ctx context.Context) error {
	sys, err := a.client.GetParams(ctx, RegistrySystem)
	if err != nil {
		return fmt.Errorf("failed to read controller identity: %w", err)
	}

	if sys == nil {
		logging.Warn("System params unavailable, keeping placeholder identity",
			zap.String("host", a.client.Host),
		)
		return nil
	}

	a.identity.UID = identityField(sys, sysKeyUID, a.identity.UID)
	a.identity.SoftwareRevision = identityField(sys, sysKeySoftwareRevision, a.identity.SoftwareRevision)
	a.identity.HardwareVersion = identityField(sys, sysKeyHardwareVersion, a.identity.HardwareVersion)
	a.identity.ModelID = identityField(sys, sysKeyModelID, a.identity.ModelID)

	logging.Debug("Controller identity loaded",
		zap.String("uid", a.identity.UID),
		zap.String("software_revision", a.identity.SoftwareRevision),
		zap.String("hardware_version", a.identity.HardwareVersion),
		zap.String("model_id", a.identity.ModelID),
	)

	return nil
}

func identityField(sys Payload, key, fallback string) string {
	v, ok := sys[key]
	if !ok || v == nil {
		logging.Warn("Identity key missing from system params",
			zap.String("key", key),
			zap.String("placeholder", fallback),
		)
		return fallback
	}
	if s, ok := v.(string); ok {
		return s
	}
	return FormatValue(v)
}

// SetParam writes value to the named parameter.
//
// It returns false without touching the network when name has no device
// index, and false when the controller does not confirm the write. On
// success the written value is cached under name. The error return carries
// auth failures and cancellation only.
func (a *API) SetParam(ctx context.Context, name string, value any) (bool, error) {
	wire := WireValue(value)

	idx, ok := a.params.Index(name)
	if !ok {
		logging.Warn("No device index for parameter, ignoring write",
			zap.String("param", name),
		)
		return false, nil
	}

	resp, err := a.client.SetParam(ctx, idx, wire)
	if err != nil {
		return false, fmt.Errorf("failed to set %s: %w", name, err)
	}

	result, ok := resp[resultKey]
	if !ok {
		logging.Warn("Controller did not confirm write",
			zap.String("param", name),
			zap.String("index", idx),
			zap.String("value", wire),
		)
		return false, nil
	}

	if s, _ := result.(string); s != resultOK {
		logging.Warn("Controller rejected write",
			zap.String("param", name),
			zap.String("index", idx),
			zap.String("value", wire),
			zap.Any("result", result),
		)
		return false, nil
	}

	a.cache.Set(name, wire)
	logging.Info("Parameter written",
		zap.String("param", name),
		zap.String("index", idx),
		zap.String("value", wire),
	)

	return true, nil
}

// GetParamLimits returns the limits of the named parameter.
//
// The editable registry is fetched on the first call and cached for the
// life of the process. A name without a device index, or an index the
// controller does not report, yields nil limits and no error.
func (a *API) GetParamLimits(ctx context.Context, name string) (*Limits, error) {
	if !a.cache.Exists(limitsCacheKey) {
		data, err := a.fetchRegistryKey(ctx, RegistryEditable, editableDataKey)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch limits: %w", err)
		}
		a.cache.Set(limitsCacheKey, data)
	}

	cached, _ := a.cache.Get(limitsCacheKey)
	all, _ := cached.(map[string]any)

	idx, ok := a.params.Index(name)
	if !ok {
		logging.Warn("Requested limits for parameter without device index",
			zap.String("param", name),
		)
		return nil, nil
	}

	entry, ok := all[idx]
	if !ok {
		logging.Warn("Requested limits not reported by controller",
			zap.String("param", name),
			zap.String("index", idx),
		)
		return nil, nil
	}

	limits, ok := limitsFromEntry(entry)
	if !ok {
		logging.Warn("Malformed limits entry",
			zap.String("param", name),
			zap.String("index", idx),
			zap.Any("entry", entry),
		)
		return nil, nil
	}

	return limits, nil
}

// LastWritten returns the value last written to name by SetParam
func (a *API) LastWritten(name string) (string, bool) {
	v, ok := a.cache.Get(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ParamMap returns the parameter name to device index table in use
func (a *API) ParamMap() ParamMap {
	return a.params
}

// Host returns the normalized controller base URL
func (a *API) Host() string {
	return a.client.Host
}

// UID returns the controller unique identifier
func (a *API) UID() string {
	return a.identity.UID
}

// SoftwareRevision returns the module software revision
func (a *API) SoftwareRevision() string {
	return a.identity.SoftwareRevision
}

// HardwareVersion returns the module hardware version
func (a *API) HardwareVersion() string {
	return a.identity.HardwareVersion
}

// ModelID returns the controller model identifier
func (a *API) ModelID() string {
	return a.identity.ModelID
}

// Identity returns a copy of the controller identity
func (a *API) Identity() Identity {
	return a.identity
}

// UniqueID scopes key to this controller as "<uid>-<key>"
func (a *API) UniqueID(key string) string {
	return a.identity.UID + "-" + key
}

// DeviceInfo describes the controller
func (a *API) DeviceInfo() DeviceInfo {
	return DeviceInfo{
		Identifier:       a.identity.UID,
		Name:             ControllerName,
		Manufacturer:     Manufacturer,
		Model:            Model,
		ConfigurationURL: a.client.Host,
		SWVersion:        a.identity.SoftwareRevision,
		HWVersion:        a.identity.HardwareVersion,
	}
}

// WireValue renders a value the way the newParam endpoint expects it.
// Numbers use the shortest decimal form and a trailing ".0" is dropped.
func WireValue(value any) string {
	var s string
	switch v := value.(type) {
	case string:
		s = strings.TrimSpace(v)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	default:
		s = fmt.Sprint(v)
	}
	return strings.TrimSuffix(s, ".0")
}
