package config

import (
	"fmt"
	"sort"
	"time"
)

// DefaultPollInterval is the exporter poll interval used when none is configured
const DefaultPollInterval = 30 * time.Second

// DefaultUsername is the factory web user of ecoNET-300 modules
const DefaultUsername = "admin"

// Registry represents the entire user configuration file.
// It stores named controllers and application preferences.
type Registry struct {
	Version     int                    `yaml:"version"`
	Controllers map[string]*Controller `yaml:"controllers,omitempty"` // Keyed by user-chosen name
	Preferences *Preferences           `yaml:"preferences,omitempty"`
}

// Controller represents a known ecoNET-300 module.
// Passwords are never stored.
type Controller struct {
	Host             string    `yaml:"host"`                        // Host or base URL
	Username         string    `yaml:"username,omitempty"`          // Basic auth user
	Nickname         string    `yaml:"nickname,omitempty"`          // User-friendly name
	LastUID          string    `yaml:"last_uid,omitempty"`          // UID reported at last connection
	LastSeen         time.Time `yaml:"last_seen,omitempty"`         // Last successful connection
	SoftwareRevision string    `yaml:"software_revision,omitempty"` // Module software at last connection
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultController string `yaml:"default_controller,omitempty"` // Used when --controller and --host are absent
	PollInterval      string `yaml:"poll_interval,omitempty"`      // Go duration, e.g. "30s"
	DefaultUsername   string `yaml:"default_username,omitempty"`
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Controllers: make(map[string]*Controller),
		Preferences: defaultPreferences(),
	}
}

func defaultPreferences() *Preferences {
	return &Preferences{
		PollInterval:    DefaultPollInterval.String(),
		DefaultUsername: DefaultUsername,
	}
}

// GetController retrieves a controller by name.
// Returns nil if the controller doesn't exist in the registry.
func (r *Registry) GetController(name string) *Controller {
	return r.Controllers[name]
}

// EnsureController ensures a controller entry exists in the registry.
func (r *Registry) EnsureController(name string) *Controller {
	if r.Controllers == nil {
		r.Controllers = make(map[string]*Controller)
	}

	if c, exists := r.Controllers[name]; exists {
		return c
	}

	c := &Controller{}
	r.Controllers[name] = c
	return c
}

// AddController adds or replaces the host and username of a controller.
// The first controller added becomes the default.
func (r *Registry) AddController(name, host, username string) *Controller {
	c := r.EnsureController(name)
	c.Host = host
	c.Username = username

	if r.Preferences == nil {
		r.Preferences = defaultPreferences()
	}
	if r.Preferences.DefaultController == "" {
		r.Preferences.DefaultController = name
	}
	return c
}

// RemoveController deletes a controller. Returns false if it did not exist.
func (r *Registry) RemoveController(name string) bool {
	if _, ok := r.Controllers[name]; !ok {
		return false
	}
	delete(r.Controllers, name)
	if r.Preferences != nil && r.Preferences.DefaultController == name {
		r.Preferences.DefaultController = ""
	}
	return true
}

// RecordConnection stores the identity reported by a controller.
func (r *Registry) RecordConnection(name, uid, softwareRevision string) {
	c := r.EnsureController(name)
	c.LastUID = uid
	c.SoftwareRevision = softwareRevision
	c.LastSeen = time.Now()
}

// SetNickname sets a user-friendly nickname for a controller.
func (r *Registry) SetNickname(name, nickname string) {
	r.EnsureController(name).Nickname = nickname
}

// ControllerNames returns the controller names in sorted order.
func (r *Registry) ControllerNames() []string {
	names := make([]string, 0, len(r.Controllers))
	for name := range r.Controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the named controller, or the default one when name is empty.
// The returned name is empty when nothing matched.
func (r *Registry) Resolve(name string) (string, *Controller) {
	if name == "" && r.Preferences != nil {
		name = r.Preferences.DefaultController
	}
	if name == "" {
		return "", nil
	}
	c := r.Controllers[name]
	if c == nil {
		return "", nil
	}
	return name, c
}

// PollInterval returns the configured poll interval, or DefaultPollInterval
// when unset or unparsable.
func (r *Registry) PollInterval() time.Duration {
	if r.Preferences == nil || r.Preferences.PollInterval == "" {
		return DefaultPollInterval
	}
	d, err := time.ParseDuration(r.Preferences.PollInterval)
	if err != nil || d <= 0 {
		return DefaultPollInterval
	}
	return d
}

// DefaultUsername returns the preferred username for new controllers.
func (r *Registry) DefaultUsername() string {
	if r.Preferences == nil || r.Preferences.DefaultUsername == "" {
		return DefaultUsername
	}
	return r.Preferences.DefaultUsername
}

// Target is the controller a command talks to
type Target struct {
	Name     string // Registry name, empty for an ad-hoc host
	Host     string
	Username string
}

// ResolveTarget picks the controller for a command. An explicit host wins;
// otherwise the named controller, then the default one, is used. username
// overrides the stored user, which falls back to DefaultUsername().
func (r *Registry) ResolveTarget(name, host, username string) (Target, error) {
	var c *Controller
	if host == "" {
		name, c = r.Resolve(name)
		if c == nil {
			if name == "" {
				return Target{}, fmt.Errorf("no controller specified: use --host or add one with 'econet-cfg controllers add'")
			}
			return Target{}, fmt.Errorf("controller %q not found in config", name)
		}
		host = c.Host
	} else if name != "" {
		c = r.GetController(name)
	}

	if username == "" && c != nil {
		username = c.Username
	}
	if username == "" {
		username = r.DefaultUsername()
	}

	return Target{Name: name, Host: host, Username: username}, nil
}
