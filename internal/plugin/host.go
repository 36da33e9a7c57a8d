// Package plugin connects the travel resolver to a host application through
// narrow registration, notification and key-value settings interfaces.
package plugin

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrNotFound is returned by a SettingsStore when key has never been saved.
var ErrNotFound = errors.New("settings not found")

// SettingsStore is the host's generic key-value settings persistence.
//
// Implementations MUST be safe for concurrent use, and MUST return
// ctx.Err() without touching stored data when ctx is already done.
type SettingsStore interface {
	// Load returns the value saved under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save replaces the value under key.
	Save(ctx context.Context, key string, value []byte) error
}

// Notifier displays a message to the user who fired an action.
type Notifier interface {
	Notice(ctx context.Context, msg string) error
}

// NotifierFunc adapts a function into a Notifier.
type NotifierFunc func(ctx context.Context, msg string) error

// Notice calls f.
func (f NotifierFunc) Notice(ctx context.Context, msg string) error { return f(ctx, msg) }

// Action is a zero-argument trigger the host exposes to the user, such as
// a ribbon icon or a command.
type Action struct {
	ID    string
	Icon  string
	Title string
	Run   func(ctx context.Context, n Notifier) error
}

// Toggle is a boolean control bound to a settings value. Value reads the
// current setting; OnChange persists a new one.
type Toggle struct {
	Name     string
	Desc     string
	Value    func() bool
	OnChange func(ctx context.Context, value bool) error
}

// SettingTab is a settings panel made of toggles.
type SettingTab struct {
	Heading string
	Toggles []Toggle
}

// Toggle returns the toggle named name, compared case-insensitively. An
// unambiguous prefix ("mounted" for "Mounted Travel") also matches.
func (t SettingTab) Toggle(name string) (Toggle, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Toggle{}, false
	}
	var match []Toggle
	for _, tg := range t.Toggles {
		full := strings.ToLower(tg.Name)
		if full == name {
			return tg, true
		}
		if strings.HasPrefix(full, name) {
			match = append(match, tg)
		}
	}
	if len(match) == 1 {
		return match[0], true
	}
	return Toggle{}, false
}

// Registrar is the capability a host hands to a plugin during Load.
type Registrar interface {
	AddAction(a Action)
	AddSettingTab(tab SettingTab)
}

// Registry is a Registrar that records registrations for a host to render.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	actions []Action
	tabs    []SettingTab
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// AddAction records a.
func (r *Registry) AddAction(a Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
}

// AddSettingTab records tab.
func (r *Registry) AddSettingTab(tab SettingTab) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tabs = append(r.tabs, tab)
}

// Actions returns a snapshot of registered actions in registration order.
func (r *Registry) Actions() []Action {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Action, len(r.actions))
	copy(out, r.actions)
	return out
}

// Action looks up an action by ID or title, case-insensitively.
func (r *Registry) Action(name string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.actions {
		if strings.EqualFold(a.ID, name) || strings.EqualFold(a.Title, name) {
			return a, true
		}
	}
	return Action{}, false
}

// SettingTabs returns a snapshot of registered settings panels.
func (r *Registry) SettingTabs() []SettingTab {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SettingTab, len(r.tabs))
	copy(out, r.tabs)
	return out
}

// FindToggle searches every registered settings panel for a toggle named name.
func (r *Registry) FindToggle(name string) (Toggle, bool) {
	for _, tab := range r.SettingTabs() {
		if tg, ok := tab.Toggle(name); ok {
			return tg, true
		}
	}
	return Toggle{}, false
}
