package plugin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/travel/internal/game/dice"
	"github.com/cory-johannsen/travel/internal/game/travel"
)

// Registration constants shown by hosts.
const (
	ActionID      = "roll"
	ActionIcon    = "dice"
	ActionTitle   = "Travel System"
	TabHeading    = "Settings for Travel System Plugin."
	MountedToggle = "Mounted Travel"
	MountedDesc   = "Enable if the characters are mounted."
)

// ErrUncoveredRange is returned by New when the table leaves part of the
// roller's output unanswered and has no fallback band.
var ErrUncoveredRange = errors.New("travel table does not cover roll range")

// Roll is one triggered travel roll.
type Roll struct {
	ID      uuid.UUID
	Dice    dice.RollResult
	Outcome travel.Outcome
}

// Plugin rolls travel outcomes on demand and owns the mounted setting.
type Plugin struct {
	key    string
	store  SettingsStore
	table  travel.Table
	roller *dice.Roller
	logger *zap.Logger

	// saveMu serializes SetMounted so a failed save never restores a
	// value another caller has since persisted.
	saveMu   sync.Mutex
	mu       sync.RWMutex
	settings Settings
}

// New creates a Plugin storing its settings under key.
//
// Precondition: store, roller and logger must be non-nil; key non-empty.
// Postcondition: Returns a Plugin whose table answers every roll the
// roller can produce, or an error wrapping travel.ErrInvalidTable or
// ErrUncoveredRange.
func New(key string, store SettingsStore, table travel.Table, roller *dice.Roller, logger *zap.Logger) (*Plugin, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	expr := roller.Expression()
	if !table.Covers(expr.Min(), expr.Max()) {
		return nil, fmt.Errorf("%w: %s rolls %d-%d, unanswered %v",
			ErrUncoveredRange, expr.Raw, expr.Min(), expr.Max(), table.Gaps(expr.Min(), expr.Max()))
	}
	return &Plugin{
		key:      key,
		store:    store,
		table:    table,
		roller:   roller,
		logger:   logger,
		settings: DefaultSettings(),
	}, nil
}

// Load restores saved settings and registers the plugin's action and
// settings panel with the host.
func (p *Plugin) Load(ctx context.Context, host Registrar) error {
	if err := p.LoadSettings(ctx); err != nil {
		return err
	}

	host.AddAction(Action{
		ID:    ActionID,
		Icon:  ActionIcon,
		Title: ActionTitle,
		Run:   p.Trigger,
	})
	host.AddSettingTab(SettingTab{
		Heading: TabHeading,
		Toggles: []Toggle{{
			Name:     MountedToggle,
			Desc:     MountedDesc,
			Value:    func() bool { return p.Settings().IsMounted },
			OnChange: p.SetMounted,
		}},
	})

	p.logger.Info("plugin loaded",
		zap.String("key", p.key),
		zap.String("dice", p.roller.Expression().Raw),
		zap.Bool("mounted", p.Settings().IsMounted),
	)
	return nil
}

// Unload releases nothing; it exists so hosts can pair it with Load.
func (p *Plugin) Unload() {
	p.logger.Info("plugin unloaded", zap.String("key", p.key))
}

// LoadSettings reads settings from the store, merging saved values over
// the defaults. A missing key leaves the defaults in place.
func (p *Plugin) LoadSettings(ctx context.Context) error {
	data, err := p.store.Load(ctx, p.key)
	if errors.Is(err, ErrNotFound) {
		data, err = nil, nil
	}
	if err != nil {
		return fmt.Errorf("loading settings %q: %w", p.key, err)
	}
	s, err := DecodeSettings(data)
	if err != nil {
		return fmt.Errorf("loading settings %q: %w", p.key, err)
	}

	p.mu.Lock()
	p.settings = s
	p.mu.Unlock()
	return nil
}

// SaveSettings persists the current settings.
func (p *Plugin) SaveSettings(ctx context.Context) error {
	data, err := EncodeSettings(p.Settings())
	if err != nil {
		return err
	}
	if err := p.store.Save(ctx, p.key, data); err != nil {
		return fmt.Errorf("saving settings %q: %w", p.key, err)
	}
	return nil
}

// Settings returns a copy of the current settings.
func (p *Plugin) Settings() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings
}

// SetMounted updates the travel mode and persists it immediately. The
// in-memory value is restored if the save fails. Concurrent calls run one
// at a time.
func (p *Plugin) SetMounted(ctx context.Context, mounted bool) error {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()

	p.mu.Lock()
	prev := p.settings
	p.settings.IsMounted = mounted
	p.mu.Unlock()

	if err := p.SaveSettings(ctx); err != nil {
		p.mu.Lock()
		p.settings = prev
		p.mu.Unlock()
		return err
	}
	p.logger.Info("travel mode changed", zap.Bool("mounted", mounted))
	return nil
}

// Roll rolls the dice and resolves the outcome under the current travel
// mode.
func (p *Plugin) Roll() (Roll, error) {
	id := uuid.New()
	result := p.roller.Roll()
	mounted := p.Settings().IsMounted

	outcome, err := p.table.Resolve(result.Total(), mounted)
	if err != nil {
		return Roll{}, fmt.Errorf("resolving travel roll %s: %w", id, err)
	}
	if outcome.Fallback {
		p.logger.Warn("roll resolved by fallback band",
			zap.Stringer("roll_id", id),
			zap.Int("roll", outcome.Roll),
			zap.String("band", outcome.Band),
		)
	}
	p.logger.Debug("travel outcome",
		zap.Stringer("roll_id", id),
		zap.Int("roll", outcome.Roll),
		zap.Bool("mounted", mounted),
		zap.Int("distance", outcome.Distance),
		zap.String("encounter", outcome.Encounter),
	)
	return Roll{ID: id, Dice: result, Outcome: outcome}, nil
}

// Trigger rolls and shows the formatted outcome through n.
func (p *Plugin) Trigger(ctx context.Context, n Notifier) error {
	r, err := p.Roll()
	if err != nil {
		return err
	}
	if err := n.Notice(ctx, travel.Notice(r.Outcome)); err != nil {
		return fmt.Errorf("showing travel notice %s: %w", r.ID, err)
	}
	return nil
}
