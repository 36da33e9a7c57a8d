package telnet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/travel/internal/plugin"
)

// Host exposes every action and settings panel in a plugin.Registry as
// Telnet commands.
type Host struct {
	registry *plugin.Registry
	logger   *zap.Logger
}

// NewHost creates a Host serving reg.
//
// Precondition: reg and logger must be non-nil.
func NewHost(reg *plugin.Registry, logger *zap.Logger) *Host {
	return &Host{registry: reg, logger: logger}
}

// HandleSession runs the command loop until the client quits, disconnects
// or ctx is cancelled.
func (h *Host) HandleSession(ctx context.Context, conn *Conn) error {
	notifier := plugin.NotifierFunc(func(_ context.Context, msg string) error {
		return conn.WriteLine(Colorize(Cyan, msg))
	})

	if err := conn.WriteLine(Colorize(Bold, "Travel System") + " - type " + Colorize(Yellow, "help") + " for commands."); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := conn.WritePrompt("> "); err != nil {
			return err
		}
		line, err := conn.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		quit, err := h.dispatch(ctx, conn, notifier, strings.TrimSpace(line))
		if err != nil {
			h.logger.Warn("command failed",
				zap.String("remote_addr", conn.RemoteAddr().String()),
				zap.String("command", line),
				zap.Error(err),
			)
			if werr := conn.WriteLine(Colorize(Red, err.Error())); werr != nil {
				return werr
			}
		}
		if quit {
			return nil
		}
	}
}

func (h *Host) dispatch(ctx context.Context, conn *Conn, n plugin.Notifier, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "quit", "exit":
		return true, conn.WriteLine("Safe travels.")
	case "help":
		return false, conn.WriteLine(h.help())
	case "settings":
		return false, conn.WriteLine(RenderSettings(h.registry.SettingTabs()))
	case "set":
		if len(args) < 2 {
			return false, errors.New("usage: set <setting> on|off")
		}
		return false, h.setToggle(ctx, conn, strings.Join(args[:len(args)-1], " "), args[len(args)-1])
	}

	// a bare toggle name flips or sets it: "mounted", "mounted off"
	if tg, ok := h.registry.FindToggle(cmd); ok && len(args) <= 1 {
		value := "toggle"
		if len(args) == 1 {
			value = args[0]
		}
		return false, h.setToggle(ctx, conn, tg.Name, value)
	}

	if a, ok := h.registry.Action(line); ok {
		return false, a.Run(ctx, n)
	}
	if a, ok := h.registry.Action(cmd); ok && len(args) == 0 {
		return false, a.Run(ctx, n)
	}
	return false, fmt.Errorf("unknown command %q", cmd)
}

func (h *Host) setToggle(ctx context.Context, conn *Conn, name, value string) error {
	tg, ok := h.registry.FindToggle(name)
	if !ok {
		return fmt.Errorf("unknown setting %q", name)
	}
	var on bool
	switch strings.ToLower(value) {
	case "on", "true", "yes":
		on = true
	case "off", "false", "no":
		on = false
	case "toggle":
		on = !tg.Value()
	default:
		return fmt.Errorf("value must be on or off, got %q", value)
	}
	if err := tg.OnChange(ctx, on); err != nil {
		return err
	}
	return conn.WriteLine(fmt.Sprintf("%s: %s", tg.Name, onOff(tg.Value())))
}

func (h *Host) help() string {
	var b strings.Builder
	b.WriteString("Commands:")
	for _, a := range h.registry.Actions() {
		fmt.Fprintf(&b, "\n  %-18s %s", a.ID, a.Title)
	}
	b.WriteString("\n  settings           show settings")
	b.WriteString("\n  set <name> on|off  change a setting")
	b.WriteString("\n  quit               disconnect")
	return b.String()
}

// RenderSettings draws settings panels as text.
func RenderSettings(tabs []plugin.SettingTab) string {
	var b strings.Builder
	for i, tab := range tabs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(Colorize(Bold, tab.Heading))
		for _, tg := range tab.Toggles {
			mark := "[ ]"
			if tg.Value() {
				mark = Colorize(Green, "[x]")
			}
			fmt.Fprintf(&b, "\n  %s %s - %s", mark, tg.Name, Colorize(Dim, tg.Desc))
		}
	}
	return b.String()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
