package triggers

import (
	"github.com/arthur-debert/pkgmerge/pkg/registry"
)

// Names of the bundled trigger factories.
const (
	LdConfigName  = "ldconfig"
	InfoRegenName = "info_regen"
)

// Factory builds a trigger from settings and collaborators.
type Factory func(s Settings, d Deps) Trigger

var factories = registry.New[Factory]("trigger factory")

func init() {
	registry.MustRegister(factories, LdConfigName, func(s Settings, d Deps) Trigger {
		d = d.withDefaults()
		return NewLdConfig(s.LdConfig, d).WithWatcher(d.newWatcher(s.Watcher))
	})
	registry.MustRegister(factories, InfoRegenName, func(s Settings, d Deps) Trigger {
		d = d.withDefaults()
		return NewInfoRegen(s.Info, d).WithWatcher(d.newWatcher(s.Watcher))
	})
}

// Factories exposes the factory registry so callers can add their own.
func Factories() registry.Registry[Factory] { return factories }

// Build instantiates the named trigger.
func Build(name string, s Settings, d Deps) (Trigger, error) {
	f, err := factories.Get(name)
	if err != nil {
		return nil, err
	}
	return f(s, d), nil
}

// BuildAll instantiates each named trigger in order.
func BuildAll(names []string, s Settings, d Deps) ([]Trigger, error) {
	out := make([]Trigger, 0, len(names))
	for _, name := range names {
		t, err := Build(name, s, d)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
