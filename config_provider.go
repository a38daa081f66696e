package loom

import "fmt"

// ConfigProvider wraps a configuration value fed by the application's
// feeders before ModuleInit runs. GetConfig must return a pointer so feeders
// can populate it in place.
type ConfigProvider interface {
	GetConfig() any
}

// StdConfigProvider wraps a plain configuration struct.
type StdConfigProvider struct {
	cfg any
}

// NewStdConfigProvider creates a provider around cfg, which should be a
// pointer to the configuration struct.
func NewStdConfigProvider(cfg any) *StdConfigProvider {
	return &StdConfigProvider{cfg: cfg}
}

func (s *StdConfigProvider) GetConfig() any {
	return s.cfg
}

// loadConfigSections feeds the application-level config and every composed
// module section through the configured feeders. Feeders supporting keyed
// extraction receive the section name so multi-section files map naturally.
func (app *Application) loadConfigSections(comp *composition) error {
	if app.cfgProvider != nil {
		if err := app.feedConfig("", app.cfgProvider.GetConfig()); err != nil {
			return err
		}
	}

	for section, provider := range comp.configSections {
		app.cfgSections[section] = provider
	}

	for section, provider := range app.cfgSections {
		if err := app.feedConfig(section, provider.GetConfig()); err != nil {
			return fmt.Errorf("config section %q: %w", section, err)
		}
		app.logger.Debug("Loaded config section", "section", section)
	}

	return nil
}

func (app *Application) feedConfig(section string, target any) error {
	if target == nil {
		return ErrConfigProviderNil
	}
	for _, feeder := range app.feeders {
		if section != "" {
			if keyed, ok := feeder.(KeyFeeder); ok {
				if err := keyed.FeedKey(section, target); err != nil {
					return fmt.Errorf("feeder %T: %w", feeder, err)
				}
				continue
			}
		}
		if err := feeder.Feed(target); err != nil {
			return fmt.Errorf("feeder %T: %w", feeder, err)
		}
	}
	return nil
}
