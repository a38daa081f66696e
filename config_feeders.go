package loom

import "github.com/loomworks/loom/feeders"

// Feeder populates a configuration target from some source (environment,
// YAML file, TOML file, ...).
type Feeder interface {
	Feed(target any) error
}

// KeyFeeder extends Feeder with extraction of a single named section from a
// multi-section source.
type KeyFeeder interface {
	Feeder
	FeedKey(key string, target any) error
}

// ConfigFeeders is the default feeder set used when no WithConfigFeeders
// option is supplied. Environment variables only; file feeders are opt-in
// since they need a path.
var ConfigFeeders = []Feeder{
	feeders.NewEnvFeeder(),
}
