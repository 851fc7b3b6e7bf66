package cache

import "time"

// Domain names. Each is a separate store; keys never collide across them.
const (
	DomainAI      = "ai"
	DomainProfile = "profile"
	DomainDataset = "dataset"
)

// DomainConfig sizes a single cache domain.
type DomainConfig struct {
	MaxSize int
	TTL     time.Duration
}

// Defaults for the three domains.
var (
	DefaultAIDomain      = DomainConfig{MaxSize: 50, TTL: 10 * time.Minute}
	DefaultProfileDomain = DomainConfig{MaxSize: 20, TTL: 5 * time.Minute}
	DefaultDatasetDomain = DomainConfig{MaxSize: 200, TTL: time.Hour}
)

// Domains bundles the isolated stores used by the gateway.
type Domains struct {
	AI      *ExpiringCache
	Profile *ExpiringCache
	Dataset *ExpiringCache
}

// NewDomains builds the ai, profile and dataset stores. Options (e.g. WithClock)
// apply to all three.
func NewDomains(ai, profile, dataset DomainConfig, opts ...Option) *Domains {
	return &Domains{
		AI:      NewExpiringCache(DomainAI, ai.MaxSize, ai.TTL, opts...),
		Profile: NewExpiringCache(DomainProfile, profile.MaxSize, profile.TTL, opts...),
		Dataset: NewExpiringCache(DomainDataset, dataset.MaxSize, dataset.TTL, opts...),
	}
}

// Stats returns per-domain occupancy keyed by domain name.
func (d *Domains) Stats() map[string]Stats {
	return map[string]Stats{
		DomainAI:      d.AI.Stats(),
		DomainProfile: d.Profile.Stats(),
		DomainDataset: d.Dataset.Stats(),
	}
}

// ClearAll empties every domain.
func (d *Domains) ClearAll() {
	d.AI.Clear()
	d.Profile.Clear()
	d.Dataset.Clear()
}
