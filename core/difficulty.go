package core

import (
	"strings"
	"time"

	"hashvote/config"
	"hashvote/util"
)

const (
	DefaultDifficultyBits = 18
	DefaultReducedBits    = 6

	defaultSearchTimeout = 30 * time.Second
)

var defaultLowStakesPrefixes = []string{"test_", "audit_"}

// DifficultyPolicy maps a poll namespace to its difficulty bits. Admission and
// audit share the same policy instance, so a chain is always audited under the
// difficulty it was admitted with.
type DifficultyPolicy struct {
	bits              int
	reducedBits       int
	lowStakesPrefixes []string
	searchTimeout     time.Duration
}

func NewDifficultyPolicy(cfg *config.Difficulty) *DifficultyPolicy {
	p := &DifficultyPolicy{
		bits:              DefaultDifficultyBits,
		reducedBits:       DefaultReducedBits,
		lowStakesPrefixes: defaultLowStakesPrefixes,
		searchTimeout:     defaultSearchTimeout,
	}
	if cfg == nil {
		return p
	}
	if cfg.Bits != nil {
		p.bits = *cfg.Bits
	}
	if cfg.ReducedBits != nil {
		p.reducedBits = *cfg.ReducedBits
	}
	if cfg.LowStakesPrefixes != nil {
		p.lowStakesPrefixes = cfg.LowStakesPrefixes
	}
	if cfg.SearchTimeout != nil {
		p.searchTimeout = util.MustParseDuration(*cfg.SearchTimeout)
	}
	return p
}

// BitsFor returns the reduced difficulty for low-stakes namespaces and the
// full difficulty for everything else.
func (p *DifficultyPolicy) BitsFor(pollID string) int {
	for _, prefix := range p.lowStakesPrefixes {
		if strings.HasPrefix(pollID, prefix) {
			return p.reducedBits
		}
	}
	return p.bits
}

func (p *DifficultyPolicy) SearchTimeout() time.Duration {
	return p.searchTimeout
}
