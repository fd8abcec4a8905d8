// Package imageurl turns raw catalog image cells into directly fetchable URLs.
package imageurl

import (
	"context"
	"strings"
)

// Rule rewrites a single image reference. ok is false when the rule does not
// apply, in which case the next rule in the chain is tried.
type Rule interface {
	Name() string
	Rewrite(ctx context.Context, raw string) (out string, ok bool)
}

// Chain applies the first matching Rule to an unwrapped, trimmed value.
type Chain struct {
	rules []Rule
}

func NewChain(rules ...Rule) *Chain {
	return &Chain{rules: rules}
}

// With returns a new chain with r appended.
func (c *Chain) With(r Rule) *Chain {
	rules := make([]Rule, 0, len(c.rules)+1)
	rules = append(rules, c.rules...)
	return &Chain{rules: append(rules, r)}
}

// Rules lists rule names in evaluation order.
func (c *Chain) Rules() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.Name()
	}
	return names
}

// Normalize unwraps HTML snippets and returns the output of the first rule
// that applies. Values no rule claims pass through unchanged.
func (c *Chain) Normalize(ctx context.Context, raw string) string {
	value := strings.TrimSpace(UnwrapHTML(raw))
	if value == "" {
		return ""
	}
	for _, r := range c.rules {
		if out, ok := r.Rewrite(ctx, value); ok {
			return out
		}
	}
	return value
}

var defaultChain = NewChain(DriveRule{}, OneDriveShareRule{})

// DefaultChain is the static rule set: Google Drive, then OneDrive share
// tokens, then passthrough.
func DefaultChain() *Chain { return defaultChain }

// NormalizeImageURL applies the default chain to raw.
func NormalizeImageURL(raw string) string {
	return defaultChain.Normalize(context.Background(), raw)
}
