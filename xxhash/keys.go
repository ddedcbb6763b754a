// Package xxhash derives cache keys and result ids using xxhash64 digests.
package xxhash

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/pagesnap"
)

// Ensure Deriver implements pagesnap.KeyDeriver at compile time.
var _ pagesnap.KeyDeriver = (*Deriver)(nil)

// Deriver computes cache keys from a URL and its effective request
// configuration. It is stateless and safe for concurrent use.
type Deriver struct{}

// NewDeriver creates a new Deriver.
func NewDeriver() *Deriver {
	return &Deriver{}
}

// Derive returns a fixed-length hex digest of url and the canonical
// serialization of config. The serialization is key-sorted JSON, so two
// configurations that are field-for-field equal always yield the same key
// regardless of how they were constructed.
func (d *Deriver) Derive(url string, config pagesnap.RequestConfig) string {
	// encoding/json sorts map keys, which is exactly the canonical
	// ordering guarantee key derivation relies on.
	params, err := json.Marshal(keyParams(config))
	if err != nil {
		// Unreachable: keyParams contains only primitives.
		panic(err)
	}
	return Sum(url + ":" + string(params))
}

// Sum returns the xxhash64 digest of s as a 16-character hex string.
func Sum(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}

// keyParams returns the key-relevant configuration fields under their wire
// names. The use-cache flag and credential-bearing options are deliberately
// excluded: they do not affect the rendered artifact.
func keyParams(c pagesnap.RequestConfig) map[string]any {
	return map[string]any{
		"full-content":         c.FullContent,
		"screenshot":           c.Screenshot,
		"user-scripts":         c.UserScripts,
		"user-scripts-timeout": c.UserScriptsTimeout,
		"incognito":            c.Incognito,
		"timeout":              c.Timeout,
		"wait-until":           c.WaitUntil,
		"sleep":                c.Sleep,
		"resource":             c.Resource,
		"viewport-width":       intOrNull(c.ViewportWidth),
		"viewport-height":      intOrNull(c.ViewportHeight),
		"screen-width":         intOrNull(c.ScreenWidth),
		"screen-height":        intOrNull(c.ScreenHeight),
		"device":               c.Device,
		"scroll-down":          c.ScrollDown,
		"ignore-https-errors":  c.IgnoreHTTPSErrors,
		"user-agent":           c.UserAgent,
		"locale":               c.Locale,
		"timezone":             c.Timezone,
	}
}

// intOrNull maps an unset optional int to JSON null instead of a zero.
func intOrNull(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
