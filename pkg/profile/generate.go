// pkg/profile/generate.go

// Package profile generates the production configuration document from the
// fixed option groups. Generation is a full replacement: the existing
// document is consulted only to report what it is replacing, never merged
// key by key, so every production invariant holds regardless of what was
// previously deployed.
package profile

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/monaylabs/postflight/pkg/envfile"
	"github.com/monaylabs/postflight/pkg/pferr"
	"github.com/monaylabs/postflight/pkg/platform"
)

// Generate resolves every option group against the platform and produces a
// fully literal configuration document. current may be nil when no prior
// configuration exists.
func Generate(p platform.Platform, current *envfile.Document, log *zap.Logger) (*envfile.Document, error) {
	return GenerateAt(p, current, Groups(), time.Now().UTC(), log)
}

// GenerateAt is the deterministic core behind Generate: identical platform,
// groups and timestamp yield byte-identical output.
func GenerateAt(p platform.Platform, current *envfile.Document, groups []Group, ts time.Time, log *zap.Logger) (*envfile.Document, error) {
	if log == nil {
		log = zap.NewNop()
	}

	doc := envfile.New()
	doc.AppendComment("monay production configuration")
	doc.AppendComment("Generated by postflight at " + ts.Format(time.RFC3339))

	seen := map[string]string{}
	for _, g := range groups {
		doc.AppendBlank()
		doc.AppendComment(g.Name)
		for _, opt := range g.Options {
			value, err := renderRule(p, opt.Rule)
			if err != nil {
				return nil, err
			}
			if prevGroup, dup := seen[opt.Key]; dup {
				return nil, pferr.Generationf(
					"remove the duplicate key from one of the option group templates",
					"option groups %s and %s both emit key %s", prevGroup, g.Name, opt.Key)
			}
			seen[opt.Key] = g.Name
			if err := doc.Append(opt.Key, value); err != nil {
				return nil, pferr.Generation(err, "the option group templates are inconsistent")
			}
		}
	}

	if current != nil {
		replaced, dropped := diffKeys(current, doc)
		log.Info("Replacing existing configuration",
			zap.Int("previous_keys", current.Len()),
			zap.Int("generated_keys", doc.Len()),
			zap.Int("carried_over", replaced),
			zap.Strings("dropped_keys", dropped))
	} else {
		log.Info("No existing configuration found; generating fresh document",
			zap.Int("generated_keys", doc.Len()))
	}

	return doc, nil
}

func renderRule(p platform.Platform, r Rule) (string, error) {
	switch r.Kind {
	case Literal:
		return r.Value, nil
	case BasePath:
		return p.Join(strings.Split(r.Value, "/")...), nil
	case SQLiteURL:
		return "sqlite:///" + p.Join(strings.Split(r.Value, "/")...), nil
	case VenvPython:
		return p.VenvPython(r.Value), nil
	case Numeric:
		return strconv.Itoa(r.Number), nil
	case Percent:
		return strconv.Itoa(r.Number) + "%", nil
	default:
		return "", pferr.Generationf(
			"this is a bug in the option group templates",
			"unknown rule kind %d", r.Kind)
	}
}

// diffKeys reports how many existing keys survive into the generated
// document and which ones are dropped by the replacement.
func diffKeys(current, generated *envfile.Document) (carried int, dropped []string) {
	for _, k := range current.Keys() {
		if _, ok := generated.Get(k); ok {
			carried++
		} else {
			dropped = append(dropped, k)
		}
	}
	return carried, dropped
}
