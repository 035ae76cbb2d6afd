// Package environment maps course metadata to the themed 3D scene the
// classroom engine should load.
package environment

import "strings"

// DefaultSceneID is used when no rule matches.
const DefaultSceneID = "DefaultClassroom"

// Descriptor identifies a scene and how the app presents it.
type Descriptor struct {
	SceneID     string
	DisplayName string
	Icon        string
	Gradient    [2]string
}

// Rule maps any of its keywords to a scene. Keywords are lowercase.
type Rule struct {
	Keywords   []string
	Descriptor Descriptor
}

// Default is the fallback descriptor.
var Default = Descriptor{
	SceneID:     DefaultSceneID,
	DisplayName: "Classroom",
	Icon:        "building.columns",
	Gradient:    [2]string{"#4A90E2", "#7B68EE"},
}

// defaultRules is evaluated in order; the first match wins.
var defaultRules = []Rule{
	{
		Keywords: []string{"maya", "civilization"},
		Descriptor: Descriptor{
			SceneID:     "MayaCivilization",
			DisplayName: "Maya Temple",
			Icon:        "sun.max",
			Gradient:    [2]string{"#2E8B57", "#DAA520"},
		},
	},
	{
		Keywords: []string{"mars", "space"},
		Descriptor: Descriptor{
			SceneID:     "MarsExploration",
			DisplayName: "Mars Base",
			Icon:        "globe.americas",
			Gradient:    [2]string{"#B22222", "#FF8C00"},
		},
	},
	{
		Keywords: []string{"chemistry", "science"},
		Descriptor: Descriptor{
			SceneID:     "ChemistryLab",
			DisplayName: "Chemistry Lab",
			Icon:        "flask",
			Gradient:    [2]string{"#20B2AA", "#00CED1"},
		},
	},
	{
		Keywords: []string{"math"},
		Descriptor: Descriptor{
			SceneID:     "MathematicsHall",
			DisplayName: "Mathematics Hall",
			Icon:        "function",
			Gradient:    [2]string{"#6A5ACD", "#1E90FF"},
		},
	},
	{
		Keywords: []string{"rome"},
		Descriptor: Descriptor{
			SceneID:     "AncientRome",
			DisplayName: "Roman Forum",
			Icon:        "building.columns.fill",
			Gradient:    [2]string{"#8B0000", "#CD853F"},
		},
	},
	{
		Keywords: []string{"greece"},
		Descriptor: Descriptor{
			SceneID:     "AncientGreece",
			DisplayName: "Greek Agora",
			Icon:        "laurel.leading",
			Gradient:    [2]string{"#4169E1", "#F5F5DC"},
		},
	},
	{
		Keywords: []string{"egypt"},
		Descriptor: Descriptor{
			SceneID:     "AncientEgypt",
			DisplayName: "Pyramids of Giza",
			Icon:        "triangle",
			Gradient:    [2]string{"#DAA520", "#8B4513"},
		},
	},
}

// Resolver matches metadata against an ordered rule table.
type Resolver struct {
	rules    []Rule
	fallback Descriptor
}

// NewResolver builds a resolver over the given rules. Keywords are matched
// case-insensitively regardless of how they are written in rules.
func NewResolver(rules []Rule, fallback Descriptor) *Resolver {
	r := &Resolver{fallback: fallback, rules: make([]Rule, len(rules))}
	for i, rule := range rules {
		kws := make([]string, len(rule.Keywords))
		for j, kw := range rule.Keywords {
			kws[j] = strings.ToLower(kw)
		}
		r.rules[i] = Rule{Keywords: kws, Descriptor: rule.Descriptor}
	}
	return r
}

// Resolve returns the descriptor of the first rule with a keyword contained
// in the title or category.
func (r *Resolver) Resolve(category, title string) Descriptor {
	haystack := strings.ToLower(title + " " + category)
	for _, rule := range r.rules {
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(haystack, kw) {
				return rule.Descriptor
			}
		}
	}
	return r.fallback
}

// Lookup returns the descriptor for a known scene ID.
func (r *Resolver) Lookup(sceneID string) (Descriptor, bool) {
	if sceneID == r.fallback.SceneID {
		return r.fallback, true
	}
	for _, rule := range r.rules {
		if rule.Descriptor.SceneID == sceneID {
			return rule.Descriptor, true
		}
	}
	return Descriptor{}, false
}

var std = NewResolver(defaultRules, Default)

// Resolve uses the built-in rule table.
func Resolve(category, title string) Descriptor {
	return std.Resolve(category, title)
}

// Lookup finds a built-in scene by ID.
func Lookup(sceneID string) (Descriptor, bool) {
	return std.Lookup(sceneID)
}

// Rules returns a copy of the built-in rule table.
func Rules() []Rule {
	out := make([]Rule, len(defaultRules))
	for i, r := range defaultRules {
		out[i] = Rule{Keywords: append([]string(nil), r.Keywords...), Descriptor: r.Descriptor}
	}
	return out
}
