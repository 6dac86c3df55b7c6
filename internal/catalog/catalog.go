// Package catalog is the static registry of chat models: their upstream
// identifiers, token ceilings, and access tier. Read-only after process start.
package catalog

// Descriptor describes one selectable model.
type Descriptor struct {
	ID         string `json:"value"`
	UpstreamID string `json:"-"`
	Label      string `json:"label"`
	Premium    bool   `json:"isPremium"`
	MaxTokens  int    `json:"-"`
}

// Defaults used when no model is requested or when premium gating
// substitutes a tier-appropriate model.
const (
	DefaultModel        = "gpt-oss-20b"
	DefaultPremiumModel = "gpt-oss-120b"
)

var descriptors = map[string]Descriptor{
	"gpt-oss-20b": {
		ID:         "gpt-oss-20b",
		UpstreamID: "openai/gpt-oss-20b",
		Label:      "GPT-OSS 20B",
		Premium:    false,
		MaxTokens:  10000,
	},
	"qwen3-coder-30b": {
		ID:         "qwen3-coder-30b",
		UpstreamID: "Qwen/Qwen3-Coder-30B-A3B-Instruct",
		Label:      "Qwen3-Coder 30B",
		Premium:    false,
		MaxTokens:  20000,
	},
	"apertus-70b": {
		ID:         "apertus-70b",
		UpstreamID: "swiss-ai/Apertus-70B-Instruct-2509:publicai",
		Label:      "Swiss AI Apertus 70B",
		Premium:    false,
		MaxTokens:  6000,
	},
	"gpt-oss-120b": {
		ID:         "gpt-oss-120b",
		UpstreamID: "openai/gpt-oss-120b",
		Label:      "GPT-OSS 120B",
		Premium:    true,
		MaxTokens:  10000,
	},
	"qwen3-235b": {
		ID:         "qwen3-235b",
		UpstreamID: "Qwen/Qwen3-235B-A22B-Instruct-2507:fireworks-ai",
		Label:      "Qwen3 235B",
		Premium:    true,
		MaxTokens:  20000,
	},
	"qwen3-coder-480b": {
		ID:         "qwen3-coder-480b",
		UpstreamID: "Qwen/Qwen3-Coder-480B-A35B-Instruct",
		Label:      "Qwen3-Coder 480B",
		Premium:    true,
		MaxTokens:  20000,
	},
	"deepseek-v3-terminus": {
		ID:         "deepseek-v3-terminus",
		UpstreamID: "deepseek-ai/DeepSeek-V3.1-Terminus",
		Label:      "DeepSeek V3 Terminus",
		Premium:    true,
		MaxTokens:  10000,
	},
}

// Resolve looks up a model by id.
func Resolve(modelID string) (Descriptor, bool) {
	d, ok := descriptors[modelID]
	return d, ok
}

// EffectiveModel applies premium gating and returns the model actually used
// for a turn. A non-premium caller asking for a premium model is silently
// given the standard default; unknown or empty requests fall back to the
// caller's tier default. Applied on every turn, not just creation, so a
// client cannot request an upgrade on a later message.
func EffectiveModel(requestedID string, premiumUser bool) Descriptor {
	fallback := DefaultModel
	if premiumUser {
		fallback = DefaultPremiumModel
	}

	d, ok := descriptors[requestedID]
	if !ok {
		return descriptors[fallback]
	}
	if d.Premium && !premiumUser {
		return descriptors[DefaultModel]
	}
	return d
}

// GroupEntry is a Descriptor annotated for the model picker.
type GroupEntry struct {
	Descriptor
	Selected bool `json:"selected"`
	Disabled bool `json:"disabled"`
}

// Group is a named set of models for the picker.
type Group struct {
	Name   string       `json:"groupName"`
	Models []GroupEntry `json:"models"`
}

// order keeps picker output stable; maps iterate randomly.
var order = []string{
	"gpt-oss-20b",
	"qwen3-coder-30b",
	"apertus-70b",
	"gpt-oss-120b",
	"qwen3-235b",
	"qwen3-coder-480b",
	"deepseek-v3-terminus",
}

// Groups splits the catalog into basic and premium groups for the model
// picker, marking the selected entry and disabling premium entries for
// non-premium users. Premium users see their group first.
func Groups(selectedID string, premiumUser bool) []Group {
	if selectedID == "" {
		selectedID = DefaultModel
		if premiumUser {
			selectedID = DefaultPremiumModel
		}
	}

	var basic, premium []GroupEntry
	for _, id := range order {
		d := descriptors[id]
		entry := GroupEntry{
			Descriptor: d,
			Selected:   id == selectedID,
			Disabled:   d.Premium && !premiumUser,
		}
		if d.Premium {
			premium = append(premium, entry)
		} else {
			basic = append(basic, entry)
		}
	}

	basicGroup := Group{Name: "Basic models", Models: basic}
	premiumGroup := Group{Name: "Premium models", Models: premium}

	if premiumUser {
		return []Group{premiumGroup, basicGroup}
	}
	return []Group{basicGroup, premiumGroup}
}
