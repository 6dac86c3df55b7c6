package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveKnownModel(t *testing.T) {
	d, ok := Resolve("gpt-oss-20b")
	assert.True(t, ok)
	assert.Equal(t, "openai/gpt-oss-20b", d.UpstreamID)
	assert.Equal(t, 10000, d.MaxTokens)
}

func TestResolveUnknownModel(t *testing.T) {
	_, ok := Resolve("gpt-99-ultra")
	assert.False(t, ok)
}

func TestEffectiveModelGatesPremium(t *testing.T) {
	// A non-premium caller asking for a premium model gets the standard
	// default, every time
	d := EffectiveModel("gpt-oss-120b", false)
	assert.Equal(t, DefaultModel, d.ID)
	assert.False(t, d.Premium)

	// Same request from a premium caller goes through
	d = EffectiveModel("gpt-oss-120b", true)
	assert.Equal(t, "gpt-oss-120b", d.ID)
}

func TestEffectiveModelDefaults(t *testing.T) {
	assert.Equal(t, DefaultModel, EffectiveModel("", false).ID)
	assert.Equal(t, DefaultPremiumModel, EffectiveModel("", true).ID)
	assert.Equal(t, DefaultModel, EffectiveModel("no-such-model", false).ID)
	assert.Equal(t, DefaultPremiumModel, EffectiveModel("no-such-model", true).ID)
}

func TestEffectiveModelStandardPassthrough(t *testing.T) {
	d := EffectiveModel("qwen3-coder-30b", false)
	assert.Equal(t, "qwen3-coder-30b", d.ID)
}

func TestGroupsOrdering(t *testing.T) {
	groups := Groups("", false)
	assert.Equal(t, "Basic models", groups[0].Name)
	assert.Equal(t, "Premium models", groups[1].Name)

	// Premium users see their group first
	groups = Groups("", true)
	assert.Equal(t, "Premium models", groups[0].Name)
}

func TestGroupsSelectionAndDisabled(t *testing.T) {
	groups := Groups("qwen3-coder-30b", false)

	var selected []string
	for _, g := range groups {
		for _, m := range g.Models {
			if m.Selected {
				selected = append(selected, m.ID)
			}
			if m.Premium {
				assert.True(t, m.Disabled)
			}
		}
	}
	assert.Equal(t, []string{"qwen3-coder-30b"}, selected)
}
