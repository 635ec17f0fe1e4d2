package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chemsafe/internal/domain/chemical"
	"github.com/turtacn/chemsafe/internal/intelligence/alias"
	"github.com/turtacn/chemsafe/internal/testutil"
)

type stubExpander map[string][]string

func (s stubExpander) GetAllPossibleNames(name string) []string {
	if names, ok := s[name]; ok {
		return names
	}
	return []string{name}
}

func chem(id, name string) *chemical.Entity {
	return &chemical.Entity{ID: id, Name: name, Type: chemical.EntityTypeChemical}
}

func TestMatch_ExactNameSkipsNonChemicals(t *testing.T) {
	m := New(nil, nil)
	res := m.Match(testutil.SampleEntities(), "acetone", "")
	require.True(t, res.Found())
	assert.Equal(t, "id#Acetone", res.Entity.ID)
	assert.Equal(t, TierExactName, res.Tier)
	assert.Equal(t, "acetone", res.MatchedName)
}

func TestMatch_Identifier(t *testing.T) {
	entities := testutil.SampleEntities()
	m := New(nil, testutil.NewMockLogger())

	tests := []struct {
		name     string
		target   string
		targetID string
		wantID   string
	}{
		{"synthesized camel id", "sodium chloride", "", "id#SodiumChloride"},
		{"compound name", "Aluminum, Diethyl Ether", "", "id#Aluminum..DiethylEther"},
		{"explicit id", "whatever", "SodiumChloride", "id#SodiumChloride"},
		{"explicit prefixed id", "", "id#Water", "id#Water"},
		{"punctuation drift", "Ethyl-Acetate", "", "id#EthylAcetate"},
		{"brackets stripped", "Sodium (Chloride)", "", "id#SodiumChloride"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := m.Match(entities, tt.target, tt.targetID)
			require.True(t, res.Found())
			assert.Equal(t, tt.wantID, res.Entity.ID)
			assert.Equal(t, TierIdentifier, res.Tier)
		})
	}
}

func TestMatch_ExactNameBeatsIdentifier(t *testing.T) {
	entities := []*chemical.Entity{
		chem("id#Foo", "Bar"),
		chem("id#Bar", "Foo"),
	}
	res := New(nil, nil).Match(entities, "Foo", "")
	require.True(t, res.Found())
	assert.Equal(t, "id#Bar", res.Entity.ID)
	assert.Equal(t, TierExactName, res.Tier)
}

func TestMatch_IgnoresNonChemicalIdentifiers(t *testing.T) {
	res := New(nil, nil).Match(testutil.SampleEntities(), "Guide 127", "Guide127")
	assert.False(t, res.Found())
	assert.Equal(t, TierNone, res.Tier)
}

func TestMatch_AliasTierWithBuiltinTable(t *testing.T) {
	resolver := alias.NewResolver(nil, nil, alias.DefaultConfig())
	m := New(resolver, nil)
	entities := testutil.SampleEntities()

	res := m.Match(entities, "Dimethyl Ketone", "")
	require.True(t, res.Found())
	assert.Equal(t, "id#Acetone", res.Entity.ID)
	assert.Equal(t, TierAlias, res.Tier)
	assert.Equal(t, "Acetone", res.MatchedName)

	res = m.Match(entities, "ethyl ethanoate", "")
	require.True(t, res.Found())
	assert.Equal(t, "id#EthylAcetate", res.Entity.ID)
}

func TestMatch_AliasOrderIsPreserved(t *testing.T) {
	exp := stubExpander{"mystery": {"mystery", "Water", "Ethyl Acetate"}}
	res := New(exp, nil).Match(testutil.SampleEntities(), "mystery", "")
	require.True(t, res.Found())
	assert.Equal(t, "id#Water", res.Entity.ID)
	assert.Equal(t, "Water", res.MatchedName)
}

func TestMatch_AliasIdentifierTier(t *testing.T) {
	exp := stubExpander{"table salt": {"table salt", "Sodium Chloride"}}
	res := New(exp, nil).Match(testutil.SampleEntities(), "table salt", "")
	require.True(t, res.Found())
	assert.Equal(t, "id#SodiumChloride", res.Entity.ID)
	assert.Equal(t, TierAlias, res.Tier)
}

func TestMatch_SynonymsAgreeWithoutID(t *testing.T) {
	resolver := alias.NewResolver(nil, nil, alias.DefaultConfig())
	m := New(resolver, nil)
	entities := []*chemical.Entity{
		chem("id#Salt", ""),
		chem("id#SodiumChloride", "Sodium Chloride"),
	}

	for _, name := range []string{"Salt", "Table Salt", "halite"} {
		t.Run(name, func(t *testing.T) {
			res := m.Match(entities, name, "")
			require.True(t, res.Found())
			assert.Equal(t, "id#SodiumChloride", res.Entity.ID)
			assert.Equal(t, TierAlias, res.Tier)
			assert.Equal(t, "Sodium Chloride", res.MatchedName)
		})
	}
}

func TestMatch_ExplicitIDBeatsAliases(t *testing.T) {
	resolver := alias.NewResolver(nil, nil, alias.DefaultConfig())
	entities := []*chemical.Entity{
		chem("id#Salt", ""),
		chem("id#SodiumChloride", "Sodium Chloride"),
	}

	res := New(resolver, nil).Match(entities, "Salt", "Salt")
	require.True(t, res.Found())
	assert.Equal(t, "id#Salt", res.Entity.ID)
	assert.Equal(t, TierIdentifier, res.Tier)
}

func TestMatch_SynthesizedIDFallsBackAfterAliases(t *testing.T) {
	exp := stubExpander{"ethanoate": {"Ethanoate", "Ethyl Acetate"}}
	entities := []*chemical.Entity{
		chem("id#Ethanoate", ""),
		chem("id#EthylAcetate", ""),
	}

	res := New(exp, nil).Match(entities, "ethanoate", "")
	require.True(t, res.Found())
	assert.Equal(t, "id#Ethanoate", res.Entity.ID, "no alias matched by name, so the target's own id wins")
	assert.Equal(t, TierIdentifier, res.Tier)
}

func TestMatch_NoMatch(t *testing.T) {
	logger := testutil.NewMockLogger()
	m := New(stubExpander{}, logger)

	assert.Nil(t, m.FindEntity(testutil.SampleEntities(), "Unobtainium", ""))
	assert.True(t, logger.HasMessage("debug", "no entity matched"))

	assert.Nil(t, m.FindEntity(testutil.SampleEntities(), "", ""))
	assert.Nil(t, m.FindEntity(nil, "Acetone", ""))
	assert.Nil(t, m.FindEntity(testutil.SampleEntities(), "!!!", ""))
}

func TestFindEntity_Wrapper(t *testing.T) {
	e := FindEntity(testutil.SampleEntities(), nil, "Water", "")
	require.NotNil(t, e)
	assert.Equal(t, "id#Water", e.ID)
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "exact_name", TierExactName.String())
	assert.Equal(t, "identifier", TierIdentifier.String())
	assert.Equal(t, "alias", TierAlias.String())
	assert.Equal(t, "none", TierNone.String())
	assert.Equal(t, "none", Tier(42).String())
}
