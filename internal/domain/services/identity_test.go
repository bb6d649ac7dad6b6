package services

import (
	"testing"

	"github.com/reglet-dev/pkgreg/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIdentityPolicy(t *testing.T) {
	assert.Equal(t, IdentityIgnore, ParseIdentityPolicy("ignore"))
	assert.Equal(t, IdentityStrict, ParseIdentityPolicy("strict"))
	assert.Equal(t, IdentityWarn, ParseIdentityPolicy("warn"))
	assert.Equal(t, IdentityWarn, ParseIdentityPolicy(""))
	assert.Equal(t, IdentityWarn, ParseIdentityPolicy("bogus"))
}

func TestCheckIdentity(t *testing.T) {
	const (
		idA = "949dbed5cb0247e4b94445f6ef3a0539"
		idB = "1f0e2a7c9d3b4e5f8a6b7c8d9e0f1a2b"
	)
	pkgs := []*entities.Package{
		newTestPackage(t, entities.Descriptor{Name: "maya", Version: "2023"}, ""),
		newTestPackage(t, entities.Descriptor{Name: "maya", Version: "2024", UUID: idA}, ""),
		newTestPackage(t, entities.Descriptor{Name: "maya", Version: "2025", UUID: "949dbed5-cb02-47e4-b944-45f6ef3a0539"}, ""),
		newTestPackage(t, entities.Descriptor{Name: "maya", Version: "2026", UUID: idB}, ""),
		newTestPackage(t, entities.Descriptor{Name: "nuke", Version: "15", UUID: idB}, ""),
	}
	reg, err := entities.NewRegistry(pkgs)
	require.NoError(t, err)

	mismatches := CheckIdentity(reg)
	require.Len(t, mismatches, 1)
	assert.Equal(t, "maya", mismatches[0].Name)
	assert.Equal(t, "2026", mismatches[0].Version)
	assert.Equal(t, idA, mismatches[0].Expected)
	assert.Equal(t, idB, mismatches[0].Actual)
}

func TestCheckIdentity_Clean(t *testing.T) {
	reg, err := entities.NewRegistry([]*entities.Package{
		newTestPackage(t, entities.Descriptor{Name: "maya", Version: "2024"}, ""),
	})
	require.NoError(t, err)
	assert.Empty(t, CheckIdentity(reg))
}
