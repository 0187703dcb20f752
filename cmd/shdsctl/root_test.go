package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	authsvc "github.com/papichoolo/shds-admin/internal/api/auth/service"
	"github.com/papichoolo/shds-admin/internal/api/collection/models"
	"github.com/papichoolo/shds-admin/internal/utility"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCollections_Table(t *testing.T) {
	out, err := run(t, "collections")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "students")
	assert.Contains(t, out, "branchId->branches")
}

func TestCollections_YAML(t *testing.T) {
	out, err := run(t, "collections", "--format", "yaml")
	require.NoError(t, err)

	var defs []models.CollectionDefinition
	require.NoError(t, yaml.Unmarshal([]byte(out), &defs))
	assert.Len(t, defs, models.NewCatalogRegistry().Len())
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, "collections", "--format", "xml")
	assert.Error(t, err)
}

func TestTokenHash(t *testing.T) {
	out, err := run(t, "token", "hash", "abc")
	require.NoError(t, err)
	assert.Equal(t, utility.HashToken("abc"), strings.TrimSpace(out))
}

func TestTokenMint(t *testing.T) {
	out, err := run(t, "token", "mint", "--uid", "u1", "--roles", "admin,staff", "--secret", "s", "--branch", "b1")
	require.NoError(t, err)

	got, err := authsvc.NewJWTVerifier("s", "shds-admin").Verify(context.Background(), strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UID)
	assert.Equal(t, "b1", got.Claims["branchId"])

	_, err = run(t, "token", "mint", "--secret", "s")
	assert.Error(t, err)
}
