package store

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

type recordingExec struct {
	applied map[int]bool
	execs   []string
	failOn  string
}

func (r *recordingExec) Exec(_ context.Context, q string) error {
	if r.failOn != "" && q == r.failOn {
		return errors.New("boom")
	}
	r.execs = append(r.execs, q)
	return nil
}

func (r *recordingExec) AppliedVersions(context.Context) (map[int]bool, error) {
	out := map[int]bool{}
	for k, v := range r.applied {
		out[k] = v
	}
	return out, nil
}

func (r *recordingExec) RecordVersion(_ context.Context, m Migration) error {
	r.applied[m.Version] = true
	return nil
}

var testMigrations = fstest.MapFS{
	"m/0002_index.up.sql": {Data: []byte("CREATE INDEX i;")},
	"m/0001_init.sql":     {Data: []byte("CREATE TABLE t;")},
	"m/README.md":         {Data: []byte("ignored")},
}

func TestMigrator_ParseOrdered(t *testing.T) {
	migs, err := NewMigrator(testMigrations, "m").ParseMigrations()
	require.NoError(t, err)
	require.Len(t, migs, 2)
	require.Equal(t, 1, migs[0].Version)
	require.Equal(t, "init", migs[0].Name)
	require.Equal(t, "index", migs[1].Name)
}

func TestMigrator_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0001_a.sql": {Data: []byte("x")},
		"m/0001_b.sql": {Data: []byte("y")},
	}
	_, err := NewMigrator(fsys, "m").ParseMigrations()
	require.Error(t, err)
}

func TestMigrator_RunIsIncremental(t *testing.T) {
	ctx := context.Background()
	exec := &recordingExec{applied: map[int]bool{}}
	m := NewMigrator(testMigrations, "m")

	n, err := m.Run(ctx, exec)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []string{MigrationsTableDDL, "CREATE TABLE t;", "CREATE INDEX i;"}, exec.execs)

	n, err = m.Run(ctx, exec)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestMigrator_RunStopsOnFailure(t *testing.T) {
	exec := &recordingExec{applied: map[int]bool{}, failOn: "CREATE INDEX i;"}
	n, err := NewMigrator(testMigrations, "m").Run(context.Background(), exec)
	require.Error(t, err)
	require.Equal(t, 1, n)
	require.True(t, exec.applied[1])
	require.False(t, exec.applied[2])
}
