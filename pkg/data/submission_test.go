package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadgrade/pkg/suspicion"
)

var testUpload = time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

func testSubmissions() []SubmissionRow {
	return []SubmissionRow{
		{
			Meta: suspicion.Metadata{Name: "alice.stl", Size: 4096, Hash: "aaaa", Uploaded: testUpload},
			Path: "/tmp/alice.stl",
		},
		{
			Meta: suspicion.Metadata{Name: "bob.obj", Size: 2048, Hash: "bbbb", Uploaded: testUpload.Add(time.Minute)},
			Path: "/tmp/bob.obj",
		},
	}
}

func TestSaveSubmissions_RoundTrip(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, SaveSubmissions(db, testSubmissions()))

	got, err := GetSubmissions(db)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "alice.stl", got[0].Name)
	assert.Equal(t, int64(4096), got[0].Size)
	assert.Equal(t, "aaaa", got[0].Hash)
	assert.True(t, got[0].Uploaded.Equal(testUpload))
	assert.Equal(t, "bob.obj", got[1].Name)
}

func TestSaveSubmissions_Upsert(t *testing.T) {
	db := setupTestDB(t)

	subs := testSubmissions()
	require.NoError(t, SaveSubmissions(db, subs))

	subs[0].Meta.Size = 9999
	require.NoError(t, SaveSubmissions(db, subs))

	got, err := GetSubmissions(db)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(9999), got[0].Size)
}

func TestSaveSubmissions_NilDB(t *testing.T) {
	err := SaveSubmissions(nil, testSubmissions())
	assert.Error(t, err)
}

func TestGetSubmissions_Empty(t *testing.T) {
	db := setupTestDB(t)
	got, err := GetSubmissions(db)
	require.NoError(t, err)
	assert.Empty(t, got)
}
