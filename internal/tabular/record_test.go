package tabular

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSetKeepsInsertionOrder(t *testing.T) {
	rec := NewRecord()
	rec.Set("b", "2")
	rec.Set("a", "1")
	rec.Set("b", "20")
	rec.Set("c", "3")

	assert.Equal(t, []string{"b", "a", "c"}, rec.Keys())
	assert.Equal(t, "20", rec.Get("b"))
	assert.Equal(t, 3, rec.Len())
}

func TestRecordCloneIsIndependent(t *testing.T) {
	rec := NewRecord()
	rec.Set("a", "1")
	clone := rec.Clone()
	clone.Set("a", "changed")
	clone.Set("b", "new")

	assert.Equal(t, "1", rec.Get("a"))
	assert.False(t, rec.Has("b"))
}

func TestRecordIsEmpty(t *testing.T) {
	rec := NewRecord()
	assert.True(t, rec.IsEmpty())
	rec.Set("a", "")
	assert.True(t, rec.IsEmpty())
	rec.Set("b", "x")
	assert.False(t, rec.IsEmpty())
}

func TestRecordJSONRoundTripPreservesOrder(t *testing.T) {
	rec := NewRecord()
	rec.Set("zeta", "1")
	rec.Set("alfa", "2")
	rec.Set("media", "")

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":"1","alfa":"2","media":""}`, string(data))

	back := NewRecord()
	require.NoError(t, json.Unmarshal(data, back))
	assert.Equal(t, []string{"zeta", "alfa", "media"}, back.Keys())
	assert.Equal(t, "2", back.Get("alfa"))
}

func TestRecordUnmarshalToleratesScalars(t *testing.T) {
	rec := NewRecord()
	require.NoError(t, json.Unmarshal([]byte(`{"price":12.5,"active":true,"note":null}`), rec))
	assert.Equal(t, "12.5", rec.Get("price"))
	assert.Equal(t, "true", rec.Get("active"))
	assert.Equal(t, "", rec.Get("note"))
}

func TestRecordUnmarshalRejectsNonObjects(t *testing.T) {
	rec := NewRecord()
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), rec))
	assert.Error(t, json.Unmarshal([]byte(`{"nested":{"a":1}}`), rec))
}
