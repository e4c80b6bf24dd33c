package student

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordUnmarshalKeepsOrder(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{"Talaba ID":"123","To'liq ismi":"Ali Valiyev","Fakultet":null,"Kurs":2,"Bitiruvchi":false}`), &r)
	require.NoError(t, err)

	assert.Equal(t, []string{FieldID, FieldName, FieldFaculty, FieldCourse, "Bitiruvchi"}, r.Keys())
	assert.Equal(t, "123", r.Get(FieldID))
	assert.Equal(t, "2", r.Get(FieldCourse))
	assert.Equal(t, "false", r.Get("Bitiruvchi"))

	assert.True(t, r.Has(FieldFaculty))
	assert.True(t, r.IsNull(FieldFaculty))
	v, ok := r.Lookup(FieldFaculty)
	assert.True(t, ok)
	assert.Empty(t, v)

	assert.False(t, r.Has(FieldGroup))
	_, ok = r.Lookup(FieldGroup)
	assert.False(t, ok)
}

func TestRecordUnmarshalRejectsNested(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{"Talaba ID":"1","extra":{"a":"b"}}`), &r)
	require.ErrorIs(t, err, ErrNestedValue)

	err = json.Unmarshal([]byte(`["not","an","object"]`), &r)
	require.Error(t, err)
}

func TestRecordMarshalRoundTripsOrderAndNull(t *testing.T) {
	var r Record
	in := `{"b":"2","a":null,"c":"3"}`
	require.NoError(t, json.Unmarshal([]byte(in), &r))

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
}

func TestRecordSlice(t *testing.T) {
	var records []Record
	err := json.Unmarshal([]byte(`[{"Talaba ID":"2"},{"Talaba ID":"1"},{}]`), &records)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "2", records[0].Get(FieldID))
	assert.Equal(t, "1", records[1].Get(FieldID))
	assert.Equal(t, 0, records[2].Len())
}

func TestRecordID(t *testing.T) {
	id, ok := NewRecord(FieldID, "42").ID()
	assert.True(t, ok)
	assert.Equal(t, "42", id)

	_, ok = NewRecord(FieldName, "x").ID()
	assert.False(t, ok)

	_, ok = NewRecord(FieldID, "").ID()
	assert.False(t, ok)
}

func TestRecordSetReplacesWithoutDuplicatingKey(t *testing.T) {
	r := NewRecord("a", "1", "b", "2")
	v := "3"
	r.Set("a", &v)

	assert.Equal(t, []string{"a", "b"}, r.Keys())
	assert.Equal(t, "3", r.Get("a"))
}
