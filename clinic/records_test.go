package clinic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStore_AddAssignsSequentialIDs(t *testing.T) {
	rs := NewRecordStore(RecordKindPet)
	for i := 1; i <= 5; i++ {
		assert.Equal(t, i, rs.Add("2025-01-01", "note"))
	}

	entries := rs.All()
	require.Len(t, entries, 5)
	for i, e := range entries {
		assert.Equal(t, i+1, e.ID)
		assert.Equal(t, RecordKindPet, e.Type)
	}
}

func TestRecordStore_AddAfterAddWithID(t *testing.T) {
	rs := NewRecordStore(RecordKindOwner)
	rs.AddWithID(7, "2025-01-01", "loaded")

	assert.Equal(t, 8, rs.Add("2025-01-02", "new"))
}

func TestRecordStore_OutOfOrderLoad(t *testing.T) {
	rs := NewRecordStore(RecordKindOwner)
	rs.AddWithID(9, "2025-01-09", "nine")
	rs.AddWithID(3, "2025-01-03", "three")

	assert.Equal(t, 10, rs.NextID())
	ids := []int{}
	for _, e := range rs.All() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int{3, 9}, ids)
}

func TestRecordStore_UpdateRemove(t *testing.T) {
	rs := NewRecordStore(RecordKindPet)
	id := rs.Add("2025-01-01", "before")

	assert.True(t, rs.Update(id, "2025-01-02", "after"))
	r, ok := rs.Get(id)
	require.True(t, ok)
	assert.Equal(t, Record{Date: "2025-01-02", Details: "after", Type: RecordKindPet}, r)

	assert.False(t, rs.Update(42, "2025-01-02", "missing"))
	assert.False(t, rs.Remove(42))
	assert.True(t, rs.Remove(id))
	_, ok = rs.Get(id)
	assert.False(t, ok)

	// ids are not reused after removal
	assert.Equal(t, 2, rs.Add("2025-01-03", "next"))
}

func TestVaccinationStore_OverallStatus(t *testing.T) {
	vs := NewVaccinationStore()
	assert.Equal(t, "none", vs.OverallStatus())

	vs.Add("Rabies", "2025-01-01", VaccinationCompleted)
	assert.Equal(t, "completed", vs.OverallStatus())

	id := vs.Add("Lepto", "2025-01-02", VaccinationBoosterRequired)
	assert.Equal(t, "pending", vs.OverallStatus())

	require.True(t, vs.Update(id, "Lepto", "2025-01-02", VaccinationPending))
	assert.Equal(t, "pending", vs.OverallStatus())

	require.True(t, vs.Remove(id))
	assert.Equal(t, "completed", vs.OverallStatus())
}

func TestVaccinationStore_AddWithID(t *testing.T) {
	vs := NewVaccinationStore()
	vs.AddWithID(4, "Rabies", "2025-01-01", VaccinationCompleted)
	vs.AddWithID(2, "Parvo", "2025-01-01", VaccinationCompleted)
	vs.AddWithID(4, "Rabies", "2025-02-01", VaccinationPending)

	all := vs.All()
	require.Len(t, all, 2)
	assert.Equal(t, Vaccination{ID: 4, Name: "Rabies", Date: "2025-02-01", Status: VaccinationPending}, all[0])
	assert.Equal(t, 5, vs.Add("Lepto", "2025-03-01", VaccinationCompleted))
}

func TestVaccinationStore_MissingIDs(t *testing.T) {
	vs := NewVaccinationStore()
	assert.False(t, vs.Update(1, "x", "2025-01-01", VaccinationCompleted))
	assert.False(t, vs.Remove(1))
	_, ok := vs.Get(1)
	assert.False(t, ok)
}
