package clinic

import "sort"

// RecordKind tags which entity a Record belongs to. It is informational only.
type RecordKind string

const (
	RecordKindPet   RecordKind = "Pet"
	RecordKindOwner RecordKind = "Owner"
)

// Record is a dated free-text note attached to an owner or a pet.
type Record struct {
	Date    string
	Details string
	Type    RecordKind
}

// RecordEntry pairs a Record with its id.
type RecordEntry struct {
	ID int
	Record
}

// idSequence hands out monotonically increasing ids starting at 1.
type idSequence struct {
	next int
}

func (s *idSequence) peek() int {
	if s.next < 1 {
		return 1
	}
	return s.next
}

func (s *idSequence) take() int {
	id := s.peek()
	s.next = id + 1
	return id
}

// observe moves the sequence past id so it is never handed out.
func (s *idSequence) observe(id int) {
	if id+1 > s.peek() {
		s.next = id + 1
	}
}

// RecordStore holds id-keyed records with their own id sequence.
type RecordStore struct {
	kind    RecordKind
	records map[int]Record
	ids     idSequence
}

func NewRecordStore(kind RecordKind) *RecordStore {
	return &RecordStore{kind: kind, records: make(map[int]Record)}
}

// Add stores a new record under the next id and returns that id.
func (rs *RecordStore) Add(date, details string) int {
	id := rs.ids.take()
	rs.records[id] = Record{Date: date, Details: details, Type: rs.kind}
	return id
}

// AddWithID stores a record under an explicit id, as read from a file.
func (rs *RecordStore) AddWithID(id int, date, details string) {
	rs.records[id] = Record{Date: date, Details: details, Type: rs.kind}
	rs.ids.observe(id)
}

// Update replaces the record's date and details. It reports false when id is absent.
func (rs *RecordStore) Update(id int, date, details string) bool {
	if _, ok := rs.records[id]; !ok {
		return false
	}
	rs.records[id] = Record{Date: date, Details: details, Type: rs.kind}
	return true
}

func (rs *RecordStore) Remove(id int) bool {
	if _, ok := rs.records[id]; !ok {
		return false
	}
	delete(rs.records, id)
	return true
}

func (rs *RecordStore) Get(id int) (Record, bool) {
	r, ok := rs.records[id]
	return r, ok
}

// All returns the records ordered by id.
func (rs *RecordStore) All() []RecordEntry {
	out := make([]RecordEntry, 0, len(rs.records))
	for id, r := range rs.records {
		out = append(out, RecordEntry{ID: id, Record: r})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (rs *RecordStore) Len() int { return len(rs.records) }

// NextID is the id the next Add will assign.
func (rs *RecordStore) NextID() int { return rs.ids.peek() }

func (rs *RecordStore) Kind() RecordKind { return rs.kind }
