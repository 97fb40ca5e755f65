package clinic

import "strings"

const (
	VaccinationCompleted       = "completed"
	VaccinationPending         = "pending"
	VaccinationBoosterRequired = "booster required"
	VaccinationNone            = "none"
)

type Vaccination struct {
	ID     int
	Name   string
	Date   string
	Status string
}

// VaccinationStore keeps a pet's vaccinations in insertion order.
type VaccinationStore struct {
	items []Vaccination
	ids   idSequence
}

func NewVaccinationStore() *VaccinationStore { return &VaccinationStore{} }

func (vs *VaccinationStore) Add(name, date, status string) int {
	id := vs.ids.take()
	vs.items = append(vs.items, Vaccination{ID: id, Name: name, Date: date, Status: status})
	return id
}

// AddWithID stores a vaccination read from a file. A repeated id replaces the
// earlier entry in place.
func (vs *VaccinationStore) AddWithID(id int, name, date, status string) {
	v := Vaccination{ID: id, Name: name, Date: date, Status: status}
	vs.ids.observe(id)
	if i := vs.index(id); i >= 0 {
		vs.items[i] = v
		return
	}
	vs.items = append(vs.items, v)
}

func (vs *VaccinationStore) Update(id int, name, date, status string) bool {
	i := vs.index(id)
	if i < 0 {
		return false
	}
	vs.items[i] = Vaccination{ID: id, Name: name, Date: date, Status: status}
	return true
}

func (vs *VaccinationStore) Remove(id int) bool {
	i := vs.index(id)
	if i < 0 {
		return false
	}
	vs.items = append(vs.items[:i], vs.items[i+1:]...)
	return true
}

func (vs *VaccinationStore) Get(id int) (Vaccination, bool) {
	if i := vs.index(id); i >= 0 {
		return vs.items[i], true
	}
	return Vaccination{}, false
}

func (vs *VaccinationStore) All() []Vaccination {
	out := make([]Vaccination, len(vs.items))
	copy(out, vs.items)
	return out
}

func (vs *VaccinationStore) Len() int { return len(vs.items) }

func (vs *VaccinationStore) NextID() int { return vs.ids.peek() }

// OverallStatus summarises the live entries: "none" when empty, "pending" if
// any entry is pending or needs a booster, otherwise "completed".
func (vs *VaccinationStore) OverallStatus() string {
	if len(vs.items) == 0 {
		return VaccinationNone
	}
	for _, v := range vs.items {
		switch strings.ToLower(strings.TrimSpace(v.Status)) {
		case VaccinationPending, VaccinationBoosterRequired:
			return VaccinationPending
		}
	}
	return VaccinationCompleted
}

func (vs *VaccinationStore) index(id int) int {
	for i, v := range vs.items {
		if v.ID == id {
			return i
		}
	}
	return -1
}
