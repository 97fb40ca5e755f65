package clinic

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Database mirrors the clinic data into normalized SQLite tables.
type Database struct {
	db  *sql.DB
	log *slog.Logger
}

// NewDatabase opens (or creates) the SQLite database at dbPath and applies
// schema migrations. log may be nil.
func NewDatabase(dbPath string, log *slog.Logger) (*Database, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Database{db: db, log: orDiscard(log)}, nil
}

func (d *Database) Close() error { return d.db.Close() }

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS owners (
            id INTEGER PRIMARY KEY,
            name TEXT NOT NULL,
            address TEXT NOT NULL,
            phone TEXT NOT NULL,
            email TEXT NOT NULL
        );`,
		// pet ids may point at deleted pets, so no foreign key
		`CREATE TABLE IF NOT EXISTS owner_pets (
            owner_id INTEGER NOT NULL REFERENCES owners(id) ON DELETE CASCADE,
            position INTEGER NOT NULL,
            pet_id INTEGER NOT NULL,
            PRIMARY KEY (owner_id, position)
        );`,
		`CREATE TABLE IF NOT EXISTS owner_records (
            owner_id INTEGER NOT NULL REFERENCES owners(id) ON DELETE CASCADE,
            record_id INTEGER NOT NULL,
            date TEXT NOT NULL,
            details TEXT NOT NULL,
            PRIMARY KEY (owner_id, record_id)
        );`,
		`CREATE TABLE IF NOT EXISTS pets (
            id INTEGER PRIMARY KEY,
            name TEXT NOT NULL,
            breed TEXT NOT NULL,
            age INTEGER NOT NULL,
            owner_id INTEGER NOT NULL DEFAULT -1,
            vaccination_status TEXT NOT NULL DEFAULT ''
        );`,
		`CREATE TABLE IF NOT EXISTS pet_vaccinations (
            pet_id INTEGER NOT NULL REFERENCES pets(id) ON DELETE CASCADE,
            position INTEGER NOT NULL,
            vaccination_id INTEGER NOT NULL,
            name TEXT NOT NULL,
            date TEXT NOT NULL,
            status TEXT NOT NULL,
            PRIMARY KEY (pet_id, position)
        );`,
		`CREATE TABLE IF NOT EXISTS pet_records (
            pet_id INTEGER NOT NULL REFERENCES pets(id) ON DELETE CASCADE,
            kind TEXT NOT NULL CHECK (kind IN ('medical','general')),
            record_id INTEGER NOT NULL,
            date TEXT NOT NULL,
            details TEXT NOT NULL,
            PRIMARY KEY (pet_id, kind, record_id)
        );`,
		`CREATE TABLE IF NOT EXISTS appointments (
            id INTEGER PRIMARY KEY,
            owner_id INTEGER NOT NULL,
            pet_id INTEGER NOT NULL,
            date TEXT NOT NULL,
            time TEXT NOT NULL,
            purpose TEXT NOT NULL,
            status TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY,
            username TEXT NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL
        );`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return tx.Commit()
}

const (
	recordKindMedical = "medical"
	recordKindGeneral = "general"
)

// ---------------------------------------------------------------------------
// Export
// ---------------------------------------------------------------------------

// Export replaces the database contents with s in one transaction. Rows whose
// id was already exported are logged and skipped, so the first one wins as it
// does for lookups on the loaded files.
func (d *Database) Export(s *State) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"owner_pets", "owner_records", "owners", "pet_vaccinations", "pet_records", "pets", "appointments", "users"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	ins, err := prepareInserts(tx)
	if err != nil {
		return err
	}
	defer ins.close()

	seen := map[string]map[int]bool{}
	first := func(kind string, id int) bool {
		if seen[kind] == nil {
			seen[kind] = map[int]bool{}
		}
		if seen[kind][id] {
			d.log.Warn("skipping duplicate id on export", slog.String("kind", kind), slog.Int("id", id))
			return false
		}
		seen[kind][id] = true
		return true
	}

	for _, o := range s.Owners {
		if !first("owner", o.ID) {
			continue
		}
		if _, err := ins.owner.Exec(o.ID, o.Name, o.Address, o.Phone, o.Email); err != nil {
			return fmt.Errorf("insert owner %d: %w", o.ID, err)
		}
		for i, petID := range o.PetIDs {
			if _, err := ins.ownerPet.Exec(o.ID, i, petID); err != nil {
				return fmt.Errorf("insert owner %d pet: %w", o.ID, err)
			}
		}
		for _, r := range o.Records.All() {
			if _, err := ins.ownerRecord.Exec(o.ID, r.ID, r.Date, r.Details); err != nil {
				return fmt.Errorf("insert owner %d record: %w", o.ID, err)
			}
		}
	}

	for _, p := range s.Pets {
		if !first("pet", p.ID) {
			continue
		}
		if _, err := ins.pet.Exec(p.ID, p.Name, p.Breed, p.Age, p.OwnerID, p.VaccinationOverview()); err != nil {
			return fmt.Errorf("insert pet %d: %w", p.ID, err)
		}
		for i, v := range p.Vaccinations.All() {
			if _, err := ins.vaccination.Exec(p.ID, i, v.ID, v.Name, v.Date, v.Status); err != nil {
				return fmt.Errorf("insert pet %d vaccination: %w", p.ID, err)
			}
		}
		for kind, rs := range map[string]*RecordStore{recordKindMedical: p.MedicalHistory, recordKindGeneral: p.GeneralRecords} {
			for _, r := range rs.All() {
				if _, err := ins.petRecord.Exec(p.ID, kind, r.ID, r.Date, r.Details); err != nil {
					return fmt.Errorf("insert pet %d record: %w", p.ID, err)
				}
			}
		}
	}

	for _, a := range s.Appointments {
		if !first("appointment", a.ID) {
			continue
		}
		if _, err := ins.appointment.Exec(a.ID, a.OwnerID, a.PetID, a.Date, a.Time, a.Purpose, a.Status); err != nil {
			return fmt.Errorf("insert appointment %d: %w", a.ID, err)
		}
	}
	for _, u := range s.Users {
		if !first("user", u.ID) {
			continue
		}
		if _, err := ins.user.Exec(u.ID, u.Username, u.PasswordHash, u.Role().String()); err != nil {
			return fmt.Errorf("insert user %d: %w", u.ID, err)
		}
	}

	return tx.Commit()
}

type inserts struct {
	owner, ownerPet, ownerRecord *sql.Stmt
	pet, vaccination, petRecord  *sql.Stmt
	appointment, user            *sql.Stmt
}

func prepareInserts(tx *sql.Tx) (*inserts, error) {
	ins := &inserts{}
	for _, p := range []struct {
		dst   **sql.Stmt
		query string
	}{
		{&ins.owner, `INSERT INTO owners(id,name,address,phone,email) VALUES(?,?,?,?,?)`},
		{&ins.ownerPet, `INSERT INTO owner_pets(owner_id,position,pet_id) VALUES(?,?,?)`},
		{&ins.ownerRecord, `INSERT INTO owner_records(owner_id,record_id,date,details) VALUES(?,?,?,?)`},
		{&ins.pet, `INSERT INTO pets(id,name,breed,age,owner_id,vaccination_status) VALUES(?,?,?,?,?,?)`},
		{&ins.vaccination, `INSERT INTO pet_vaccinations(pet_id,position,vaccination_id,name,date,status) VALUES(?,?,?,?,?,?)`},
		{&ins.petRecord, `INSERT INTO pet_records(pet_id,kind,record_id,date,details) VALUES(?,?,?,?,?)`},
		{&ins.appointment, `INSERT INTO appointments(id,owner_id,pet_id,date,time,purpose,status) VALUES(?,?,?,?,?,?,?)`},
		{&ins.user, `INSERT INTO users(id,username,password_hash,role) VALUES(?,?,?,?)`},
	} {
		stmt, err := tx.Prepare(p.query)
		if err != nil {
			ins.close()
			return nil, fmt.Errorf("prepare: %w", err)
		}
		*p.dst = stmt
	}
	return ins, nil
}

func (ins *inserts) close() {
	for _, s := range []*sql.Stmt{ins.owner, ins.ownerPet, ins.ownerRecord, ins.pet, ins.vaccination, ins.petRecord, ins.appointment, ins.user} {
		if s != nil {
			s.Close()
		}
	}
}

// ---------------------------------------------------------------------------
// Import
// ---------------------------------------------------------------------------

// Import reads the whole dataset back. Ids are kept as stored.
func (d *Database) Import() (*State, error) {
	s := &State{}

	byOwner := map[int]*Owner{}
	if err := d.each(`SELECT id,name,address,phone,email FROM owners ORDER BY id`, func(rows *sql.Rows) error {
		var id int
		var name, address, phone, email string
		if err := rows.Scan(&id, &name, &address, &phone, &email); err != nil {
			return err
		}
		o := NewOwner(id, name, address, phone, email)
		s.Owners = append(s.Owners, o)
		byOwner[id] = o
		return nil
	}); err != nil {
		return nil, err
	}

	if err := d.each(`SELECT owner_id,pet_id FROM owner_pets ORDER BY owner_id,position`, func(rows *sql.Rows) error {
		var ownerID, petID int
		if err := rows.Scan(&ownerID, &petID); err != nil {
			return err
		}
		if o := byOwner[ownerID]; o != nil {
			o.PetIDs = append(o.PetIDs, petID)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := d.each(`SELECT owner_id,record_id,date,details FROM owner_records ORDER BY owner_id,record_id`, func(rows *sql.Rows) error {
		var ownerID, recID int
		var date, details string
		if err := rows.Scan(&ownerID, &recID, &date, &details); err != nil {
			return err
		}
		if o := byOwner[ownerID]; o != nil {
			o.Records.AddWithID(recID, date, details)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	byPet := map[int]*Pet{}
	if err := d.each(`SELECT id,name,breed,age,owner_id,vaccination_status FROM pets ORDER BY id`, func(rows *sql.Rows) error {
		var id, age, ownerID int
		var name, breed, status string
		if err := rows.Scan(&id, &name, &breed, &age, &ownerID, &status); err != nil {
			return err
		}
		p := NewPet(id, name, breed, age, ownerID)
		p.VaccinationStatus = status
		s.Pets = append(s.Pets, p)
		byPet[id] = p
		return nil
	}); err != nil {
		return nil, err
	}

	if err := d.each(`SELECT pet_id,vaccination_id,name,date,status FROM pet_vaccinations ORDER BY pet_id,position`, func(rows *sql.Rows) error {
		var petID, vaccID int
		var name, date, status string
		if err := rows.Scan(&petID, &vaccID, &name, &date, &status); err != nil {
			return err
		}
		if p := byPet[petID]; p != nil {
			p.Vaccinations.AddWithID(vaccID, name, date, status)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := d.each(`SELECT pet_id,kind,record_id,date,details FROM pet_records ORDER BY pet_id,kind,record_id`, func(rows *sql.Rows) error {
		var petID, recID int
		var kind, date, details string
		if err := rows.Scan(&petID, &kind, &recID, &date, &details); err != nil {
			return err
		}
		p := byPet[petID]
		if p == nil {
			return nil
		}
		if kind == recordKindMedical {
			p.MedicalHistory.AddWithID(recID, date, details)
		} else {
			p.GeneralRecords.AddWithID(recID, date, details)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := d.each(`SELECT id,owner_id,pet_id,date,time,purpose,status FROM appointments ORDER BY id`, func(rows *sql.Rows) error {
		a := &Appointment{}
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.PetID, &a.Date, &a.Time, &a.Purpose, &a.Status); err != nil {
			return err
		}
		s.Appointments = append(s.Appointments, a)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := d.each(`SELECT id,username,password_hash,role FROM users ORDER BY id`, func(rows *sql.Rows) error {
		var id int
		var username, hash, role string
		if err := rows.Scan(&id, &username, &hash, &role); err != nil {
			return err
		}
		u, err := NewUserFromRoleName(id, username, hash, role)
		if err != nil {
			return fmt.Errorf("user %d: %w", id, err)
		}
		s.Users = append(s.Users, u)
		return nil
	}); err != nil {
		return nil, err
	}

	s.Reindex()
	return s, nil
}

func (d *Database) each(query string, fn func(*sql.Rows) error) error {
	rows, err := d.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
