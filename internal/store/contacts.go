package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// ContactMatch is the outcome of resolving a spoken name against the
// CRM. At most one of Contact and Suggestions is set.
type ContactMatch struct {
	Contact     *Contact
	Suggestions []*Contact
}

// CreateContact inserts a new contact and returns it with its ID set.
func (s *Store) CreateContact(c *Contact) (*Contact, error) {
	if c.ID == "" {
		c.ID = newID()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := s.db.Exec(`
		INSERT INTO contacts (id, first_name, last_name, email, company, job_title, location, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.FirstName, c.LastName, c.Email, c.Company, c.JobTitle, c.Location, c.Notes, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return c, nil
}

// GetContact returns one contact by ID, or nil when absent.
func (s *Store) GetContact(id string) (*Contact, error) {
	rows, err := s.db.Query(`
		SELECT id, first_name, last_name, email, company, job_title, location, notes, created_at, updated_at
		FROM contacts WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query contact: %w", err)
	}
	defer rows.Close()
	contacts, err := scanContacts(rows)
	if err != nil || len(contacts) == 0 {
		return nil, err
	}
	return contacts[0], nil
}

// AllContacts returns every contact ordered by name.
func (s *Store) AllContacts() ([]*Contact, error) {
	rows, err := s.db.Query(`
		SELECT id, first_name, last_name, email, company, job_title, location, notes, created_at, updated_at
		FROM contacts ORDER BY first_name COLLATE NOCASE, last_name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()
	return scanContacts(rows)
}

// SearchContacts returns contacts whose name, company, or email contains
// the query (case-insensitive).
func (s *Store) SearchContacts(query string) ([]*Contact, error) {
	like := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT id, first_name, last_name, email, company, job_title, location, notes, created_at, updated_at
		FROM contacts
		WHERE first_name LIKE ? COLLATE NOCASE
		   OR last_name LIKE ? COLLATE NOCASE
		   OR (first_name || ' ' || last_name) LIKE ? COLLATE NOCASE
		   OR company LIKE ? COLLATE NOCASE
		   OR email LIKE ? COLLATE NOCASE
		ORDER BY first_name COLLATE NOCASE`,
		like, like, like, like, like)
	if err != nil {
		return nil, fmt.Errorf("failed to search contacts: %w", err)
	}
	defer rows.Close()
	return scanContacts(rows)
}

// FindContactByName resolves a spoken name to a contact. Resolution
// order: exact first+last name, then a unique first-name match, then a
// substring search across first and last names. Anything short of a
// unique hit comes back as suggestions instead of a match.
func (s *Store) FindContactByName(name string) (*ContactMatch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return &ContactMatch{}, nil
	}

	parts := strings.Fields(name)
	first := parts[0]

	if len(parts) >= 2 {
		last := strings.Join(parts[1:], " ")
		rows, err := s.db.Query(`
			SELECT id, first_name, last_name, email, company, job_title, location, notes, created_at, updated_at
			FROM contacts WHERE first_name = ? COLLATE NOCASE AND last_name = ? COLLATE NOCASE`,
			first, last)
		if err != nil {
			return nil, fmt.Errorf("failed to query contacts: %w", err)
		}
		exact, err := scanContacts(rows)
		rows.Close()
		if err != nil {
			return nil, err
		}
		if len(exact) > 0 {
			return &ContactMatch{Contact: exact[0]}, nil
		}
	}

	rows, err := s.db.Query(`
		SELECT id, first_name, last_name, email, company, job_title, location, notes, created_at, updated_at
		FROM contacts WHERE first_name = ? COLLATE NOCASE`, first)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	byFirst, err := scanContacts(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	if len(byFirst) == 1 {
		return &ContactMatch{Contact: byFirst[0]}, nil
	}
	if len(byFirst) > 1 {
		return &ContactMatch{Suggestions: byFirst}, nil
	}

	// Spoken names are often partial ("Rob" for "Robert"), so the last
	// tier substring-matches both name columns.
	like := "%" + first + "%"
	rows, err = s.db.Query(`
		SELECT id, first_name, last_name, email, company, job_title, location, notes, created_at, updated_at
		FROM contacts
		WHERE first_name LIKE ? COLLATE NOCASE OR last_name LIKE ? COLLATE NOCASE
		ORDER BY first_name COLLATE NOCASE LIMIT 5`, like, like)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	fuzzy, err := scanContacts(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(fuzzy) > 0 {
		return &ContactMatch{Suggestions: fuzzy}, nil
	}
	return &ContactMatch{}, nil
}

// UpdateContactFields merges CRM changes into an existing contact.
// Company and job title only change when the new value is longer than
// the stored one. Location fills in only when currently empty. Notes
// are appended under a date stamp unless the text is already present.
func (s *Store) UpdateContactFields(id string, upd ContactUpdate, now time.Time) (*Contact, error) {
	c, err := s.GetContact(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("contact %s not found", id)
	}

	changed := false
	if v := strings.TrimSpace(upd.Company); v != "" && len(v) > len(c.Company) {
		c.Company = v
		changed = true
	}
	if v := strings.TrimSpace(upd.JobTitle); v != "" && len(v) > len(c.JobTitle) {
		c.JobTitle = v
		changed = true
	}
	if v := strings.TrimSpace(upd.Location); v != "" && c.Location == "" {
		c.Location = v
		changed = true
	}
	if v := strings.TrimSpace(upd.Notes); v != "" && !strings.Contains(c.Notes, v) {
		stamp := fmt.Sprintf("[%s] %s", now.Format("2006-01-02"), v)
		if c.Notes == "" {
			c.Notes = stamp
		} else {
			c.Notes = c.Notes + "\n" + stamp
		}
		changed = true
	}

	if !changed {
		return c, nil
	}

	c.UpdatedAt = now.UTC()
	_, err = s.db.Exec(`
		UPDATE contacts SET company = ?, job_title = ?, location = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		c.Company, c.JobTitle, c.Location, c.Notes, c.UpdatedAt, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	return c, nil
}

func scanContacts(rows *sql.Rows) ([]*Contact, error) {
	var out []*Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Company,
			&c.JobTitle, &c.Location, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		out = append(out, &c)
	}
	return out, nil
}
