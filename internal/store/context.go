package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Calendar, email, and application tables are filled by external sync
// jobs; this module only reads them to build analysis context.

// CalendarEventsAround returns events within days of the given date.
func (s *Store) CalendarEventsAround(date string, days int, limit int) ([]*CalendarEvent, error) {
	center, err := time.Parse("2006-01-02", date)
	if err != nil {
		center = time.Now().UTC()
	}
	lo := center.AddDate(0, 0, -days)
	hi := center.AddDate(0, 0, days+1)

	rows, err := s.db.Query(`
		SELECT id, summary, start_time, attendees FROM calendar_events
		WHERE start_time >= ? AND start_time < ?
		ORDER BY start_time LIMIT ?`, lo, hi, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar events: %w", err)
	}
	defer rows.Close()

	var out []*CalendarEvent
	for rows.Next() {
		var e CalendarEvent
		var attendees string
		if err := rows.Scan(&e.ID, &e.Summary, &e.StartTime, &attendees); err != nil {
			return nil, fmt.Errorf("failed to scan calendar event: %w", err)
		}
		e.Attendees = unmarshalJSON[string](attendees)
		out = append(out, &e)
	}
	return out, nil
}

// RecentEmailsForContact returns the newest synced emails linked to the
// contact.
func (s *Store) RecentEmailsForContact(contactID string, limit int) ([]*Email, error) {
	rows, err := s.db.Query(`
		SELECT id, contact_id, subject, sender, date, snippet FROM emails
		WHERE contact_id = ? ORDER BY date DESC LIMIT ?`, contactID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query emails: %w", err)
	}
	defer rows.Close()
	return scanEmails(rows)
}

// ActiveApplications returns job applications not yet closed out.
func (s *Store) ActiveApplications(limit int) ([]*Application, error) {
	rows, err := s.db.Query(`
		SELECT id, name, company, position, status, stage FROM applications
		WHERE status NOT IN ('rejected', 'withdrawn', 'closed')
		ORDER BY name LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	var out []*Application
	for rows.Next() {
		var a Application
		if err := rows.Scan(&a.ID, &a.Name, &a.Company, &a.Position, &a.Status, &a.Stage); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		out = append(out, &a)
	}
	return out, nil
}

func scanEmails(rows *sql.Rows) ([]*Email, error) {
	var out []*Email
	for rows.Next() {
		var e Email
		if err := rows.Scan(&e.ID, &e.ContactID, &e.Subject, &e.Sender, &e.Date, &e.Snippet); err != nil {
			return nil, fmt.Errorf("failed to scan email: %w", err)
		}
		out = append(out, &e)
	}
	return out, nil
}
