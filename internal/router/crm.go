package router

import (
	"fmt"
	"time"

	"github.com/avogt/scribe/internal/analyze"
	"github.com/avogt/scribe/internal/logging"
	"github.com/avogt/scribe/internal/store"
)

// applyCRMUpdates resolves each update's contact name and merges the
// new facts in. Names that don't resolve to exactly one contact are
// reported, never guessed.
func (r *Router) applyCRMUpdates(a *analyze.Analysis, m *Manifest) {
	now := time.Now().UTC()
	for _, upd := range a.CRMUpdates {
		match, err := r.repo.FindContactByName(upd.ContactName)
		if err != nil {
			m.CRM.Errors = append(m.CRM.Errors, fmt.Sprintf("%s: %v", upd.ContactName, err))
			continue
		}
		if match.Contact == nil {
			logging.Info("router", "crm update for %q skipped, no unique contact", upd.ContactName)
			m.CRM.NotFound = append(m.CRM.NotFound, upd.ContactName)
			continue
		}
		_, err = r.repo.UpdateContactFields(match.Contact.ID, store.ContactUpdate{
			Company:  upd.Company,
			JobTitle: upd.Position,
			Location: upd.Location,
			Notes:    upd.PersonalNotes,
		}, now)
		if err != nil {
			m.CRM.Errors = append(m.CRM.Errors, fmt.Sprintf("%s: %v", upd.ContactName, err))
			continue
		}
		m.CRM.Updated = append(m.CRM.Updated, upd.ContactName)
	}
}
