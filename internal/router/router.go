package router

import (
	"fmt"
	"strings"
	"time"

	"github.com/avogt/scribe/internal/analyze"
	"github.com/avogt/scribe/internal/logging"
	"github.com/avogt/scribe/internal/store"
)

// Repo is the slice of the store the router writes through.
type Repo interface {
	CreateOrUpdateJournal(j *store.Journal) (*store.Journal, bool, error)
	CreateMeeting(m *store.Meeting) (*store.Meeting, error)
	FindContactByName(name string) (*store.ContactMatch, error)
	GetReflection(id string) (*store.Reflection, error)
	FindSimilarReflection(topicKey, title string, tags []string) (*store.Reflection, error)
	CreateReflection(r *store.Reflection) (*store.Reflection, error)
	AppendToReflection(id string, incoming *store.Reflection) (*store.Reflection, error)
	CreateTasks(tasks []*store.Task) ([]*store.Task, error)
	UpdateContactFields(id string, upd store.ContactUpdate, now time.Time) (*store.Contact, error)
}

// Router turns one Analysis into database records. Persist order is
// fixed (journal, meetings, reflections, tasks) so task origins always
// reference records that already exist.
type Router struct {
	repo Repo
}

func New(repo Repo) *Router {
	return &Router{repo: repo}
}

// Persist writes every record the analysis calls for and returns the
// manifest. Lookup problems degrade to manifest warnings; a failed
// write aborts the run and surfaces as an error, with the partial
// manifest alongside it. Recovery is idempotent re-processing, not
// rollback.
func (r *Router) Persist(a *analyze.Analysis, transcript *store.Transcript) (*Manifest, error) {
	m := newManifest(transcript.ID)
	m.PrimaryCategory = a.PrimaryCategory
	m.Summary = a.Summary

	journals, err := r.persistJournals(a, transcript, m)
	if err != nil {
		return m, err
	}
	meetings, err := r.persistMeetings(a, transcript, m)
	if err != nil {
		return m, err
	}
	reflections, err := r.persistReflections(a, transcript, m)
	if err != nil {
		return m, err
	}
	if err := r.persistTasks(a, transcript, journals, meetings, reflections, m); err != nil {
		return m, err
	}
	r.applyCRMUpdates(a, m)

	return m, nil
}

func (r *Router) persistJournals(a *analyze.Analysis, tr *store.Transcript, m *Manifest) ([]*store.Journal, error) {
	var out []*store.Journal
	for i := range a.Journals {
		entry := &a.Journals[i]
		date := entry.Date
		if date == "" {
			date = tr.RecordingDate
		}
		j := &store.Journal{
			Date:            date,
			Title:           entry.Title,
			Summary:         entry.Summary,
			Mood:            entry.Mood,
			Effort:          entry.Effort,
			Sports:          entry.Sports,
			KeyEvents:       entry.KeyEvents,
			Accomplishments: entry.Accomplishments,
			Challenges:      entry.Challenges,
			Gratitude:       entry.Gratitude,
			TomorrowFocus:   entry.TomorrowFocus,
			Sections:        entry.Sections,
			Content:         entry.Content,
			TranscriptID:    tr.ID,
			SourceFile:      tr.SourceFile,
			DurationSeconds: int(tr.DurationSeconds),
		}
		saved, created, err := r.repo.CreateOrUpdateJournal(j)
		if err != nil {
			return out, fmt.Errorf("journal persist for %s failed: %w", date, err)
		}
		if created {
			logging.Info("router", "created journal %s for %s", saved.ID, saved.Date)
		} else {
			logging.Info("router", "merged into existing journal %s for %s", saved.ID, saved.Date)
		}
		// Entries sharing a date merge into one row.
		if !containsString(m.JournalIDs, saved.ID) {
			m.JournalIDs = append(m.JournalIDs, saved.ID)
			out = append(out, saved)
		}
	}
	return out, nil
}

func (r *Router) persistMeetings(a *analyze.Analysis, tr *store.Transcript, m *Manifest) ([]*store.Meeting, error) {
	var out []*store.Meeting
	for _, me := range a.Meetings {
		contactID := ""
		if me.PersonName != "" {
			match, err := r.repo.FindContactByName(me.PersonName)
			if err != nil {
				r.warn(m, "contact lookup for %q failed: %v", me.PersonName, err)
			} else if match.Contact != nil {
				contactID = match.Contact.ID
				m.ContactMatches[me.PersonName] = ContactMatchInfo{
					ContactID:   match.Contact.ID,
					ContactName: match.Contact.FullName(),
				}
			} else if len(match.Suggestions) > 0 {
				info := ContactMatchInfo{}
				for _, s := range match.Suggestions {
					info.Suggestions = append(info.Suggestions, s.FullName())
				}
				m.ContactMatches[me.PersonName] = info
			}
		}

		date := me.Date
		if date == "" {
			date = tr.RecordingDate
		}
		saved, err := r.repo.CreateMeeting(&store.Meeting{
			Title:           me.Title,
			Date:            date,
			Location:        me.Location,
			PersonName:      me.PersonName,
			ContactID:       contactID,
			Summary:         me.Summary,
			Topics:          me.Topics,
			PeopleMentioned: me.PeopleMentioned,
			FollowUps:       me.FollowUps,
			TranscriptID:    tr.ID,
			SourceFile:      tr.SourceFile,
			DurationSeconds: int(tr.DurationSeconds),
		})
		if err != nil {
			return out, fmt.Errorf("meeting persist for %q failed: %w", me.Title, err)
		}
		m.MeetingIDs = append(m.MeetingIDs, saved.ID)
		out = append(out, saved)
	}
	return out, nil
}

func (r *Router) persistReflections(a *analyze.Analysis, tr *store.Transcript, m *Manifest) ([]*store.Reflection, error) {
	var out []*store.Reflection
	for _, re := range a.Reflections {
		incoming := &store.Reflection{
			Title:           re.Title,
			Date:            tr.RecordingDate,
			TopicKey:        re.TopicKey,
			Tags:            re.Tags,
			Sections:        re.Sections,
			Content:         re.Content,
			TranscriptID:    tr.ID,
			SourceFile:      tr.SourceFile,
			DurationSeconds: int(tr.DurationSeconds),
		}

		target := r.resolveAppendTarget(re, m)
		if target != nil {
			updated, err := r.repo.AppendToReflection(target.ID, incoming)
			if err != nil {
				return out, fmt.Errorf("reflection append to %s failed: %w", target.ID, err)
			}
			logging.Info("router", "appended to reflection %s (%s)", updated.ID, updated.Title)
			m.AppendedIDs = append(m.AppendedIDs, updated.ID)
			out = append(out, updated)
			continue
		}

		saved, err := r.repo.CreateReflection(incoming)
		if err != nil {
			return out, fmt.Errorf("reflection persist for %q failed: %w", re.Title, err)
		}
		m.ReflectionIDs = append(m.ReflectionIDs, saved.ID)
		out = append(out, saved)
	}
	return out, nil
}

// resolveAppendTarget picks the existing reflection to extend: the
// model-provided ID when valid, otherwise a heuristic match. An invalid
// append_to_id downgrades to create-new with a warning.
func (r *Router) resolveAppendTarget(re analyze.ReflectionEntry, m *Manifest) *store.Reflection {
	if re.AppendToID != "" {
		target, err := r.repo.GetReflection(re.AppendToID)
		if err != nil {
			r.warn(m, "reflection lookup %s failed: %v", re.AppendToID, err)
		} else if target != nil {
			return target
		} else {
			r.warn(m, "append_to_id %s does not exist, creating new reflection", re.AppendToID)
		}
	}

	target, err := r.repo.FindSimilarReflection(re.TopicKey, re.Title, re.Tags)
	if err != nil {
		r.warn(m, "reflection similarity lookup failed: %v", err)
		return nil
	}
	return target
}

// persistTasks creates the analysis tasks plus journal tomorrow-focus
// tasks, linking each to the record it came from.
func (r *Router) persistTasks(a *analyze.Analysis, tr *store.Transcript,
	journals []*store.Journal, meetings []*store.Meeting, reflections []*store.Reflection, m *Manifest) error {

	var journal *store.Journal
	if len(journals) > 0 {
		journal = journals[0]
	}

	var tasks []*store.Task
	for _, te := range a.Tasks {
		t := &store.Task{
			Title:        te.Title,
			Description:  te.Description,
			Priority:     te.Priority,
			DueDate:      te.DueDate,
			TranscriptID: tr.ID,
		}
		r.linkTask(t, te.RelatedPerson, a.PrimaryCategory, journal, meetings, reflections)
		tasks = append(tasks, t)
	}

	for _, j := range journals {
		for _, focus := range j.TomorrowFocus {
			if len(strings.TrimSpace(focus)) <= 3 {
				continue
			}
			tasks = append(tasks, &store.Task{
				Title:        strings.TrimSpace(focus),
				Description:  "From journal tomorrow_focus",
				OriginType:   "journal",
				OriginID:     j.ID,
				TranscriptID: tr.ID,
			})
		}
	}

	created, err := r.repo.CreateTasks(tasks)
	for _, t := range created {
		if !containsString(m.TaskIDs, t.ID) {
			m.TaskIDs = append(m.TaskIDs, t.ID)
		}
	}
	if err != nil {
		return fmt.Errorf("task persist failed: %w", err)
	}
	return nil
}

// linkTask assigns a task's origin. Meetings always claim their tasks;
// journals claim them only for journal memos, reflections only for
// reflection memos that produced no meetings.
func (r *Router) linkTask(t *store.Task, relatedPerson, category string,
	journal *store.Journal, meetings []*store.Meeting, reflections []*store.Reflection) {

	if len(meetings) > 0 {
		target := meetings[0]
		if relatedPerson != "" {
			for _, me := range meetings {
				if strings.Contains(strings.ToLower(me.PersonName), strings.ToLower(relatedPerson)) ||
					strings.Contains(strings.ToLower(relatedPerson), strings.ToLower(me.PersonName)) {
					target = me
					break
				}
			}
		}
		t.OriginType = "meeting"
		t.OriginID = target.ID
		t.ContactID = target.ContactID
		return
	}
	if journal != nil && category == analyze.CategoryJournal {
		t.OriginType = "journal"
		t.OriginID = journal.ID
		return
	}
	if len(reflections) > 0 && category == analyze.CategoryReflection {
		t.OriginType = "reflection"
		t.OriginID = reflections[0].ID
	}
}

func (r *Router) warn(m *Manifest, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logging.Warn("router", "%s", msg)
	m.Warnings = append(m.Warnings, msg)
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
