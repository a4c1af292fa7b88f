package service

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/msomdec/gallery-admin/internal/domain"
	"github.com/msomdec/gallery-admin/internal/gallery"
)

// Editable photo fields accepted by SetField.
const (
	FieldLocation    = "location"
	FieldYear        = "year"
	FieldAlt         = "alt"
	FieldDescription = "description"
	FieldTags        = "tags"
)

// Sort orders accepted by Query.Sort.
const (
	SortYearDesc = "year-desc"
	SortYearAsc  = "year-asc"
	SortFilename = "filename"
	SortLocation = "location"
)

// Missing filters accepted by Query.Missing.
const (
	MissingLocation = "location"
	MissingYear     = "year"
)

// EditSession holds the decoded gallery and the edits made to it since the
// last load. Records stay in document order; deleted records remain in the
// list until a commit reload drops them.
type EditSession struct {
	mu        sync.Mutex
	document  string
	baseSHA   string
	records   []domain.Photo
	edits     map[string]domain.Photo
	deletions map[string]bool
	additions map[string]bool
}

// PhotoState is a record together with its pending status.
type PhotoState struct {
	domain.Photo
	Edited bool
	Added  bool
}

// Query selects and orders the active records.
type Query struct {
	Search   string // Case-insensitive match on alt, location, file name, year, tags, description
	Year     string
	Location string
	Missing  string // "location" or "year"
	Sort     string
}

// Facets are the distinct values available for filtering.
type Facets struct {
	Years     []string // Newest first
	Locations []string
}

// Stats summarizes a session for the page header.
type Stats struct {
	Total           int
	Active          int
	Edited          int
	Deleted         int
	Added           int
	MissingLocation int
	MissingYear     int
}

// SessionSnapshot is a deep copy of the session state.
type SessionSnapshot struct {
	BaseSHA          string
	Records          []domain.Photo
	PendingEdits     map[string]domain.Photo
	PendingDeletions []string
	PendingAdditions []string
}

// LoadSession decodes doc into a fresh session tied to the version sha.
func LoadSession(doc, sha string) *EditSession {
	s := &EditSession{}
	s.reset(doc, sha)
	return s
}

func (s *EditSession) reset(doc, sha string) {
	s.document = doc
	s.baseSHA = sha
	s.records = gallery.Decode(doc)
	s.edits = make(map[string]domain.Photo)
	s.deletions = make(map[string]bool)
	s.additions = make(map[string]bool)
}

// BaseSHA returns the version token the session was loaded at.
func (s *EditSession) BaseSHA() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseSHA
}

func (s *EditSession) indexOf(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns the record with the given id.
func (s *EditSession) Get(id string) (domain.Photo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.Photo{}, false
	}
	return s.records[i].Clone(), true
}

// Lookup returns the record with the given id and its pending status.
func (s *EditSession) Lookup(id string) (PhotoState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return PhotoState{}, false
	}
	_, edited := s.edits[id]
	return PhotoState{Photo: s.records[i].Clone(), Edited: edited, Added: s.additions[id]}, true
}

// SetField changes one field of a record. An unknown id is ignored; an
// unknown field or a non-numeric year is rejected.
func (s *EditSession) SetField(id, field, value string) error {
	value = strings.TrimSpace(value)
	switch field {
	case FieldLocation, FieldAlt, FieldDescription, FieldTags:
	case FieldYear:
		if !isYear(value) {
			return fmt.Errorf("%w: year must be digits", domain.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown field %q", domain.ErrInvalidInput, field)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	p := s.records[i].Clone()
	switch field {
	case FieldLocation:
		p.Location = orDefault(value, domain.UnsetLocation)
	case FieldYear:
		p.Year = value
	case FieldAlt:
		p.Alt = orDefault(value, domain.DefaultAlt)
	case FieldDescription:
		p.Description = value
	case FieldTags:
		p.Tags = domain.ParseTags(value)
	}
	s.track(i, p)
	return nil
}

// Update replaces the editable fields of a record in one step, as the edit
// form does. Src and ID are kept. An unknown id is ignored.
func (s *EditSession) Update(id string, next domain.Photo) error {
	next.Year = strings.TrimSpace(next.Year)
	if !isYear(next.Year) {
		return fmt.Errorf("%w: year must be digits", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	p := s.records[i].Clone()
	p.Alt = orDefault(strings.TrimSpace(next.Alt), domain.DefaultAlt)
	p.Location = orDefault(strings.TrimSpace(next.Location), domain.UnsetLocation)
	p.Year = next.Year
	p.Description = strings.TrimSpace(next.Description)
	p.Tags = dedupe(next.Tags)
	s.track(i, p)
	return nil
}

// track stores p as the record at i and as its pending snapshot.
func (s *EditSession) track(i int, p domain.Photo) {
	s.records[i] = p
	s.edits[p.ID] = p.Clone()
}

// MarkDeleted schedules a record for removal. The record stays in place
// until the next commit. A pending upload is dropped immediately.
func (s *EditSession) MarkDeleted(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	if s.additions[id] {
		s.records = slices.Delete(s.records, i, i+1)
		delete(s.additions, id)
		delete(s.edits, id)
		return
	}
	s.deletions[id] = true
}

// Restore cancels a pending deletion.
func (s *EditSession) Restore(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deletions, id)
}

// ApplyBatch merges the non-empty fields of patch into every listed record.
// Tags are added to the existing set. It returns the number of records
// touched; an empty patch touches none.
func (s *EditSession) ApplyBatch(ids []string, patch domain.PhotoPatch) (int, error) {
	patch.Year = strings.TrimSpace(patch.Year)
	patch.Location = strings.TrimSpace(patch.Location)
	patch.Description = strings.TrimSpace(patch.Description)
	patch.Tags = dedupe(patch.Tags)
	if patch.IsEmpty() {
		return 0, nil
	}
	if !isYear(patch.Year) {
		return 0, fmt.Errorf("%w: year must be digits", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	touched := 0
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		i := s.indexOf(id)
		if i < 0 {
			continue
		}
		p := s.records[i].Clone()
		if patch.Location != "" {
			p.Location = patch.Location
		}
		if patch.Year != "" {
			p.Year = patch.Year
		}
		if patch.Description != "" {
			p.Description = patch.Description
		}
		if len(patch.Tags) > 0 {
			p.Tags = dedupe(append(p.Tags, patch.Tags...))
		}
		s.track(i, p)
		touched++
	}
	return touched, nil
}

// AddUploads puts new records at the front of the gallery, in the given
// order, and tracks them as pending additions.
func (s *EditSession) AddUploads(photos []domain.Photo) {
	if len(photos) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	added := make([]domain.Photo, 0, len(photos))
	for _, p := range photos {
		p = p.Clone()
		p.Tags = dedupe(p.Tags)
		p.Alt = orDefault(p.Alt, domain.DefaultAlt)
		p.Location = orDefault(p.Location, domain.UnsetLocation)
		s.additions[p.ID] = true
		added = append(added, p)
	}
	s.records = append(added, s.records...)
}

// ActiveRecords returns the records that would be written right now.
func (s *EditSession) ActiveRecords() []domain.Photo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active()
}

func (s *EditSession) active() []domain.Photo {
	out := make([]domain.Photo, 0, len(s.records))
	for _, p := range s.records {
		if !s.deletions[p.ID] {
			out = append(out, p.Clone())
		}
	}
	return out
}

// Deleted returns the records marked for deletion, in document order.
func (s *EditSession) Deleted() []domain.Photo {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Photo
	for _, p := range s.records {
		if s.deletions[p.ID] {
			out = append(out, p.Clone())
		}
	}
	return out
}

// HasPendingChanges reports whether anything would be committed.
func (s *EditSession) HasPendingChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty()
}

func (s *EditSession) dirty() bool {
	return len(s.edits) > 0 || len(s.deletions) > 0 || len(s.additions) > 0
}

// SelectByYear returns the ids of active records with the given year.
func (s *EditSession) SelectByYear(year string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, p := range s.active() {
		if p.Year == year {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// SelectByLocation returns the ids of active records whose location
// contains substr, ignoring case.
func (s *EditSession) SelectByLocation(substr string) []string {
	substr = strings.ToLower(strings.TrimSpace(substr))
	if substr == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, p := range s.active() {
		if p.HasLocation() && strings.Contains(strings.ToLower(p.Location), substr) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Filter returns the active records matching q in the requested order.
// Without a sort the document order is kept.
func (s *EditSession) Filter(q Query) []PhotoState {
	s.mu.Lock()
	defer s.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(q.Search))
	var out []PhotoState
	for _, p := range s.active() {
		if q.Year != "" && p.Year != q.Year {
			continue
		}
		if q.Location != "" && p.Location != q.Location {
			continue
		}
		switch q.Missing {
		case MissingLocation:
			if p.HasLocation() {
				continue
			}
		case MissingYear:
			if p.Year != "" {
				continue
			}
		}
		if search != "" && !matches(p, search) {
			continue
		}
		_, edited := s.edits[p.ID]
		out = append(out, PhotoState{Photo: p, Edited: edited, Added: s.additions[p.ID]})
	}

	switch q.Sort {
	case SortYearDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	case SortYearAsc:
		sort.SliceStable(out, func(i, j int) bool { return yearKey(out[i].Year) < yearKey(out[j].Year) })
	case SortFilename:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Filename() < out[j].Filename() })
	case SortLocation:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Location) < strings.ToLower(out[j].Location)
		})
	}
	return out
}

// Facets returns the distinct years and set locations of the active records.
func (s *EditSession) Facets() Facets {
	s.mu.Lock()
	defer s.mu.Unlock()

	years := make(map[string]bool)
	locations := make(map[string]bool)
	for _, p := range s.active() {
		if p.Year != "" {
			years[p.Year] = true
		}
		if p.HasLocation() {
			locations[p.Location] = true
		}
	}

	var f Facets
	for y := range years {
		f.Years = append(f.Years, y)
	}
	for l := range locations {
		f.Locations = append(f.Locations, l)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(f.Years)))
	sort.Strings(f.Locations)
	return f
}

// Stats counts records by status.
func (s *EditSession) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Total:   len(s.records),
		Edited:  len(s.edits),
		Deleted: len(s.deletions),
		Added:   len(s.additions),
	}
	for _, p := range s.active() {
		st.Active++
		if !p.HasLocation() {
			st.MissingLocation++
		}
		if p.Year == "" {
			st.MissingYear++
		}
	}
	return st
}

// Preview returns the full document as it would be committed.
func (s *EditSession) Preview() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.render()
}

func (s *EditSession) render() (string, error) {
	out, err := gallery.Splice(s.document, gallery.Encode(s.records, s.deletions))
	if err != nil {
		return "", fmt.Errorf("splice gallery: %w", err)
	}
	return out, nil
}

// Snapshot returns a deep copy of the session state.
func (s *EditSession) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := SessionSnapshot{
		BaseSHA:      s.baseSHA,
		Records:      make([]domain.Photo, len(s.records)),
		PendingEdits: make(map[string]domain.Photo, len(s.edits)),
	}
	for i, p := range s.records {
		snap.Records[i] = p.Clone()
	}
	for id, p := range s.edits {
		snap.PendingEdits[id] = p.Clone()
	}
	snap.PendingDeletions = sortedKeys(s.deletions)
	snap.PendingAdditions = sortedKeys(s.additions)
	return snap
}

// rebase swaps in a newer copy of the document and its version token while
// keeping records and pending changes.
func (s *EditSession) rebase(doc, sha string) {
	s.document = doc
	s.baseSHA = sha
}

func matches(p domain.Photo, search string) bool {
	fields := []string{p.Alt, p.Filename(), p.Year, p.Description}
	if p.HasLocation() {
		fields = append(fields, p.Location)
	}
	fields = append(fields, p.Tags...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

// yearKey sorts records without a year last in ascending order.
func yearKey(year string) string {
	if year == "" {
		return "~"
	}
	return year
}

func isYear(v string) bool {
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// dedupe trims tags and drops blanks and repeats, keeping first-seen order.
// A tag holding a comma is split, since the page stores tags comma-joined.
func dedupe(tags []string) []string {
	var out []string
	seen := make(map[string]bool, len(tags))
	for _, t := range domain.ParseTags(strings.Join(tags, ",")) {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
