// Package testutil provides in-memory stand-ins for the MySQL repositories
// so domain packages and handlers can be tested without a database. Each
// table mirrors the semantics of its repository counterpart: the same
// not-found and conflict errors, the same ordering.
package testutil

import (
    "context"
    "sort"
    "sync"
    "time"

    "github.com/pistac/admin-backend/internal/model"
    "github.com/pistac/admin-backend/internal/queue"
    "github.com/pistac/admin-backend/internal/repository"
)

// Store holds every table behind one mutex.
type Store struct {
    mu     sync.Mutex
    nextID uint64

    users         map[uint64]model.User
    courses       map[uint64]model.Course
    access        map[[2]uint64]model.CourseAccess
    documents     map[uint64]model.Document
    magazines     map[uint64]model.Magazine
    workshops     map[uint64]model.Workshop
    registrations map[uint64]model.WorkshopRegistration
    slides        map[uint64]model.Slide
    quick         map[uint64]model.QuickAccessItem
}

func NewStore() *Store {
    return &Store{
        users:         map[uint64]model.User{},
        courses:       map[uint64]model.Course{},
        access:        map[[2]uint64]model.CourseAccess{},
        documents:     map[uint64]model.Document{},
        magazines:     map[uint64]model.Magazine{},
        workshops:     map[uint64]model.Workshop{},
        registrations: map[uint64]model.WorkshopRegistration{},
        slides:        map[uint64]model.Slide{},
        quick:         map[uint64]model.QuickAccessItem{},
    }
}

func (s *Store) id() uint64 {
    s.nextID++
    return s.nextID
}

// AddUser seeds a user and returns its id.
func (s *Store) AddUser(username string, role string, tier model.Tier) uint64 {
    s.mu.Lock()
    defer s.mu.Unlock()
    id := s.id()
    s.users[id] = model.User{ID: id, Username: username, Role: role, SubscriptionStatus: tier}
    return id
}

// AddCourse seeds a course and returns its id.
func (s *Store) AddCourse(title string, level model.Tier) uint64 {
    s.mu.Lock()
    defer s.mu.Unlock()
    id := s.id()
    s.courses[id] = model.Course{ID: id, Title: title, AccessLevel: level}
    return id
}

// AccessRows returns the number of grant rows for (userID, courseID).
func (s *Store) AccessRows(userID, courseID uint64) int {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.access[[2]uint64{userID, courseID}]; ok {
        return 1
    }
    return 0
}

// ---- users ----

type Users struct{ s *Store }

func (s *Store) Users() *Users { return &Users{s} }

func (t *Users) GetByID(_ context.Context, id uint64) (*model.User, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    u, ok := t.s.users[id]
    if !ok {
        return nil, repository.NotFound("user")
    }
    return &u, nil
}

func (t *Users) List(_ context.Context) ([]*model.User, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    out := []*model.User{}
    for _, u := range t.s.users {
        u := u
        out = append(out, &u)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    return out, nil
}

func (t *Users) UpdateProfile(_ context.Context, id uint64, role string, tier model.Tier) (*model.User, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    u, ok := t.s.users[id]
    if !ok {
        return nil, repository.NotFound("user")
    }
    if role != "" {
        u.Role = role
    }
    if tier != "" {
        u.SubscriptionStatus = tier
    }
    t.s.users[id] = u
    return &u, nil
}

// ---- courses ----

type Courses struct{ s *Store }

func (s *Store) Courses() *Courses { return &Courses{s} }

func (t *Courses) GetByID(_ context.Context, id uint64) (*model.Course, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    c, ok := t.s.courses[id]
    if !ok {
        return nil, repository.NotFound("course")
    }
    return &c, nil
}

func (t *Courses) List(_ context.Context) ([]*model.Course, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    out := []*model.Course{}
    for _, c := range t.s.courses {
        c := c
        out = append(out, &c)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    return out, nil
}

// ---- course access ----

type Access struct{ s *Store }

func (s *Store) Access() *Access { return &Access{s} }

func (t *Access) Get(_ context.Context, userID, courseID uint64) (*model.CourseAccess, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    a, ok := t.s.access[[2]uint64{userID, courseID}]
    if !ok {
        return nil, repository.NotFound("course access")
    }
    return &a, nil
}

func (t *Access) ListByUser(_ context.Context, userID uint64) ([]*model.CourseAccess, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    out := []*model.CourseAccess{}
    for k, a := range t.s.access {
        if k[0] == userID {
            a := a
            out = append(out, &a)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].CourseID < out[j].CourseID })
    return out, nil
}

func (t *Access) Upsert(_ context.Context, userID, courseID uint64, accessType string, expiry *time.Time) (*model.CourseAccess, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    key := [2]uint64{userID, courseID}
    a, ok := t.s.access[key]
    if !ok {
        a = model.CourseAccess{ID: t.s.id(), UserID: userID, CourseID: courseID, CreatedAt: time.Now().UTC()}
    }
    a.AccessType = accessType
    a.ExpiryDate = nil
    if expiry != nil {
        e := *expiry
        a.ExpiryDate = &e
    }
    a.UpdatedAt = time.Now().UTC()
    t.s.access[key] = a
    return &a, nil
}

func (t *Access) Delete(_ context.Context, userID, courseID uint64) (bool, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    key := [2]uint64{userID, courseID}
    _, ok := t.s.access[key]
    delete(t.s.access, key)
    return ok, nil
}

// ---- documents ----

type Documents struct{ s *Store }

func (s *Store) Documents() *Documents { return &Documents{s} }

func (t *Documents) Create(_ context.Context, d *model.Document) error {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    d.ID = t.s.id()
    d.Version = 1
    d.CreatedAt = time.Now().UTC()
    d.UpdatedAt = d.CreatedAt
    t.s.documents[d.ID] = *d
    return nil
}

func (t *Documents) GetByID(_ context.Context, id uint64) (*model.Document, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    d, ok := t.s.documents[id]
    if !ok {
        return nil, repository.NotFound("document")
    }
    return &d, nil
}

func (t *Documents) List(_ context.Context, f model.DocumentFilter) ([]*model.Document, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    out := []*model.Document{}
    for _, d := range t.s.documents {
        if f.PublishedOnly && !d.IsPublished {
            continue
        }
        if f.FeaturedOnly && !d.IsFeatured {
            continue
        }
        if f.Category != "" && d.Category != f.Category {
            continue
        }
        if f.MagazineID != 0 && d.MagazineID != f.MagazineID {
            continue
        }
        d := d
        out = append(out, &d)
    }
    sort.Slice(out, func(i, j int) bool {
        if out[i].Order != out[j].Order {
            return out[i].Order < out[j].Order
        }
        return out[i].ID < out[j].ID
    })
    return out, nil
}

func (t *Documents) ToggleFeatured(_ context.Context, id uint64) (*model.Document, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    d, ok := t.s.documents[id]
    if !ok {
        return nil, repository.NotFound("document")
    }
    d.IsFeatured = !d.IsFeatured
    d.Version++
    t.s.documents[id] = d
    return &d, nil
}

func (t *Documents) UpdateFlags(_ context.Context, id uint64, published, featured *bool, expectVersion *int64) (*model.Document, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    d, ok := t.s.documents[id]
    if !ok {
        return nil, repository.NotFound("document")
    }
    if expectVersion != nil && *expectVersion != d.Version {
        return nil, repository.ErrConflict
    }
    if published != nil {
        d.IsPublished = *published
    }
    if featured != nil {
        d.IsFeatured = *featured
    }
    d.Version++
    t.s.documents[id] = d
    return &d, nil
}

func (t *Documents) Delete(_ context.Context, id uint64) error {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    if _, ok := t.s.documents[id]; !ok {
        return repository.NotFound("document")
    }
    delete(t.s.documents, id)
    return nil
}

// ---- magazines ----

type Magazines struct{ s *Store }

func (s *Store) Magazines() *Magazines { return &Magazines{s} }

func (t *Magazines) Create(_ context.Context, m *model.Magazine) error {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    m.ID = t.s.id()
    m.CreatedAt = time.Now().UTC()
    t.s.magazines[m.ID] = *m
    return nil
}

func (t *Magazines) GetByID(_ context.Context, id uint64) (*model.Magazine, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    m, ok := t.s.magazines[id]
    if !ok {
        return nil, repository.NotFound("magazine")
    }
    return &m, nil
}

func (t *Magazines) List(_ context.Context) ([]*model.Magazine, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    out := []*model.Magazine{}
    for _, m := range t.s.magazines {
        m := m
        out = append(out, &m)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
    return out, nil
}

// ---- workshops and registrations ----

type Workshops struct{ s *Store }

func (s *Store) Workshops() *Workshops { return &Workshops{s} }

func (t *Workshops) Create(_ context.Context, w *model.Workshop) error {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    w.ID = t.s.id()
    w.CreatedAt = time.Now().UTC()
    t.s.workshops[w.ID] = *w
    return nil
}

func (t *Workshops) GetByID(_ context.Context, id uint64) (*model.Workshop, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    w, ok := t.s.workshops[id]
    if !ok {
        return nil, repository.NotFound("workshop")
    }
    return &w, nil
}

func (t *Workshops) List(_ context.Context) ([]*model.Workshop, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    out := []*model.Workshop{}
    for _, w := range t.s.workshops {
        w := w
        out = append(out, &w)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    return out, nil
}

func (t *Workshops) Delete(_ context.Context, id uint64, cascade bool) (int64, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    if _, ok := t.s.workshops[id]; !ok {
        return 0, repository.NotFound("workshop")
    }
    var refs []uint64
    for rid, r := range t.s.registrations {
        if r.WorkshopID == id {
            refs = append(refs, rid)
        }
    }
    if len(refs) > 0 && !cascade {
        return 0, repository.ErrConflict
    }
    for _, rid := range refs {
        delete(t.s.registrations, rid)
    }
    delete(t.s.workshops, id)
    return int64(len(refs)), nil
}

type Registrations struct{ s *Store }

func (s *Store) Registrations() *Registrations { return &Registrations{s} }

func (t *Registrations) Create(_ context.Context, r *model.WorkshopRegistration) error {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    r.ID = t.s.id()
    if r.RegistrationDate.IsZero() {
        r.RegistrationDate = time.Now().UTC()
    }
    t.s.registrations[r.ID] = *r
    return nil
}

func (t *Registrations) GetByID(_ context.Context, id uint64) (*model.WorkshopRegistration, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    r, ok := t.s.registrations[id]
    if !ok {
        return nil, repository.NotFound("registration")
    }
    return &r, nil
}

func (t *Registrations) UpdateStatus(_ context.Context, id uint64, status string) (*model.WorkshopRegistration, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    r, ok := t.s.registrations[id]
    if !ok {
        return nil, repository.NotFound("registration")
    }
    r.Status = status
    t.s.registrations[id] = r
    return &r, nil
}

func (t *Registrations) Delete(_ context.Context, id uint64) error {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    if _, ok := t.s.registrations[id]; !ok {
        return repository.NotFound("registration")
    }
    delete(t.s.registrations, id)
    return nil
}

// List returns rows in map order; callers are expected to sort.
func (t *Registrations) List(_ context.Context, workshopID uint64) ([]*model.WorkshopRegistration, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    out := []*model.WorkshopRegistration{}
    for _, r := range t.s.registrations {
        if workshopID == 0 || r.WorkshopID == workshopID {
            r := r
            out = append(out, &r)
        }
    }
    return out, nil
}

// ---- slides and quick access ----

type Slides struct{ s *Store }

func (s *Store) Slides() *Slides { return &Slides{s} }

func (t *Slides) Create(_ context.Context, v *model.Slide) error {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    v.ID = t.s.id()
    t.s.slides[v.ID] = *v
    return nil
}

func (t *Slides) GetByID(_ context.Context, id uint64) (*model.Slide, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    v, ok := t.s.slides[id]
    if !ok {
        return nil, repository.NotFound("slide")
    }
    return &v, nil
}

// List returns rows in map order so the ordering package is what sorts.
func (t *Slides) List(_ context.Context) ([]*model.Slide, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    out := []*model.Slide{}
    for _, v := range t.s.slides {
        v := v
        out = append(out, &v)
    }
    return out, nil
}

func (t *Slides) Update(_ context.Context, v *model.Slide) error {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    if _, ok := t.s.slides[v.ID]; !ok {
        return repository.NotFound("slide")
    }
    t.s.slides[v.ID] = *v
    return nil
}

func (t *Slides) SetOrder(_ context.Context, id uint64, order int) (*model.Slide, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    v, ok := t.s.slides[id]
    if !ok {
        return nil, repository.NotFound("slide")
    }
    v.Order = order
    t.s.slides[id] = v
    return &v, nil
}

func (t *Slides) SetActive(_ context.Context, id uint64, active bool) (*model.Slide, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    v, ok := t.s.slides[id]
    if !ok {
        return nil, repository.NotFound("slide")
    }
    v.IsActive = active
    t.s.slides[id] = v
    return &v, nil
}

func (t *Slides) Delete(_ context.Context, id uint64) error {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    if _, ok := t.s.slides[id]; !ok {
        return repository.NotFound("slide")
    }
    delete(t.s.slides, id)
    return nil
}

type QuickAccess struct{ s *Store }

func (s *Store) QuickAccess() *QuickAccess { return &QuickAccess{s} }

func (t *QuickAccess) Create(_ context.Context, v *model.QuickAccessItem) error {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    v.ID = t.s.id()
    t.s.quick[v.ID] = *v
    return nil
}

func (t *QuickAccess) GetByID(_ context.Context, id uint64) (*model.QuickAccessItem, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    v, ok := t.s.quick[id]
    if !ok {
        return nil, repository.NotFound("quick access item")
    }
    return &v, nil
}

func (t *QuickAccess) List(_ context.Context) ([]*model.QuickAccessItem, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    out := []*model.QuickAccessItem{}
    for _, v := range t.s.quick {
        v := v
        out = append(out, &v)
    }
    return out, nil
}

func (t *QuickAccess) Update(_ context.Context, v *model.QuickAccessItem) error {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    if _, ok := t.s.quick[v.ID]; !ok {
        return repository.NotFound("quick access item")
    }
    t.s.quick[v.ID] = *v
    return nil
}

func (t *QuickAccess) SetOrder(_ context.Context, id uint64, order int) (*model.QuickAccessItem, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    v, ok := t.s.quick[id]
    if !ok {
        return nil, repository.NotFound("quick access item")
    }
    v.Order = order
    t.s.quick[id] = v
    return &v, nil
}

func (t *QuickAccess) SetActive(_ context.Context, id uint64, active bool) (*model.QuickAccessItem, error) {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    v, ok := t.s.quick[id]
    if !ok {
        return nil, repository.NotFound("quick access item")
    }
    v.IsActive = active
    t.s.quick[id] = v
    return &v, nil
}

func (t *QuickAccess) Delete(_ context.Context, id uint64) error {
    t.s.mu.Lock()
    defer t.s.mu.Unlock()
    if _, ok := t.s.quick[id]; !ok {
        return repository.NotFound("quick access item")
    }
    delete(t.s.quick, id)
    return nil
}

// RecordingPublisher keeps every published event for assertions.
type RecordingPublisher struct {
    mu     sync.Mutex
    events []queue.AuditEvent
}

func (p *RecordingPublisher) Publish(_ context.Context, ev queue.AuditEvent) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.events = append(p.events, ev)
    return nil
}

// Actions returns the action names in publish order.
func (p *RecordingPublisher) Actions() []string {
    p.mu.Lock()
    defer p.mu.Unlock()
    out := make([]string, len(p.events))
    for i, ev := range p.events {
        out[i] = ev.Action
    }
    return out
}
