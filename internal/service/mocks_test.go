package service

import (
	"context"
	"sync"

	"entrepreneurhub/internal/event"
	"entrepreneurhub/internal/model"
)

type memUsers struct {
	mu      sync.Mutex
	byID    map[string]*model.User
	failGet error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*model.User{}}
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return nil, m.failGet
	}
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == user.Email {
			return model.ErrUserAlreadyExists
		}
	}
	cp := *user
	m.byID[user.ID] = &cp
	return nil
}

type fakeIssuer struct{ err error }

func (f fakeIssuer) Issue(subject string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-for-" + subject, nil
}

type memAudit struct {
	mu      sync.Mutex
	entries []model.AuditEntry
	err     error
}

func (m *memAudit) Log(_ context.Context, entry model.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memAudit) Query(_ context.Context, q model.AuditQuery) ([]model.AuditEntry, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.AuditEntry, 0)
	for _, e := range m.entries {
		if q.Action == "" || e.Action == q.Action {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

func (m *memAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action+":"+e.Status)
	}
	return out
}

type recordingBus struct {
	events []event.Event
}

func (b *recordingBus) Publish(e event.Event) { b.events = append(b.events, e) }

func (b *recordingBus) Subscribe(event.Handler) func() { return func() {} }

func (b *recordingBus) types() []event.Type {
	out := make([]event.Type, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Type)
	}
	return out
}

type memCourses struct {
	byID map[string]*model.Course
	err  error
}

func newMemCourses(courses ...model.Course) *memCourses {
	m := &memCourses{byID: map[string]*model.Course{}}
	for i := range courses {
		c := courses[i]
		m.byID[c.ID] = &c
	}
	return m
}

func (m *memCourses) List(context.Context) ([]model.Course, error) {
	out := make([]model.Course, 0, len(m.byID))
	for _, c := range m.byID {
		out = append(out, *c)
	}
	return out, m.err
}

func (m *memCourses) GetByID(_ context.Context, id string) (*model.Course, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, model.ErrCourseNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCourses) Create(_ context.Context, c *model.Course) error {
	if m.err != nil {
		return m.err
	}
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *memCourses) Update(_ context.Context, c *model.Course) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byID[c.ID]; !ok {
		return model.ErrCourseNotFound
	}
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *memCourses) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byID[id]; !ok {
		return model.ErrCourseNotFound
	}
	delete(m.byID, id)
	return nil
}
