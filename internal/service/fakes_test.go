package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"content-pipeline/internal/database"
	"content-pipeline/internal/dispatch"
	"content-pipeline/internal/llm"
	"content-pipeline/internal/messaging"
	"content-pipeline/internal/models"

	"github.com/google/uuid"
)

// memoryStore хранит задачи и контент в памяти и реализует оба репозитория.
type memoryStore struct {
	mu       sync.Mutex
	tasks    map[uuid.UUID]*models.Task
	contents map[uuid.UUID]*models.Content
	seq      time.Time

	failContentCreate error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		tasks:    make(map[uuid.UUID]*models.Task),
		contents: make(map[uuid.UUID]*models.Content),
		seq:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick выдает строго возрастающее время, чтобы сортировка была детерминированной.
func (m *memoryStore) tick() time.Time {
	m.seq = m.seq.Add(time.Second)
	return m.seq
}

type memoryTasks struct{ *memoryStore }
type memoryContents struct{ *memoryStore }

func (r memoryTasks) Create(_ context.Context, _ database.DBTX, t models.NewTask) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.tick()
	task := &models.Task{
		ID: uuid.New(), UserID: t.UserID, Topic: t.Topic, SourceURL: t.SourceURL, SourceFile: t.SourceFile,
		SourceText: t.SourceText, Comparison: t.Comparison, Requirements: t.Requirements, Provider: t.Provider,
		Status: models.TaskStatusProcessing, CreatedAt: now, UpdatedAt: now,
	}
	r.tasks[task.ID] = task
	cp := *task
	return &cp, nil
}

func (r memoryTasks) GetByID(_ context.Context, _ database.DBTX, id uuid.UUID) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, models.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (r memoryTasks) ListByUser(_ context.Context, _ database.DBTX, userID int64) ([]*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Task
	for _, t := range r.tasks {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memoryTasks) UpdateStatus(_ context.Context, _ database.DBTX, id uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, models.ErrTaskNotFound
	}
	t.Status = status
	t.UpdatedAt = r.tick()
	cp := *t
	return &cp, nil
}

func (r memoryContents) Create(_ context.Context, _ database.DBTX, c models.NewContent) (*models.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failContentCreate != nil {
		return nil, r.failContentCreate
	}
	now := r.tick()
	content := &models.Content{ID: uuid.New(), TaskID: c.TaskID, Type: c.Type, Title: c.Title, Body: c.Body, CreatedAt: now, UpdatedAt: now}
	r.contents[content.ID] = content
	cp := *content
	return &cp, nil
}

func (r memoryContents) GetByID(_ context.Context, _ database.DBTX, id uuid.UUID) (*models.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contents[id]
	if !ok {
		return nil, models.ErrContentNotFound
	}
	cp := *c
	return &cp, nil
}

func (r memoryContents) ListByTask(ctx context.Context, q database.DBTX, taskID uuid.UUID) ([]*models.Content, error) {
	return r.ListByTaskAndTypes(ctx, q, taskID, nil)
}

func (r memoryContents) ListByTaskAndTypes(_ context.Context, _ database.DBTX, taskID uuid.UUID, types []models.ContentType) ([]*models.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Content
	for _, c := range r.contents {
		if c.TaskID != taskID {
			continue
		}
		if types != nil && !containsType(types, c.Type) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memoryContents) Update(_ context.Context, _ database.DBTX, id uuid.UUID, patch models.ContentPatch) (*models.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contents[id]
	if !ok {
		return nil, models.ErrContentNotFound
	}
	if patch.Title != nil {
		title := *patch.Title
		c.Title = &title
	}
	if patch.Body != nil {
		c.Body = *patch.Body
	}
	c.UpdatedAt = r.tick()
	cp := *c
	return &cp, nil
}

func (r memoryContents) Approve(_ context.Context, _ database.DBTX, id uuid.UUID, body string) (*models.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contents[id]
	if !ok {
		return nil, models.ErrContentNotFound
	}
	if c.IsApproved {
		return nil, models.ErrContentAlreadyApproved
	}
	c.IsApproved = true
	c.Body = body
	c.UpdatedAt = r.tick()
	cp := *c
	return &cp, nil
}

func containsType(types []models.ContentType, t models.ContentType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func (m *memoryStore) contentOf(taskID uuid.UUID) []*models.Content {
	items, _ := memoryContents{m}.ListByTask(context.Background(), nil, taskID)
	return items
}

func (m *memoryStore) statusOf(taskID uuid.UUID) models.TaskStatus {
	t, _ := memoryTasks{m}.GetByID(context.Background(), nil, taskID)
	return t.Status
}

// directTx выполняет функцию без транзакции. Откат не моделируется.
type directTx struct{}

func (directTx) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx database.DBTX) error) error {
	return fn(ctx, nil)
}

// queueDispatcher копит задания, пока тест не вызовет RunAll.
type queueDispatcher struct {
	mu      sync.Mutex
	pending map[string]dispatch.JobFunc
	order   []string
	err     error
}

func newQueueDispatcher() *queueDispatcher {
	return &queueDispatcher{pending: make(map[string]dispatch.JobFunc)}
}

func (d *queueDispatcher) Submit(key string, job dispatch.JobFunc) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	if _, busy := d.pending[key]; busy {
		return false, nil
	}
	d.pending[key] = job
	d.order = append(d.order, key)
	return true, nil
}

func (d *queueDispatcher) RunAll(ctx context.Context) []error {
	d.mu.Lock()
	jobs := make([]dispatch.JobFunc, 0, len(d.order))
	for _, key := range d.order {
		jobs = append(jobs, d.pending[key])
	}
	d.pending = make(map[string]dispatch.JobFunc)
	d.order = nil
	d.mu.Unlock()

	var errs []error
	for _, job := range jobs {
		errs = append(errs, job(ctx))
	}
	return errs
}

func (d *queueDispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.order)
}

// fakeResolver возвращает заранее заданного провайдера.
type fakeResolver struct {
	mu        sync.Mutex
	provider  llm.Provider
	err       error
	requested []string
}

func (r *fakeResolver) Resolve(_ context.Context, explicit string) (llm.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requested = append(r.requested, explicit)
	if r.err != nil {
		return nil, r.err
	}
	return r.provider, nil
}

func (r *fakeResolver) ResolveName(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return llm.DefaultProvider
}

// recordingPublisher запоминает опубликованные события.
type recordingPublisher struct {
	mu     sync.Mutex
	events []messaging.TaskEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event messaging.TaskEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) ofType(t messaging.EventType) []messaging.TaskEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []messaging.TaskEvent
	for _, ev := range p.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

var errProviderDown = errors.New("vendor unavailable")
