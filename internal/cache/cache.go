package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"taskBoard/internal/logger"
	"taskBoard/internal/models/contact"
	"taskBoard/internal/models/task"
	"taskBoard/internal/remote"
	"taskBoard/internal/session"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotFound      = errors.New("сущность не найдена")
	ErrInvalidStatus = errors.New("недопустимый статус задачи")
	ErrEmailTaken    = errors.New("email уже занят другим контактом")
)

// Remote - то, что кэшу нужно от удалённого хранилища. *remote.Store подходит.
type Remote interface {
	FetchAll(ctx context.Context, c remote.Collection) []json.RawMessage
	Put(ctx context.Context, c remote.Collection, id int64, entity any) error
	Remove(ctx context.Context, c remote.Collection, id int64) error
}

// Cache - локальная копия задач, контактов и пользователей одной сессии.
// Изменения применяются сразу, запись в Remote уходит в фоне и не откатывается.
type Cache struct {
	remote  Remote
	session session.Session

	mtx      *sync.RWMutex
	tasks    []task.Task
	contacts []contact.Contact
	users    []contact.User
	states   map[entityKey]syncEntry
	seq      uint64
	lastID   int64

	writes *sync.WaitGroup
	now    func() time.Time
}

func New(r Remote, sess session.Session) *Cache {
	return &Cache{
		remote:   r,
		session:  sess,
		mtx:      &sync.RWMutex{},
		tasks:    []task.Task{},
		contacts: []contact.Contact{},
		users:    []contact.User{},
		states:   make(map[entityKey]syncEntry),
		writes:   &sync.WaitGroup{},
		now:      time.Now,
	}
}

func (c *Cache) Session() session.Session {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.session
}

// LoadAll заменяет содержимое кэша целиком: демо-данные для гостя,
// иначе все три коллекции из Remote. Сущности, записанные локально во время
// загрузки или ещё не подтверждённые, остаются в локальной версии.
// Затем догоняет контакты по пользователям.
func (c *Cache) LoadAll(ctx context.Context) error {
	start := time.Now()

	c.mtx.RLock()
	since := c.seq
	c.mtx.RUnlock()

	var (
		tasks    []task.Task
		contacts []contact.Contact
		users    []contact.User
	)

	if c.session.IsGuest() {
		var err error
		tasks, contacts, err = Demo()
		if err != nil {
			logger.Error("Cache: Ошибка загрузки демо-данных", err)
			return err
		}
		users = []contact.User{}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			tasks = remote.Decode[task.Task](c.remote.FetchAll(gctx, remote.Tasks))
			return nil
		})
		g.Go(func() error {
			contacts = remote.Decode[contact.Contact](c.remote.FetchAll(gctx, remote.Contacts))
			return nil
		})
		g.Go(func() error {
			users = remote.Decode[contact.User](c.remote.FetchAll(gctx, remote.Users))
			return nil
		})
		if err := g.Wait(); err != nil {
			return fmt.Errorf("загрузка коллекций: %w", err)
		}
	}

	for i := range tasks {
		if !tasks[i].Status.IsValid() {
			logger.Warn("Cache: Неизвестный статус задачи, перенесена в todo",
				zap.Int64("id", tasks[i].ID),
				zap.String("status", string(tasks[i].Status)))
			tasks[i].Status = task.StatusTodo
		}
	}
	for i := range contacts {
		if contacts[i].Initials == "" {
			contacts[i].Initials = contact.Initials(contacts[i].Name)
		}
	}

	tasks = dedupe(tasks, func(t task.Task) int64 { return t.ID })
	contacts = uniqueEmails(dedupe(contacts, func(ct contact.Contact) int64 { return ct.ID }))
	users = dedupe(users, func(u contact.User) int64 { return u.ID })

	c.mtx.Lock()
	keep := c.unsettled(since)
	c.tasks = keepLocal(tasks, c.tasks, remote.Tasks, keep, func(t task.Task) int64 { return t.ID })
	c.contacts = keepLocal(contacts, c.contacts, remote.Contacts, keep, func(ct contact.Contact) int64 { return ct.ID })
	c.users = keepLocal(users, c.users, remote.Users, keep, func(u contact.User) int64 { return u.ID })
	c.states = keep
	c.mtx.Unlock()
	if len(keep) > 0 {
		logger.Info("Cache: Локальные изменения сохранены при перезагрузке", zap.Int("entities", len(keep)))
	}

	migrated := c.MigrateUsersToContacts(ctx)

	logger.Info("Cache: Данные загружены",
		zap.String("session", c.session.Kind.String()),
		zap.Int("tasks", len(tasks)),
		zap.Int("contacts", len(contacts)),
		zap.Int("users", len(users)),
		zap.Int("migrated", migrated),
		zap.Duration("ms", time.Since(start)))
	return nil
}

// dedupe оставляет последнюю запись для каждого id на месте первой
func dedupe[T any](items []T, id func(T) int64) []T {
	res := make([]T, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, it := range items {
		if i, ok := index[id(it)]; ok {
			res[i] = it
			continue
		}
		index[id(it)] = len(res)
		res = append(res, it)
	}
	return res
}

// uniqueEmails оставляет первый контакт для каждого email
func uniqueEmails(contacts []contact.Contact) []contact.Contact {
	seen := make(map[string]bool, len(contacts))
	res := contacts[:0]
	for _, ct := range contacts {
		if ct.Email != "" && seen[ct.Email] {
			logger.Warn("Cache: Пропущен контакт с повторным email",
				zap.Int64("id", ct.ID),
				zap.String("email", ct.Email))
			continue
		}
		seen[ct.Email] = true
		res = append(res, ct)
	}
	return res
}

// keepLocal подменяет загруженные сущности из keep локальными версиями.
// Удалённые локально не возвращаются, добавленные локально дописываются в конец.
func keepLocal[T any](fetched, local []T, col remote.Collection, keep map[entityKey]syncEntry, id func(T) int64) []T {
	if len(keep) == 0 {
		return fetched
	}
	localByID := make(map[int64]T, len(local))
	for _, it := range local {
		localByID[id(it)] = it
	}

	res := make([]T, 0, len(fetched))
	seen := make(map[int64]bool, len(fetched))
	for _, it := range fetched {
		key := id(it)
		seen[key] = true
		if _, ok := keep[entityKey{col, key}]; !ok {
			res = append(res, it)
			continue
		}
		if l, ok := localByID[key]; ok {
			res = append(res, l)
		}
	}
	for _, it := range local {
		key := id(it)
		if _, ok := keep[entityKey{col, key}]; ok && !seen[key] {
			res = append(res, it)
		}
	}
	return res
}

// UpsertTask заменяет задачу с тем же id или добавляет новую
func (c *Cache) UpsertTask(ctx context.Context, t task.Task) error {
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	t = t.Clone()

	c.mtx.Lock()
	c.tasks = upsert(c.tasks, t, func(x task.Task) bool { return x.ID == t.ID })
	seq := c.track(remote.Tasks, t.ID)
	c.mtx.Unlock()

	c.put(ctx, remote.Tasks, t.ID, t.Clone(), seq)
	return nil
}

// UpsertContact заменяет контакт с тем же id или добавляет новый.
// Email другого контакта занять нельзя.
func (c *Cache) UpsertContact(ctx context.Context, ct contact.Contact) error {
	if ct.Initials == "" {
		ct.Initials = contact.Initials(ct.Name)
	}

	c.mtx.Lock()
	if slices.ContainsFunc(c.contacts, func(x contact.Contact) bool { return ct.Email != "" && x.Email == ct.Email && x.ID != ct.ID }) {
		c.mtx.Unlock()
		return fmt.Errorf("%w: %s", ErrEmailTaken, ct.Email)
	}
	c.contacts = upsert(c.contacts, ct, func(x contact.Contact) bool { return x.ID == ct.ID })
	seq := c.track(remote.Contacts, ct.ID)
	c.mtx.Unlock()

	c.put(ctx, remote.Contacts, ct.ID, ct, seq)
	return nil
}

// AddUser сохраняет зарегистрированного пользователя в коллекции users
func (c *Cache) AddUser(ctx context.Context, u contact.User) {
	c.mtx.Lock()
	c.users = upsert(c.users, u, func(x contact.User) bool { return x.ID == u.ID })
	seq := c.track(remote.Users, u.ID)
	c.mtx.Unlock()

	c.put(ctx, remote.Users, u.ID, u, seq)
}

// DeleteTask удаляет задачу. Отсутствующий id - тихий no-op.
func (c *Cache) DeleteTask(ctx context.Context, id int64) {
	c.mtx.Lock()
	idx := slices.IndexFunc(c.tasks, func(t task.Task) bool { return t.ID == id })
	if idx < 0 {
		c.mtx.Unlock()
		logger.Debug("Cache: Удаление отсутствующей задачи", zap.Int64("id", id))
		return
	}
	c.tasks = slices.Delete(c.tasks, idx, idx+1)
	seq := c.track(remote.Tasks, id)
	c.mtx.Unlock()

	c.remove(ctx, remote.Tasks, id, seq)
}

// DeleteContact удаляет контакт и снимает его со всех задач, где он
// назначен. Совпадение ищется по имени, задачи не удаляются.
func (c *Cache) DeleteContact(ctx context.Context, id int64) {
	type pending struct {
		t   task.Task
		seq uint64
	}

	c.mtx.Lock()
	idx := slices.IndexFunc(c.contacts, func(ct contact.Contact) bool { return ct.ID == id })
	if idx < 0 {
		c.mtx.Unlock()
		logger.Debug("Cache: Удаление отсутствующего контакта", zap.Int64("id", id))
		return
	}
	removed := c.contacts[idx]
	c.contacts = slices.Delete(c.contacts, idx, idx+1)

	var affected []pending
	for i := range c.tasks {
		updated := c.tasks[i].Clone()
		if updated.Unassign(removed.Name) == 0 {
			continue
		}
		c.tasks[i] = updated
		affected = append(affected, pending{
			t:   updated.Clone(),
			seq: c.track(remote.Tasks, updated.ID),
		})
	}
	contactSeq := c.track(remote.Contacts, id)
	c.mtx.Unlock()

	for _, p := range affected {
		c.put(ctx, remote.Tasks, p.t.ID, p.t, p.seq)
	}
	c.remove(ctx, remote.Contacts, id, contactSeq)

	logger.Info("Cache: Контакт удалён",
		zap.Int64("id", id),
		zap.String("name", removed.Name),
		zap.Int("unassigned_tasks", len(affected)))
}

// MigrateUsersToContacts создаёт контакт каждому пользователю, чьего email
// нет среди контактов. Повторный запуск ничего не меняет.
func (c *Cache) MigrateUsersToContacts(ctx context.Context) int {
	c.mtx.RLock()
	var missing []contact.User
	for _, u := range c.users {
		if u.Email == "" {
			continue
		}
		if !slices.ContainsFunc(c.contacts, func(ct contact.Contact) bool { return ct.Email == u.Email }) {
			missing = append(missing, u)
		}
	}
	c.mtx.RUnlock()

	migrated := 0
	for _, u := range missing {
		if err := c.UpsertContact(ctx, contact.FromUser(c.NewID(), u, contact.MigratedColor)); err != nil {
			logger.Warn("Cache: Контакт пользователя не создан", zap.String("email", u.Email), zap.Error(err))
			continue
		}
		migrated++
	}
	if migrated > 0 {
		logger.Info("Cache: Пользователи перенесены в контакты", zap.Int("count", migrated))
	}
	return migrated
}

// NewID выдаёт id из текущего времени в миллисекундах, строго возрастающий
// и не совпадающий с уже известными
func (c *Cache) NewID() int64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	id := max(c.now().UnixMilli(), c.lastID+1)
	for c.idTaken(id) {
		id++
	}
	c.lastID = id
	return id
}

func (c *Cache) idTaken(id int64) bool {
	return slices.ContainsFunc(c.tasks, func(t task.Task) bool { return t.ID == id }) ||
		slices.ContainsFunc(c.contacts, func(ct contact.Contact) bool { return ct.ID == id }) ||
		slices.ContainsFunc(c.users, func(u contact.User) bool { return u.ID == id })
}

func (c *Cache) Tasks() []task.Task {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	res := make([]task.Task, len(c.tasks))
	for i, t := range c.tasks {
		res[i] = t.Clone()
	}
	return res
}

func (c *Cache) Contacts() []contact.Contact {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return slices.Clone(c.contacts)
}

func (c *Cache) Users() []contact.User {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return slices.Clone(c.users)
}

func (c *Cache) Task(id int64) (task.Task, error) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	idx := slices.IndexFunc(c.tasks, func(t task.Task) bool { return t.ID == id })
	if idx < 0 {
		return task.Task{}, ErrNotFound
	}
	return c.tasks[idx].Clone(), nil
}

func (c *Cache) Contact(id int64) (contact.Contact, error) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	idx := slices.IndexFunc(c.contacts, func(ct contact.Contact) bool { return ct.ID == id })
	if idx < 0 {
		return contact.Contact{}, ErrNotFound
	}
	return c.contacts[idx], nil
}

func (c *Cache) ContactByEmail(email string) (contact.Contact, error) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	idx := slices.IndexFunc(c.contacts, func(ct contact.Contact) bool { return ct.Email == email })
	if idx < 0 {
		return contact.Contact{}, ErrNotFound
	}
	return c.contacts[idx], nil
}

func (c *Cache) UserByEmail(email string) (contact.User, error) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	idx := slices.IndexFunc(c.users, func(u contact.User) bool { return u.Email == email })
	if idx < 0 {
		return contact.User{}, ErrNotFound
	}
	return c.users[idx], nil
}

// Rebind заменяет сессию кэша. Вызывается, пока кэш не отдан другим горутинам.
func (c *Cache) Rebind(sess session.Session) {
	c.mtx.Lock()
	c.session = sess
	c.mtx.Unlock()
}

// Wait ждёт завершения всех фоновых записей
func (c *Cache) Wait() {
	c.writes.Wait()
}

func upsert[T any](items []T, item T, match func(T) bool) []T {
	if idx := slices.IndexFunc(items, match); idx >= 0 {
		items[idx] = item
		return items
	}
	return append(items, item)
}

// track помечает сущность как ожидающую записи. Вызывается под c.mtx.
// Для гостя ничего не отслеживается и возвращается 0.
func (c *Cache) track(col remote.Collection, id int64) uint64 {
	if !c.session.Persistent() {
		return 0
	}
	return c.markPending(col, id)
}

func (c *Cache) put(ctx context.Context, col remote.Collection, id int64, entity any, seq uint64) {
	if !c.session.Persistent() {
		return
	}
	c.dispatch(ctx, col, id, seq, func(ctx context.Context) error {
		return c.remote.Put(ctx, col, id, entity)
	})
}

func (c *Cache) remove(ctx context.Context, col remote.Collection, id int64, seq uint64) {
	if !c.session.Persistent() {
		return
	}
	c.dispatch(ctx, col, id, seq, func(ctx context.Context) error {
		return c.remote.Remove(ctx, col, id)
	})
}

// dispatch отправляет запись в фоне. Отмена запроса вызывающего не
// прерывает запись.
func (c *Cache) dispatch(ctx context.Context, col remote.Collection, id int64, seq uint64, write func(context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	c.writes.Add(1)
	go func() {
		defer c.writes.Done()
		err := write(ctx)
		if err != nil {
			logger.Warn("Cache: Запись не синхронизирована",
				zap.String("collection", string(col)),
				zap.Int64("id", id),
				zap.Error(err))
		}
		c.complete(col, id, seq, err)
	}()
}
