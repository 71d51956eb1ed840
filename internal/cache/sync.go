package cache

import (
	"taskBoard/internal/remote"
)

// SyncState - расхождение локальной копии сущности с удалённым хранилищем
type SyncState int

const (
	Committed SyncState = iota
	PendingSync
	SyncFailed
)

func (s SyncState) String() string {
	switch s {
	case PendingSync:
		return "pending"
	case SyncFailed:
		return "failed"
	default:
		return "committed"
	}
}

type entityKey struct {
	collection remote.Collection
	id         int64
}

// syncEntry хранит номер последней записи, чтобы устаревшее завершение
// не затёрло состояние более новой
type syncEntry struct {
	state SyncState
	seq   uint64
}

// markPending вызывается под c.mtx
func (c *Cache) markPending(col remote.Collection, id int64) uint64 {
	c.seq++
	c.states[entityKey{col, id}] = syncEntry{state: PendingSync, seq: c.seq}
	return c.seq
}

// complete фиксирует итог записи. Состояние удалённой сущности остаётся
// до следующей загрузки.
func (c *Cache) complete(col remote.Collection, id int64, seq uint64, err error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	key := entityKey{col, id}
	entry, ok := c.states[key]
	if !ok || entry.seq != seq {
		return
	}
	if err != nil {
		c.states[key] = syncEntry{state: SyncFailed, seq: seq}
		return
	}
	c.states[key] = syncEntry{state: Committed, seq: seq}
}

// unsettled возвращает сущности, чья локальная версия новее снимка,
// начатого при seq == since: записанные позже или ещё не подтверждённые.
// Вызывается под c.mtx.
func (c *Cache) unsettled(since uint64) map[entityKey]syncEntry {
	keep := make(map[entityKey]syncEntry)
	for k, e := range c.states {
		if e.seq > since || e.state == PendingSync {
			keep[k] = e
		}
	}
	return keep
}

// SyncState возвращает состояние сущности. Неизвестные id считаются Committed.
func (c *Cache) SyncState(col remote.Collection, id int64) SyncState {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.states[entityKey{col, id}].state
}

// Pending - число сущностей с незавершённой записью
func (c *Cache) Pending() int {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	n := 0
	for _, e := range c.states {
		if e.state == PendingSync {
			n++
		}
	}
	return n
}

// Failed возвращает ключи сущностей, чья последняя запись не удалась
func (c *Cache) Failed(col remote.Collection) []int64 {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	var ids []int64
	for k, e := range c.states {
		if k.collection == col && e.state == SyncFailed {
			ids = append(ids, k.id)
		}
	}
	return ids
}
