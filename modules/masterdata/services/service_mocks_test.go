package services

import (
	"context"

	"github.com/vertice-lat/maestro/modules/masterdata/domain/schema"
)

type stubPublisher struct {
	published [][]interface{}
}

func (s *stubPublisher) Publish(args ...interface{}) { s.published = append(s.published, args) }
func (s *stubPublisher) Subscribe(handler interface{})   {}
func (s *stubPublisher) Unsubscribe(handler interface{}) {}
func (s *stubPublisher) Clear()                          {}
func (s *stubPublisher) SubscribersCount() int           { return 0 }

// mockRepo is an in-memory schema.Repository keyed by the definition's unique
// key tuple, enough to exercise service behavior without a database.
type mockRepo struct {
	records map[string][]schema.Record
	nextID  int64

	lockedTables  []string
	deletedTables []string
	upsertErr     error
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[string][]schema.Record)}
}

func (m *mockRepo) all(def *schema.Definition) []schema.Record {
	return m.records[def.Key]
}

func (m *mockRepo) GetPaginated(_ context.Context, def *schema.Definition, params *schema.FindParams) ([]schema.Record, int64, error) {
	all := m.records[def.Key]
	return all, int64(len(all)), nil
}

func (m *mockRepo) GetByID(_ context.Context, def *schema.Definition, id int64) (schema.Record, error) {
	for _, r := range m.records[def.Key] {
		if r["id"] == id {
			return r, nil
		}
	}
	return nil, schema.ErrNotFound
}

func (m *mockRepo) FindOne(_ context.Context, def *schema.Definition, filters map[string]any) (schema.Record, error) {
	for _, r := range m.records[def.Key] {
		matched := true
		for name, want := range filters {
			if r[name] != want {
				matched = false
				break
			}
		}
		if matched {
			return r, nil
		}
	}
	return nil, schema.ErrNotFound
}

func (m *mockRepo) Create(_ context.Context, def *schema.Definition, record schema.Record) (schema.Record, error) {
	if m.findByKey(def, record) >= 0 {
		return nil, schema.ErrDuplicate
	}
	m.nextID++
	stored := cloneRecord(record)
	stored["id"] = m.nextID
	m.records[def.Key] = append(m.records[def.Key], stored)
	return stored, nil
}

func (m *mockRepo) Update(_ context.Context, def *schema.Definition, id int64, record schema.Record) (schema.Record, error) {
	for i, r := range m.records[def.Key] {
		if r["id"] != id {
			continue
		}
		updated := cloneRecord(r)
		for name, value := range record {
			updated[name] = value
		}
		m.records[def.Key][i] = updated
		return updated, nil
	}
	return nil, schema.ErrNotFound
}

func (m *mockRepo) Delete(_ context.Context, def *schema.Definition, id int64) error {
	rows := m.records[def.Key]
	for i, r := range rows {
		if r["id"] == id {
			m.records[def.Key] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return schema.ErrNotFound
}

func (m *mockRepo) UpsertBatch(_ context.Context, def *schema.Definition, records []schema.Record) (int, error) {
	if m.upsertErr != nil {
		return 0, m.upsertErr
	}
	for _, record := range records {
		if at := m.findByKey(def, record); at >= 0 {
			stored := cloneRecord(record)
			stored["id"] = m.records[def.Key][at]["id"]
			m.records[def.Key][at] = stored
			continue
		}
		m.nextID++
		stored := cloneRecord(record)
		stored["id"] = m.nextID
		m.records[def.Key] = append(m.records[def.Key], stored)
	}
	return len(records), nil
}

func (m *mockRepo) DeleteAll(_ context.Context, def *schema.Definition) error {
	m.deletedTables = append(m.deletedTables, def.Table)
	m.records[def.Key] = nil
	return nil
}

func (m *mockRepo) LockForImport(_ context.Context, def *schema.Definition) error {
	m.lockedTables = append(m.lockedTables, def.Table)
	return nil
}

func (m *mockRepo) findByKey(def *schema.Definition, record schema.Record) int {
	for i, r := range m.records[def.Key] {
		matched := true
		for _, name := range def.UniqueKey {
			if r[name] != record[name] {
				matched = false
				break
			}
		}
		if matched {
			return i
		}
	}
	return -1
}

func cloneRecord(record schema.Record) schema.Record {
	out := make(schema.Record, len(record))
	for name, value := range record {
		out[name] = value
	}
	return out
}
