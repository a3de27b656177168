package services

import "github.com/vertice-lat/maestro/modules/masterdata/domain/schema"

// Events published on successful writes. Handlers subscribe by value type
// through the application's event bus; every module routing its writes through
// these services emits the same event shapes.

type RecordCreatedEvent struct {
	Catalog string
	Result  schema.Record
}

type RecordUpdatedEvent struct {
	Catalog string
	Result  schema.Record
}

type RecordDeletedEvent struct {
	Catalog string
	ID      int64
}

type ImportCompletedEvent struct {
	Catalog   string
	Mode      Mode
	Imported  int
	RowErrors int
}
