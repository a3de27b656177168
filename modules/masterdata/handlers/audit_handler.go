package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/vertice-lat/maestro/modules/masterdata/services"
	"github.com/vertice-lat/maestro/pkg/application"
)

// CatalogEventsHandler writes an audit line for every catalog mutation. It
// subscribes by event type, so writes from any module publishing through the
// shared bus are covered, geography levels included.
type CatalogEventsHandler struct {
	logger *logrus.Logger
}

func NewCatalogEventsHandler(logger *logrus.Logger) *CatalogEventsHandler {
	return &CatalogEventsHandler{logger: logger}
}

func RegisterCatalogEventHandlers(app application.Application) {
	handler := NewCatalogEventsHandler(app.Logger())
	app.EventPublisher().Subscribe(handler.onRecordCreated)
	app.EventPublisher().Subscribe(handler.onRecordUpdated)
	app.EventPublisher().Subscribe(handler.onRecordDeleted)
	app.EventPublisher().Subscribe(handler.onImportCompleted)
}

func (h *CatalogEventsHandler) onRecordCreated(event services.RecordCreatedEvent) {
	h.logger.WithFields(logrus.Fields{
		"catalog":   event.Catalog,
		"record_id": event.Result["id"],
	}).Info("catalog record created")
}

func (h *CatalogEventsHandler) onRecordUpdated(event services.RecordUpdatedEvent) {
	h.logger.WithFields(logrus.Fields{
		"catalog":   event.Catalog,
		"record_id": event.Result["id"],
	}).Info("catalog record updated")
}

func (h *CatalogEventsHandler) onRecordDeleted(event services.RecordDeletedEvent) {
	h.logger.WithFields(logrus.Fields{
		"catalog":   event.Catalog,
		"record_id": event.ID,
	}).Info("catalog record deleted")
}

func (h *CatalogEventsHandler) onImportCompleted(event services.ImportCompletedEvent) {
	h.logger.WithFields(logrus.Fields{
		"catalog":    event.Catalog,
		"mode":       event.Mode,
		"imported":   event.Imported,
		"row_errors": event.RowErrors,
	}).Info("catalog import completed")
}
