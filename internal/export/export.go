// Package export writes JSON snapshots of bank clients to object storage.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/dmitrijs2005/bankclients/internal/models"
	"github.com/google/uuid"
)

// ObjectStore stores opaque blobs under a key.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// Snapshot is the exported document.
type Snapshot struct {
	ExportedAt time.Time        `json:"exported_at"`
	Clients    []*models.Client `json:"clients"`
}

type Exporter struct {
	store  ObjectStore
	prefix string
	now    func() time.Time
}

func NewExporter(store ObjectStore, prefix string) *Exporter {
	return &Exporter{store: store, prefix: prefix, now: time.Now}
}

// NewKey returns "<prefix>/YYYY/MM/DD/<uuid>.json" for t.
func NewKey(prefix string, t time.Time) string {
	return path.Join(prefix, fmt.Sprintf("%04d/%02d/%02d", t.Year(), t.Month(), t.Day()), uuid.NewString()+".json")
}

// Export uploads a snapshot of clients and returns its key.
func (e *Exporter) Export(ctx context.Context, clients []*models.Client) (string, error) {
	if clients == nil {
		clients = []*models.Client{}
	}
	now := e.now().UTC()

	body, err := json.Marshal(Snapshot{ExportedAt: now, Clients: clients})
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	key := NewKey(e.prefix, now)
	if err := e.store.Put(ctx, key, body, "application/json"); err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}
