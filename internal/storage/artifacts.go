package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fortuna/services/playbyplay-service/pkg/models"
)

// ChangeListener is told about every artifact write
type ChangeListener interface {
	ArtifactWritten(ctx context.Context, key, version string) error
}

// Artifacts reads and writes the typed artifacts on top of a Store
type Artifacts struct {
	store    Store
	listener ChangeListener
	now      func() time.Time
}

// NewArtifacts wraps a store. listener may be nil.
func NewArtifacts(store Store, listener ChangeListener) *Artifacts {
	return &Artifacts{
		store:    store,
		listener: listener,
		now:      time.Now,
	}
}

// Store returns the underlying object store
func (a *Artifacts) Store() Store {
	return a.store
}

// Version is a content hash used to tell subscribers which write they are seeing
func Version(body []byte) string {
	return strconv.FormatUint(xxhash.Sum64(body), 16)
}

func (a *Artifacts) put(ctx context.Context, key string, body []byte, opts PutOptions) error {
	if err := a.store.Put(ctx, key, body, opts); err != nil {
		return err
	}
	log.Printf("[storage] wrote %s (%d bytes)", key, len(body))

	if a.listener != nil {
		if err := a.listener.ArtifactWritten(ctx, key, Version(body)); err != nil {
			log.Printf("[storage] change notification for %s failed: %v", key, err)
		}
	}
	return nil
}

func (a *Artifacts) putGzipJSON(ctx context.Context, key string, v interface{}, cache string) error {
	body, err := EncodeGzipJSON(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return a.put(ctx, key, body, PutOptions{
		ContentType:     "application/json",
		ContentEncoding: "gzip",
		CacheControl:    cache,
	})
}

func (a *Artifacts) putJSON(ctx context.Context, key string, v interface{}, cache string) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return a.put(ctx, key, body, PutOptions{ContentType: "application/json", CacheControl: cache})
}

// load decodes the object at key into v. found is false when the key is missing.
func (a *Artifacts) load(ctx context.Context, key string, v interface{}) (bool, error) {
	obj, err := a.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := DecodeJSON(obj.Body, v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// LoadSchedule returns the stored schedule for date; a missing schedule is empty
func (a *Artifacts) LoadSchedule(ctx context.Context, date string) ([]models.ScheduleEntry, error) {
	var entries []models.ScheduleEntry
	if _, err := a.load(ctx, ScheduleKey(date), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SaveSchedule writes the schedule for date sorted by start time
func (a *Artifacts) SaveSchedule(ctx context.Context, date string, entries []models.ScheduleEntry) error {
	sorted := make([]models.ScheduleEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartTime < sorted[j].StartTime })
	return a.putGzipJSON(ctx, ScheduleKey(date), sorted, CacheVolatile)
}

// SaveArchivedSchedule writes a schedule for a date that will not change again
func (a *Artifacts) SaveArchivedSchedule(ctx context.Context, date string, entries []models.ScheduleEntry) error {
	sorted := make([]models.ScheduleEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartTime < sorted[j].StartTime })
	return a.putGzipJSON(ctx, ScheduleKey(date), sorted, CacheImmutable)
}

// LoadGameIDMap returns the id map for date. found is false when none is stored.
func (a *Artifacts) LoadGameIDMap(ctx context.Context, date string) (models.GameIDMap, bool, error) {
	ids := models.GameIDMap{}
	found, err := a.load(ctx, GameIDMapKey(date), &ids)
	if err != nil {
		return nil, false, err
	}
	return ids, found, nil
}

// SaveGameIDMap writes the id map for date. Empty maps are not written.
func (a *Artifacts) SaveGameIDMap(ctx context.Context, date string, ids models.GameIDMap) error {
	if len(ids) == 0 {
		return nil
	}
	return a.putJSON(ctx, GameIDMapKey(date), ids, CacheVolatile)
}

// LoadGamepack returns the stored gamepack, or nil when there is none
func (a *Artifacts) LoadGamepack(ctx context.Context, publicID string) (*models.Gamepack, error) {
	var pack models.Gamepack
	found, err := a.load(ctx, GamepackKey(publicID), &pack)
	if err != nil || !found {
		return nil, err
	}
	return &pack, nil
}

// SaveGamepack writes a gamepack. Final gamepacks get a long-lived cache directive.
func (a *Artifacts) SaveGamepack(ctx context.Context, pack *models.Gamepack, final bool) error {
	cache := CacheVolatile
	if final {
		cache = CacheImmutable
	}
	return a.putGzipJSON(ctx, GamepackKey(pack.PublicID), pack, cache)
}

// SaveInitState writes the landing state
func (a *Artifacts) SaveInitState(ctx context.Context, state models.InitState) error {
	if state.UpdatedAt == "" {
		state.UpdatedAt = a.now().UTC().Format(time.RFC3339)
	}
	return a.putJSON(ctx, InitKey, state, CacheInit)
}

// LoadManifest returns the final-game manifest, empty when missing
func (a *Artifacts) LoadManifest(ctx context.Context) (models.Manifest, error) {
	var m models.Manifest
	if _, err := a.load(ctx, ManifestKey, &m); err != nil {
		return models.Manifest{}, err
	}
	return m, nil
}

// AddToManifest records a final game. added is false when it was already listed.
func (a *Artifacts) AddToManifest(ctx context.Context, publicID string) (bool, error) {
	m, err := a.LoadManifest(ctx)
	if err != nil {
		log.Printf("[storage] manifest unreadable, starting fresh: %v", err)
		m = models.Manifest{}
	}
	for _, id := range m.Games {
		if id == publicID {
			return false, nil
		}
	}

	m.Games = append(m.Games, publicID)
	sort.Strings(m.Games)
	m.UpdatedAt = a.now().UTC().Format(time.RFC3339)
	if err := a.putJSON(ctx, ManifestKey, m, ""); err != nil {
		return false, err
	}
	return true, nil
}
