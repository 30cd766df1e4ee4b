package jsonrepo

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"mockserver/internal/core/domain"
	"mockserver/internal/core/service/resource"
	"mockserver/internal/pkg/copier"
	"sync"
)

// JsonRepository holds the dataset in memory and writes it through a Persister
// after every change.
type JsonRepository struct {
	persister Persister
	mu        sync.RWMutex
	data      *domain.Dataset // in-memory cache
}

var _ resource.Repository = (*JsonRepository)(nil)
var _ resource.DatasetLoader = (Persister)(nil)

// NewJsonRepository loads the initial dataset through persister. A store that
// cannot be read is logged and the repository starts empty.
func NewJsonRepository(ctx context.Context, persister Persister) *JsonRepository {
	repo := &JsonRepository{
		persister: persister,
		data:      domain.NewDataset(),
	}

	ds, err := persister.Load(ctx)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("WARN: %s does not exist yet, starting with an empty dataset", persister.Location())
	case err != nil:
		log.Printf("ERROR: Failed to load data from %s, starting with an empty dataset: %v", persister.Location(), err)
	default:
		repo.data = ds
	}

	return repo
}

// NewJsonRepositoryFromData serves ds from memory only; changes are never written.
func NewJsonRepositoryFromData(ds *domain.Dataset) *JsonRepository {
	if ds == nil {
		ds = domain.NewDataset()
	}

	// the caller keeps its own copy
	data, err := copier.DeepCopy(ds)
	if err != nil {
		log.Printf("ERROR: failed to copy dataset: %v", err)
		data = domain.NewDataset()
	}
	return &JsonRepository{
		persister: NewNoOpPersister(),
		data:      data,
	}
}

func (r *JsonRepository) Get(ctx context.Context, name string) ([]domain.Item, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items, ok := r.data.Collection(name)
	if !ok {
		return nil, false
	}

	snapshot, err := copier.DeepCopy(items)
	if err != nil {
		log.Printf("ERROR: failed to copy collection '%s': %v", name, err)
		return nil, false
	}
	return snapshot, true
}

func (r *JsonRepository) Append(ctx context.Context, name string, item domain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	collection, ok := r.data.Collection(name)
	if !ok {
		return resource.ErrResourceNotFound
	}

	// cap the original so append never writes into its backing array
	r.data.SetCollection(name, append(collection[:len(collection):len(collection)], item.Clone()))

	if err := r.persister.Persist(ctx, r.data); err != nil {
		// revert changes if not possible to save
		r.data.SetCollection(name, collection)

		log.Printf("ERROR: Failed to persist data to %s: %v", r.persister.Location(), err)
		return &resource.PersistenceError{Op: "persist", Path: r.persister.Location(), Err: err}
	}
	return nil
}

func (r *JsonRepository) ReplaceAll(ctx context.Context, ds *domain.Dataset) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.replaceAll(ds)
}

// replaceAll expects r.mu to be held.
func (r *JsonRepository) replaceAll(ds *domain.Dataset) {
	if ds == nil {
		ds = domain.NewDataset()
	}
	r.data = ds
}

// Reload re-reads the backing store and swaps it in. The current dataset is
// kept when the store cannot be read.
//
// The lock is held across the read so a write that lands in between can never
// be replaced by an older copy of the store.
func (r *JsonRepository) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ds, err := r.persister.Load(ctx)
	if err != nil {
		return &resource.PersistenceError{Op: "reload", Path: r.persister.Location(), Err: err}
	}

	r.replaceAll(ds)
	log.Printf("INFO: Reloaded %d resources from %s", len(ds.CollectionNames()), r.persister.Location())
	return nil
}

func (r *JsonRepository) ListResources(ctx context.Context) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.data.CollectionNames()
}
