package pipeline

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/juruladenbam/bam-sub000/pkg/cache"
	errs "github.com/juruladenbam/bam-sub000/pkg/errors"
	"github.com/juruladenbam/bam-sub000/pkg/family"
	"github.com/juruladenbam/bam-sub000/pkg/kinship"
	"github.com/juruladenbam/bam-sub000/pkg/observability"
	"github.com/juruladenbam/bam-sub000/pkg/store"
	"github.com/juruladenbam/bam-sub000/pkg/treelayout"
)

// modelCacheSize bounds the indexed models kept per runner, one per
// snapshot hash.
const modelCacheSize = 4

// Runner executes pipeline stages with caching.
//
// The Runner keeps no per-request state besides its caches. Multiple
// goroutines can safely use the same Runner.
type Runner struct {
	Store    store.Store
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	TTL      time.Duration
	Geometry treelayout.Options

	models *lru.Cache[string, *family.Model]
}

// NewRunner creates a runner reading from st.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(st store.Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	models, _ := lru.New[string, *family.Model](modelCacheSize)
	return &Runner{
		Store:    st,
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		TTL:      DefaultTTL,
		Geometry: treelayout.DefaultOptions(),
		models:   models,
	}
}

// Close releases the store and the cache.
func (r *Runner) Close() error {
	var first error
	if r.Store != nil {
		first = r.Store.Close()
	}
	if r.Cache != nil {
		if err := r.Cache.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// =============================================================================
// Snapshot
// =============================================================================

// Snapshot is a dataset with its content hash.
type Snapshot struct {
	Dataset *family.Dataset
	Hash    string
}

// Snapshot reads the store and hashes the canonical encoding of the result.
func (r *Runner) Snapshot(ctx context.Context) (*Snapshot, error) {
	if r.Store == nil {
		return nil, errs.New(errs.ErrCodeStoreUnavailable, "no record store configured")
	}
	start := time.Now()
	ds, err := r.Store.Snapshot(ctx)
	if err != nil {
		observability.Pipeline().OnSnapshot(ctx, 0, time.Since(start), err)
		if errs.GetCode(err) == "" {
			err = errs.Wrap(errs.ErrCodeStoreUnavailable, err, "read records")
		}
		return nil, err
	}
	data, err := family.MarshalDataset(ds)
	if err != nil {
		return nil, fmt.Errorf("hash snapshot: %w", err)
	}
	snap := &Snapshot{Dataset: ds, Hash: cache.Hash(data)}
	observability.Pipeline().OnSnapshot(ctx, len(ds.Persons), time.Since(start), nil)
	r.Logger.Debug("read snapshot", "persons", len(ds.Persons), "marriages", len(ds.Marriages), "hash", snap.Hash[:12])
	return snap, nil
}

// model returns the indexed model of snap, reusing it across calls on the
// same snapshot.
func (r *Runner) model(snap *Snapshot) *family.Model {
	key := fmt.Sprintf("%s:%t", snap.Hash, r.Geometry.IncludeDivorced)
	if m, ok := r.models.Get(key); ok {
		return m
	}
	m := family.FromDataset(snap.Dataset, family.Options{IncludeDivorced: r.Geometry.IncludeDivorced})
	r.models.Add(key, m)
	return m
}

// =============================================================================
// Branches
// =============================================================================

// BranchSummary describes one branch of the dataset.
type BranchSummary struct {
	ID       family.ID `json:"id"`
	Name     string    `json:"name"`
	Order    int       `json:"order"`
	External bool      `json:"external"`
	Persons  int       `json:"persons"`
}

// Branches lists the branches of the dataset in order. Branch ids used by
// persons but missing from the branch records are listed without a name.
func (r *Runner) Branches(ctx context.Context) ([]BranchSummary, error) {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[family.ID]int)
	for _, p := range snap.Dataset.Persons {
		if p.BranchID != family.NoID {
			counts[p.BranchID]++
		}
	}

	var out []BranchSummary
	for _, b := range snap.Dataset.Branches {
		out = append(out, BranchSummary{ID: b.ID, Name: b.Name, Order: b.Order, External: b.IsExternal(), Persons: counts[b.ID]})
		delete(counts, b.ID)
	}
	for id, n := range counts {
		out = append(out, BranchSummary{ID: id, Order: int(id), Persons: n})
	}
	slices.SortFunc(out, func(a, b BranchSummary) int {
		if a.Order != b.Order {
			return cmp.Compare(a.Order, b.Order)
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// =============================================================================
// Layout
// =============================================================================

// LayoutResult is a computed tree layout.
type LayoutResult struct {
	Layout *treelayout.Result
	// Hash is the SHA-256 of the encoded layout, used for artifact keys.
	Hash     string
	CacheHit bool
	Duration time.Duration
}

// Layout computes the tree of opts.BranchID over the current snapshot.
func (r *Runner) Layout(ctx context.Context, opts LayoutOptions) (*LayoutResult, error) {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return r.LayoutSnapshot(ctx, snap, opts)
}

// LayoutSnapshot computes a layout over an already read snapshot.
func (r *Runner) LayoutSnapshot(ctx context.Context, snap *Snapshot, opts LayoutOptions) (*LayoutResult, error) {
	start := time.Now()
	geo := r.Geometry
	if opts.Geometry != nil {
		geo = *opts.Geometry
	}
	engine := treelayout.New(geo)
	key := r.Keyer.LayoutKey(snap.Hash, cache.LayoutKeyOpts{
		BranchID: int64(opts.BranchID),
		Geometry: engine.Options(),
	})

	if !opts.Refresh {
		if data, ok := r.cacheGet(ctx, "layout", key); ok {
			if res, err := treelayout.Decode(data); err == nil {
				return &LayoutResult{Layout: res, Hash: cache.Hash(data), CacheHit: true, Duration: time.Since(start)}, nil
			}
		}
	}

	sel, err := SelectBranch(snap.Dataset, opts.BranchID)
	if err != nil {
		return nil, err
	}
	observability.Pipeline().OnLayoutStart(ctx, int64(opts.BranchID), len(sel.Persons))
	res := engine.Layout(sel.Persons, sel.Links, sel.Marriages, opts.BranchID)
	res.MarkGhosts(sel.Ghosts)

	data, err := res.Encode()
	if err != nil {
		observability.Pipeline().OnLayoutComplete(ctx, int64(opts.BranchID), 0, time.Since(start), err)
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode layout")
	}
	r.cacheSet(ctx, "layout", key, data)

	elapsed := time.Since(start)
	observability.Pipeline().OnLayoutComplete(ctx, int64(opts.BranchID), len(res.Nodes), elapsed, nil)
	r.Logger.Info("computed layout",
		"branch", opts.BranchID,
		"persons", res.PersonCount(),
		"ghosts", len(sel.Ghosts),
		"nodes", len(res.Nodes),
		"edges", len(res.Edges),
		"duration", elapsed)
	return &LayoutResult{Layout: res, Hash: cache.Hash(data), Duration: elapsed}, nil
}

// =============================================================================
// Relationship
// =============================================================================

// PersonRef identifies a person in a relationship response.
type PersonRef struct {
	ID       family.ID     `json:"id"`
	FullName string        `json:"full_name"`
	Gender   family.Gender `json:"gender"`
}

// Relationship is the kinship of person A to person B.
type Relationship struct {
	PersonA PersonRef `json:"person_a"`
	PersonB PersonRef `json:"person_b"`
	kinship.Result
	CacheHit bool `json:"-"`
}

// Relationship resolves how a relates to b over the current snapshot. Both
// persons must exist.
func (r *Runner) Relationship(ctx context.Context, a, b family.ID) (*Relationship, error) {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return r.RelationshipSnapshot(ctx, snap, a, b)
}

// RelationshipSnapshot resolves a relationship over an already read snapshot.
func (r *Runner) RelationshipSnapshot(ctx context.Context, snap *Snapshot, a, b family.ID) (*Relationship, error) {
	start := time.Now()
	m := r.model(snap)
	pa, ok := m.Person(a)
	if !ok {
		return nil, errs.New(errs.ErrCodePersonNotFound, "person %d not found", a)
	}
	pb, ok := m.Person(b)
	if !ok {
		return nil, errs.New(errs.ErrCodePersonNotFound, "person %d not found", b)
	}

	key := r.Keyer.RelationshipKey(snap.Hash, int64(a), int64(b))
	if data, ok := r.cacheGet(ctx, "relationship", key); ok {
		var rel Relationship
		if err := json.Unmarshal(data, &rel); err == nil {
			rel.CacheHit = true
			return &rel, nil
		}
	}

	rel := &Relationship{
		PersonA: PersonRef{ID: pa.ID, FullName: pa.FullName, Gender: pa.Gender},
		PersonB: PersonRef{ID: pb.ID, FullName: pb.FullName, Gender: pb.Gender},
		Result:  kinship.NewResolver(m).Calculate(a, b),
	}
	if data, err := json.Marshal(rel); err == nil {
		r.cacheSet(ctx, "relationship", key, data)
	}

	elapsed := time.Since(start)
	observability.Pipeline().OnRelationship(ctx, int64(a), int64(b), string(rel.Kind), elapsed)
	r.Logger.Debug("resolved relationship", "a", a, "b", b, "kind", rel.Kind, "duration", elapsed)
	return rel, nil
}

// =============================================================================
// Cache Helpers
// =============================================================================

func (r *Runner) cacheGet(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) cacheSet(ctx context.Context, keyType, key string, data []byte) {
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}
