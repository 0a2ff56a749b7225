// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package institution

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/osg-htc/institutions/internal/platform/apperr"
)

// # In-Memory Repository

// MemoryStore is a process-local [Repository] used for development and tests.
//
// It enforces the same uniqueness rules as the PostgreSQL schema. A
// transaction works on a private copy of the data and publishes it on success,
// so a failed write leaves no trace.
type MemoryStore struct {
	mu           sync.RWMutex
	txMu         sync.Mutex
	institutions map[string]Institution
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{institutions: make(map[string]Institution)}
}

// ListValid implements [Repository].
func (store *MemoryStore) ListValid(_ context.Context) ([]Institution, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	valid := make([]Institution, 0, len(store.institutions))
	for _, inst := range store.institutions {
		if inst.Valid {
			valid = append(valid, inst.clone())
		}
	}
	slices.SortFunc(valid, func(a, b Institution) int { return strings.Compare(a.Name, b.Name) })
	return valid, nil
}

// GetByPublicID implements [Repository].
func (store *MemoryStore) GetByPublicID(_ context.Context, publicID string) (Institution, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	for _, inst := range store.institutions {
		if inst.PublicID == publicID {
			return inst.clone(), nil
		}
	}
	return Institution{}, ErrNotFound
}

// WithinTx implements [Repository]. Transactions are serialized.
func (store *MemoryStore) WithinTx(context context.Context, fn func(tx Tx) error) error {
	store.txMu.Lock()
	defer store.txMu.Unlock()

	store.mu.RLock()
	working := make(map[string]Institution, len(store.institutions))
	for id, inst := range store.institutions {
		working[id] = inst.clone()
	}
	store.mu.RUnlock()

	if err := context.Err(); err != nil {
		return err
	}
	if err := fn(&memoryTx{institutions: working}); err != nil {
		return err
	}

	store.mu.Lock()
	store.institutions = working
	store.mu.Unlock()
	return nil
}

// memoryTx is the write view over a transaction's working copy.
type memoryTx struct {
	institutions map[string]Institution
}

func (tx *memoryTx) FindInvalidByName(_ context.Context, name string) (Institution, bool, error) {
	for _, inst := range tx.institutions {
		if !inst.Valid && inst.Name == name {
			return inst.clone(), true, nil
		}
	}
	return Institution{}, false, nil
}

func (tx *memoryTx) FindByPublicIDForUpdate(_ context.Context, publicID string) (Institution, error) {
	for _, inst := range tx.institutions {
		if inst.PublicID == publicID {
			return inst.clone(), nil
		}
	}
	return Institution{}, ErrNotFound
}

func (tx *memoryTx) PublicIDs(_ context.Context) (map[string]struct{}, error) {
	ids := make(map[string]struct{}, len(tx.institutions))
	for _, inst := range tx.institutions {
		ids[inst.PublicID] = struct{}{}
	}
	return ids, nil
}

func (tx *memoryTx) Insert(_ context.Context, inst Institution) error {
	if _, exists := tx.institutions[inst.ID]; exists {
		return apperr.Conflict("Resource already exists")
	}
	if err := tx.checkUnique(inst); err != nil {
		return err
	}

	// Identifier rows are owned by ApplyIdentifiers, as in the relational schema.
	row := inst.clone()
	row.Identifiers = nil
	tx.institutions[inst.ID] = row
	return nil
}

func (tx *memoryTx) Update(_ context.Context, inst Institution) error {
	current, exists := tx.institutions[inst.ID]
	if !exists {
		return ErrNotFound
	}
	if err := tx.checkUnique(inst); err != nil {
		return err
	}

	row := inst.clone()
	row.Identifiers = current.Identifiers
	tx.institutions[inst.ID] = row
	return nil
}

func (tx *memoryTx) ApplyIdentifiers(_ context.Context, institutionID string, plan Plan) error {
	inst, exists := tx.institutions[institutionID]
	if !exists {
		return ErrNotFound
	}

	for _, op := range plan.Ops {
		if op.Op == OpDelete {
			continue
		}
		for id, other := range tx.institutions {
			if id == institutionID {
				continue
			}
			if other.IdentifierValue(op.Identifier.Kind) == op.Identifier.Value {
				return ErrIdentifierTaken
			}
		}
	}

	for _, op := range plan.Ops {
		if _, has := inst.Identifier(op.Identifier.Kind); op.Op == OpInsert && has {
			return apperr.Internal(fmt.Errorf("institution %s already has a %s identifier", institutionID, op.Identifier.Kind))
		}
	}

	// Apply ignores backfill here; the institution row already carries it.
	tx.institutions[institutionID] = Plan{Ops: plan.Ops}.Apply(inst)
	return nil
}

// checkUnique mirrors the name and public id unique constraints.
func (tx *memoryTx) checkUnique(inst Institution) error {
	for id, other := range tx.institutions {
		if id == inst.ID {
			continue
		}
		if other.PublicID == inst.PublicID {
			return ErrPublicIDTaken
		}
		if other.Name == inst.Name {
			return ErrNameTaken
		}
	}
	return nil
}
