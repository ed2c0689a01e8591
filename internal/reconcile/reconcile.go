// Package reconcile implements the replace-all-associations algorithm shared
// by role/permission and user/role assignment.
package reconcile

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Reconciler replaces the full association set of one owner row. R is the
// referenced entity (permission, role), A the join row linking owner to R.
// The function fields keep this package free of entity-specific queries;
// each repository wires its own instance.
type Reconciler[R any, A any] struct {
	DB *gorm.DB

	// Lookup batch-loads referenced entities for the given ids.
	Lookup func(db *gorm.DB, ids []string) ([]R, error)
	// KeyOf returns the id of a referenced entity.
	KeyOf func(ref R) string
	// DeleteOwned removes every join row owned by ownerID inside tx.
	DeleteOwned func(tx *gorm.DB, ownerID string) error
	// Link builds the new join row for one referenced entity.
	Link func(ownerID string, ref R) A
	// NotFound builds the error naming the ids Lookup did not return.
	NotFound func(missing []string) error
}

// Replace makes the owner's association set exactly equal the target ids.
//
// An empty target list is an explicit no-op, not a clear: nothing is read or
// written. Otherwise the ids are de-duplicated preserving first-seen order,
// the referenced entities are loaded in one batch (any missing id fails the
// whole call before a single write), and the delete-all plus bulk-insert pair
// runs in one transaction so concurrent readers see either the old full set
// or the new full set. The returned join rows carry the loaded referenced
// entity and follow the caller-supplied id order.
func (r *Reconciler[R, A]) Replace(ctx context.Context, ownerID string, targetIDs []string) ([]A, error) {
	if len(targetIDs) == 0 {
		return nil, nil
	}

	ids := dedupe(targetIDs)

	refs, err := r.Lookup(r.DB.WithContext(ctx), ids)
	if err != nil {
		return nil, fmt.Errorf("lookup referenced entities: %w", err)
	}

	byID := make(map[string]R, len(refs))
	for _, ref := range refs {
		byID[r.KeyOf(ref)] = ref
	}

	var missing []string
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, r.NotFound(missing)
	}

	links := make([]A, 0, len(ids))
	for _, id := range ids {
		links = append(links, r.Link(ownerID, byID[id]))
	}

	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.DeleteOwned(tx, ownerID); err != nil {
			return fmt.Errorf("delete owned associations: %w", err)
		}
		// the loaded referenced entities ride along for DTO composition
		// only; never upsert them
		if err := tx.Omit(clause.Associations).Create(&links).Error; err != nil {
			return fmt.Errorf("insert associations: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return links, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// FormatMissing renders a missing-id list for not-found messages.
func FormatMissing(missing []string) string {
	return strings.Join(missing, ", ")
}
