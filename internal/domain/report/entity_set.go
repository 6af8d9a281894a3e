package report

import (
	"sort"

	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/google/uuid"
)

// ResolveEntitySet returns the lots an entity covers: the lot itself, the
// lots with an active link to the pen, or every active or sold lot.
// The result is ordered by lot id and never contains duplicates.
func ResolveEntitySet(entityType EntityType, entityID uuid.UUID, lots []*livestock.Lot, links []livestock.PenLotLink) []*livestock.Lot {
	seen := make(map[uuid.UUID]struct{})
	var out []*livestock.Lot
	add := func(l *livestock.Lot) {
		if _, ok := seen[l.ID]; ok {
			return
		}
		seen[l.ID] = struct{}{}
		out = append(out, l)
	}

	switch entityType {
	case EntityTypeLot:
		for _, l := range lots {
			if l.ID == entityID {
				add(l)
			}
		}
	case EntityTypePen:
		linked := make(map[uuid.UUID]struct{})
		for _, link := range links {
			if link.PenID == entityID && link.IsActive() {
				linked[link.LotID] = struct{}{}
			}
		}
		for _, l := range lots {
			if _, ok := linked[l.ID]; ok {
				add(l)
			}
		}
	case EntityTypeGlobal:
		for _, l := range lots {
			if l.Status == livestock.LotStatusActive || l.Status == livestock.LotStatusSold {
				add(l)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
