package spots

import (
	"context"

	"spotmerge.hitchmap.org/internal/models"
)

// Repository is the external spot collection consumed by the merge core.
// ReplaceAndRemove exists because merge execution must commit the survivor
// rewrite and the absorbed removal as one unit.
type Repository interface {
	GetByID(ctx context.Context, id string) (models.Spot, bool, error)
	List(ctx context.Context) ([]models.Spot, error)
	Replace(ctx context.Context, id string, spot models.Spot) error
	Remove(ctx context.Context, id string) error
	ReplaceAndRemove(ctx context.Context, survivorID string, survivor models.Spot, absorbedID string) error
}

// ReferenceMigrator rewrites external references (favorites lists and the
// like) from an absorbed spot id to the survivor.
type ReferenceMigrator interface {
	MigrateReferences(ctx context.Context, absorbedID, survivorID string) error
}
