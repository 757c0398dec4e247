package repository

import "shop-backend/internal/models"

// variantDiff is the insert/update/delete plan for one product's variants.
type variantDiff struct {
	ToDelete []int
	ToUpdate []models.Variant
	ToInsert []models.Variant
}

// diffVariants compares the persisted variant ids of a product with the
// desired set. Desired variants with a VariantID are updates, the rest are
// inserts; any persisted id absent from the desired set is deleted.
func diffVariants(existingIDs []int, desired []models.Variant) variantDiff {
	var diff variantDiff

	keep := make(map[int]bool, len(desired))
	for _, v := range desired {
		if v.VariantID > 0 {
			keep[v.VariantID] = true
			diff.ToUpdate = append(diff.ToUpdate, v)
		} else {
			diff.ToInsert = append(diff.ToInsert, v)
		}
	}

	for _, id := range existingIDs {
		if !keep[id] {
			diff.ToDelete = append(diff.ToDelete, id)
		}
	}

	return diff
}
