package services

import "invoice-extraction-platform/models"

// MergeByInvoice combines items that share an invoice number into one
// entry. Items without an invoice number are dropped: they cannot be
// attributed. For duplicates the first-seen record's non-product fields
// win and its product list is extended with every later record's
// products. Duplicate products across chunks are not deduplicated here;
// that is an accepted limitation, not a defect.
func MergeByInvoice(items []models.InvoiceGroup) []models.InvoiceGroup {
	merged := make([]models.InvoiceGroup, 0, len(items))
	index := make(map[string]int)

	for _, item := range items {
		if item.InvoiceNumber == "" {
			continue
		}

		if i, seen := index[item.InvoiceNumber]; seen {
			merged[i].Products = append(merged[i].Products, item.Products...)
			continue
		}

		index[item.InvoiceNumber] = len(merged)
		merged = append(merged, item)
	}

	return merged
}
