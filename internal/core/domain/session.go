package domain

// ReconcilePlan is the outcome of diffing cached application metadata
// against the document source's listing, using lightweight fields only.
type ReconcilePlan struct {
	// ToLoad are applications absent from the cache or whose
	// last-modified stamp differs.
	ToLoad []AppSummary

	// ToRemove are applications cached locally but no longer present
	// at the source.
	ToRemove []AppMetadata

	// Unchanged are applications whose cached copy is still current.
	Unchanged []AppSummary
}

// SheetStatus is the shared publication state of one sheet, merged from
// concurrent loads through the serialised metadata queue.
type SheetStatus struct {
	Approved  bool
	Published bool
}
