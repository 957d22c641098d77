package model

// CardBatch groups the cards produced by one issuance call. The ULID batch
// ID sorts by issuance time, which makes tracing a batch back from a single
// card cheap.
type CardBatch struct {
	BatchID string
	Cards   []*Card
}
