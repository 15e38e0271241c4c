package entity

// QuotaState is the persisted daily run counter. Date is a YYYY-MM-DD day in
// the reference timezone; a stored date behind "today" means the counter is
// stale and reads as zero.
type QuotaState struct {
	Date  string
	Count int
}
