package models

// OwnerSummary is the embedded owner shape returned by joined reads.
type OwnerSummary struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"fullName"`
	Avatar   MediaFile `json:"avatar"`
}
