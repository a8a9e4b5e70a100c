package model

// Group is a themed community posts can belong to. Groups are managed by
// administrators; the public API only reads them.
type Group struct {
	ID          int64
	Title       string
	Slug        string
	Description string
}
