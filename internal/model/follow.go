package model

// Follow is an ordered (follower, followed) pair. UserID is the follower.
// User and Following carry the usernames joined on reads.
type Follow struct {
	ID          int64
	UserID      int64
	User        string
	FollowingID int64
	Following   string
}
