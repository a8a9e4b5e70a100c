package transform

import "strings"

// MaxTextLength bounds post and comment bodies.
const MaxTextLength = 10000

// PostPayload is the writable part of a post. Author and pub_date are not
// accepted from clients; author is always the caller.
//
// Image is a base64 data URI ("data:image/png;base64,...") or null to
// remove the current image. Group is a group ID or null.
type PostPayload struct {
	Text  *string          `json:"text" validate:"omitnil,min=1,max=10000"`
	Image Nullable[string] `json:"image"`
	Group Nullable[int64]  `json:"group"`
}

// Validate trims the text and checks the payload. A partial payload (PATCH)
// may omit every field; a full one must carry text.
func (p *PostPayload) Validate(partial bool) error {
	p.Text = trimmed(p.Text)

	fields := fieldErrors(validate.Struct(p))
	if !partial && p.Text == nil {
		addField(fields, "text", MsgRequired)
	}
	if p.Group.Valid && p.Group.Value <= 0 {
		addField(fields, "group", InvalidPK(p.Group.Value))
	}
	return result(fields)
}

// CommentPayload is the writable part of a comment. Author and post come
// from the request, never from the body.
type CommentPayload struct {
	Text *string `json:"text" validate:"omitnil,min=1,max=10000"`
}

func (p *CommentPayload) Validate(partial bool) error {
	p.Text = trimmed(p.Text)

	fields := fieldErrors(validate.Struct(p))
	if !partial && p.Text == nil {
		addField(fields, "text", MsgRequired)
	}
	return result(fields)
}

// FollowPayload names the user to follow. A "user" key in the body is not
// decoded: the follower is always the caller.
type FollowPayload struct {
	Following string `json:"following" validate:"required"`
}

func (p *FollowPayload) Validate() error {
	p.Following = strings.TrimSpace(p.Following)
	return Validate(p)
}

// RegisterPayload creates a password account.
type RegisterPayload struct {
	Username string `json:"username" validate:"required,max=150,username"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (p *RegisterPayload) Validate() error {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(p.Email)
	return Validate(p)
}

// TokenPayload exchanges credentials for an access token.
type TokenPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (p *TokenPayload) Validate() error {
	p.Username = strings.TrimSpace(p.Username)
	return Validate(p)
}

// VerifyPayload carries a token to check.
type VerifyPayload struct {
	Token string `json:"token" validate:"required"`
}

func (p *VerifyPayload) Validate() error {
	p.Token = strings.TrimSpace(p.Token)
	return Validate(p)
}

// GroupPayload creates a group. Groups have no HTTP write surface; the
// admin CLI is the only producer.
type GroupPayload struct {
	Title       string `json:"title" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"required,max=50,slug"`
	Description string `json:"description"`
}

func (p *GroupPayload) Validate() error {
	p.Title = strings.TrimSpace(p.Title)
	p.Slug = strings.TrimSpace(p.Slug)
	p.Description = strings.TrimSpace(p.Description)
	return Validate(p)
}

// InvalidPK is the message for a reference to a row that does not exist.
func InvalidPK(id any) string {
	return `invalid pk "` + toString(id) + `" - object does not exist`
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
