package bandhub

import "time"

const (
	roleAdmin  = "admin"
	roleMember = "member"

	mediaAudio = "audio"
	mediaVideo = "video"
	mediaImage = "image"
	mediaPDF   = "pdf"
	mediaOther = "other"

	rsvpGoing    = "going"
	rsvpMaybe    = "maybe"
	rsvpNotGoing = "not_going"

	defaultEventType = "other"
)

// Band is a collaboration group. Members is keyed by uid, so a uid holds at
// most one Membership per band.
type Band struct {
	ID         string                `json:"id"`
	Name       string                `json:"name"`
	CreatedBy  string                `json:"createdBy"`
	CreatedAt  time.Time             `json:"createdAt"`
	InviteCode string                `json:"inviteCode"`
	Members    map[string]Membership `json:"members"`
}

// Membership is a uid's role within a band plus a display name snapshot
// taken when the membership was written.
type Membership struct {
	Role        string    `json:"role"`
	DisplayName string    `json:"displayName"`
	JoinedAt    time.Time `json:"joinedAt"`
}

func (b *Band) isMember(uid string) bool {
	_, ok := b.Members[uid]
	return ok
}

func (b *Band) isAdmin(uid string) bool {
	m, ok := b.Members[uid]
	return ok && m.Role == roleAdmin
}

// Media is an uploaded file. Type is derived from the MIME type at upload
// and never changes. Peaks and Duration are only set for audio.
type Media struct {
	ID           string    `json:"id"`
	BandID       string    `json:"bandId"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	MimeType     string    `json:"mimeType"`
	BlobPath     string    `json:"blobPath"`
	Size         int64     `json:"size"`
	Tags         []string  `json:"tags"`
	Project      *string   `json:"project,omitempty"`
	UploadedBy   string    `json:"uploadedBy"`
	UploadedAt   time.Time `json:"uploadedAt"`
	CommentCount int       `json:"commentCount"`
	Duration     *float64  `json:"duration,omitempty"`
	Peaks        []float64 `json:"peaks,omitempty"`
}

func (m *Media) hasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// MediaPatch lists the only media fields a member may change.
type MediaPatch struct {
	Name    *string   `json:"name,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
	Project *string   `json:"project,omitempty"`
}

func (p MediaPatch) empty() bool {
	return p.Name == nil && p.Tags == nil && p.Project == nil
}

// UploadResult is returned to the uploader.
type UploadResult struct {
	MediaID string `json:"media_id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
}

type Comment struct {
	ID                string    `json:"id"`
	MediaID           string    `json:"mediaId"`
	Timestamp         float64   `json:"timestamp"`
	Text              string    `json:"text"`
	AuthorUID         string    `json:"authorUid"`
	AuthorDisplayName string    `json:"author"`
	CreatedAt         time.Time `json:"createdAt"`
	Resolved          bool      `json:"resolved"`
	ReplyCount        int       `json:"replyCount"`
}

// CommentPatch lists the only comment fields that may be merged.
type CommentPatch struct {
	Resolved *bool   `json:"resolved,omitempty"`
	Text     *string `json:"text,omitempty"`
}

func (p CommentPatch) empty() bool {
	return p.Resolved == nil && p.Text == nil
}

type Reply struct {
	ID                string    `json:"id"`
	CommentID         string    `json:"commentId"`
	Text              string    `json:"text"`
	AuthorUID         string    `json:"authorUid"`
	AuthorDisplayName string    `json:"author"`
	CreatedAt         time.Time `json:"createdAt"`
}

// MediaRef addresses a media item inside a band.
type MediaRef struct {
	BandID  string
	MediaID string
}

// CommentRef addresses a comment under a media item.
type CommentRef struct {
	BandID    string
	MediaID   string
	CommentID string
}

func (r CommentRef) media() MediaRef {
	return MediaRef{BandID: r.BandID, MediaID: r.MediaID}
}

// Event is a calendar entry (rehearsal, gig, ...) scoped to a band.
type Event struct {
	ID          string            `json:"id"`
	BandID      string            `json:"bandId"`
	Title       string            `json:"title"`
	Type        string            `json:"type"`
	Start       string            `json:"start"`
	End         string            `json:"end"`
	Location    string            `json:"location"`
	Description string            `json:"description"`
	LinkedMedia []string          `json:"linkedMedia"`
	RSVP        map[string]string `json:"rsvp"`
	CreatedBy   string            `json:"createdBy"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// EventInput is the full set of caller-editable event fields.
type EventInput struct {
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	LinkedMedia []string `json:"linked_media"`
}

func validRSVP(status string) bool {
	switch status {
	case rsvpGoing, rsvpMaybe, rsvpNotGoing:
		return true
	}
	return false
}

// Channel is a named chat room inside a band.
type Channel struct {
	ID        string    `json:"id"`
	BandID    string    `json:"bandId"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type Message struct {
	ID                string    `json:"id"`
	ChannelID         string    `json:"channelId"`
	Text              string    `json:"text"`
	AuthorUID         string    `json:"authorUid"`
	AuthorDisplayName string    `json:"author"`
	CreatedAt         time.Time `json:"createdAt"`
}
