package linkupapi

// Profile is the backend's user record (the users table row). Timestamps are
// kept as the backend's formatted strings; the client never computes on them.
type Profile struct {
	UserID          int64  `json:"user_id"`
	TgID            int64  `json:"tg_id"`
	Username        string `json:"username"`
	DisplayName     string `json:"display_name"`
	ProjectName     string `json:"project_name"`
	Role            string `json:"role"`
	Description     string `json:"description"`
	ProfileImageURL string `json:"profile_image_url"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// Connection is one recorded pairing of the current user with another
// profile, optionally tied to an event.
type Connection struct {
	GroupID         int64   `json:"group_id"`
	GroupLink       string  `json:"group_link"`
	EventName       string  `json:"event_name"`
	MeetingLocation string  `json:"meeting_location"`
	MeetingTime     string  `json:"meeting_time"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
	OtherUserID     int64   `json:"other_user_id"`
	OtherUser       Profile `json:"other_user"`
}

// Group is the bare group record, without participants.
type Group struct {
	GroupID         int64  `json:"group_id"`
	GroupLink       string `json:"group_link"`
	EventName       string `json:"event_name"`
	MeetingLocation string `json:"meeting_location"`
	MeetingTime     string `json:"meeting_time"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// GroupDetails is a group together with the full profiles of its participants.
type GroupDetails struct {
	Group        Group     `json:"group"`
	Participants []Profile `json:"participants"`
}

// Participant is one row of the group_participants table.
type Participant struct {
	User1ID   int64  `json:"user1_id"`
	User2ID   int64  `json:"user2_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type CreateUserPayload struct {
	TgID            int64  `json:"tg_id"`
	Username        string `json:"username,omitempty"`
	DisplayName     string `json:"display_name,omitempty"`
	ProjectName     string `json:"project_name,omitempty"`
	Role            string `json:"role,omitempty"`
	Description     string `json:"description,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

// UpdateUserPayload carries a partial update; empty fields are omitted from
// the request body, mirroring the backend's "only provided fields" contract.
type UpdateUserPayload struct {
	Username        string `json:"username,omitempty"`
	DisplayName     string `json:"display_name,omitempty"`
	ProjectName     string `json:"project_name,omitempty"`
	Role            string `json:"role,omitempty"`
	Description     string `json:"description,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

type CreateGroupPayload struct {
	GroupLink       string `json:"group_link"`
	User1ID         int64  `json:"user1_id"`
	User2ID         int64  `json:"user2_id"`
	EventName       string `json:"event_name,omitempty"`
	MeetingLocation string `json:"meeting_location,omitempty"`
	MeetingTime     string `json:"meeting_time,omitempty"`
}
