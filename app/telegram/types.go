package telegram

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

type getUpdatesResponse struct {
	OK          bool     `json:"ok"`
	Description string   `json:"description,omitempty"`
	Result      []Update `json:"result"`
}

type Update struct {
	UpdateID    int64    `json:"update_id"`
	ChannelPost *Message `json:"channel_post,omitempty"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Date      int64  `json:"date"`
	Text      string `json:"text"`
	Chat      Chat   `json:"chat"`
}

type Chat struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Title    string `json:"title"`
	Type     string `json:"type"`
}
