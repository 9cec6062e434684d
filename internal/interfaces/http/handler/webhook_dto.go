package handler

// Evolution API webhook envelope. Only the fields the ingestion flow
// reads are mapped; the gateway sends much more.

type webhookEnvelope struct {
	Event string       `json:"event"`
	Data  *webhookData `json:"data"`
}

type webhookData struct {
	Key              *messageKey     `json:"key"`
	Participant      string          `json:"participant"`
	PushName         string          `json:"pushName"`
	Message          *webhookMessage `json:"message"`
	SelectedButtonID string          `json:"selectedButtonId"`
}

type messageKey struct {
	ID        string `json:"id"`
	RemoteJID string `json:"remoteJid"`
}

type webhookMessage struct {
	Conversation        string        `json:"conversation"`
	ExtendedTextMessage *extendedText `json:"extendedTextMessage"`
	ImageMessage        *mediaMessage `json:"imageMessage"`
	AudioMessage        *mediaMessage `json:"audioMessage"`
}

type extendedText struct {
	Text string `json:"text"`
}

type mediaMessage struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// text returns the message text, wherever the gateway put it
func (m *webhookMessage) text() string {
	if m == nil {
		return ""
	}
	if m.Conversation != "" {
		return m.Conversation
	}
	if m.ExtendedTextMessage != nil && m.ExtendedTextMessage.Text != "" {
		return m.ExtendedTextMessage.Text
	}
	if m.ImageMessage != nil {
		return m.ImageMessage.Caption
	}
	return ""
}

func (m *webhookMessage) imageURL() string {
	if m == nil || m.ImageMessage == nil {
		return ""
	}
	return m.ImageMessage.URL
}

func (m *webhookMessage) audioURL() string {
	if m == nil || m.AudioMessage == nil {
		return ""
	}
	return m.AudioMessage.URL
}

// sender returns the sender JID, preferring the explicit participant
func (d *webhookData) sender() string {
	if d.Participant != "" {
		return d.Participant
	}
	if d.Key != nil {
		return d.Key.RemoteJID
	}
	return ""
}

func (d *webhookData) messageID() string {
	if d.Key == nil {
		return ""
	}
	return d.Key.ID
}
