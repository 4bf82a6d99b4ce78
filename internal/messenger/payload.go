package messenger

// Payload variants mirror the Messenger Platform send API message object:
// plain text, text with quick replies, and the generic template carousel.

// MaxCarouselCards is the platform's cap on generic-template elements.
const MaxCarouselCards = 10

// QuickReply is a tappable choice; Payload is echoed back verbatim by the
// platform when the user selects it.
type QuickReply struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	Payload     string `json:"payload"`
}

// Card is one element of a generic-template carousel.
type Card struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type attachmentPayload struct {
	TemplateType string `json:"template_type"`
	Elements     []Card `json:"elements"`
}

type attachment struct {
	Type    string            `json:"type"`
	Payload attachmentPayload `json:"payload"`
}

// Payload is the message object of an outbound send.
type Payload struct {
	Text         string       `json:"text,omitempty"`
	QuickReplies []QuickReply `json:"quick_replies,omitempty"`
	Attachment   *attachment  `json:"attachment,omitempty"`
}

// Text builds a plain text message.
func Text(text string) Payload {
	return Payload{Text: text}
}

// Choice pairs a quick-reply label with the opaque payload it carries.
type Choice struct {
	Title   string
	Payload string
}

// QuickReplies builds a text message with tappable choices.
func QuickReplies(text string, choices ...Choice) Payload {
	p := Payload{Text: text}
	for _, c := range choices {
		p.QuickReplies = append(p.QuickReplies, QuickReply{
			ContentType: "text",
			Title:       c.Title,
			Payload:     c.Payload,
		})
	}
	return p
}

// GenericTemplate builds a carousel of cards. Callers keep the card count
// within MaxCarouselCards; the platform rejects longer carousels.
func GenericTemplate(cards ...Card) Payload {
	return Payload{
		Attachment: &attachment{
			Type: "template",
			Payload: attachmentPayload{
				TemplateType: "generic",
				Elements:     cards,
			},
		},
	}
}
