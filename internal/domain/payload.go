package domain

import "encoding/json"

// FlexID decodes a JSON string or number into its string form. The AI
// backend sends client and chat ids in both shapes.
type FlexID string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

// ProductItem is one product candidate inside a look slot, sourced from the
// shopping search provider.
type ProductItem struct {
	Title       string  `json:"title"`
	ProductLink string  `json:"product_link"`
	Source      string  `json:"source"`
	Icon        string  `json:"icon"`
	Price       float64 `json:"price"`
	PhotoURL    string  `json:"photo_url"`
}

// LookDescription describes up to five category slots of one look
// (e.g. top, bottom, shoes, accessory, bag).
type LookDescription struct {
	Item1 string `json:"item1,omitempty"`
	Item2 string `json:"item2,omitempty"`
	Item3 string `json:"item3,omitempty"`
	Item4 string `json:"item4,omitempty"`
	Item5 string `json:"item5,omitempty"`
}

// LookBatch is one delivered batch of outfit recommendations. Remaining is
// the number of additional batches the backend still intends to deliver;
// it is a pointer because "absent" and "zero" mean different things to the
// payload classifier.
type LookBatch struct {
	Remaining   *int             `json:"remaining,omitempty"`
	Description *LookDescription `json:"descricaoLooks,omitempty"`
	Items1      []ProductItem    `json:"items1,omitempty"`
	Items2      []ProductItem    `json:"items2,omitempty"`
	Items3      []ProductItem    `json:"items3,omitempty"`
	Items4      []ProductItem    `json:"items4,omitempty"`
	Items5      []ProductItem    `json:"items5,omitempty"`
}

// RemainingCount returns Remaining, treating an absent field as zero.
func (b LookBatch) RemainingCount() int {
	if b.Remaining == nil {
		return 0
	}
	return *b.Remaining
}

// Payload is a normalized inbound AI payload: either a Q&A turn or one
// look batch. There is no explicit tag; classification is structural via
// IsLook.
type Payload struct {
	ChatID    string   `json:"chatId"`
	ClienteID string   `json:"clienteId,omitempty"`
	Question  string   `json:"question,omitempty"`
	Answers   []string `json:"answers,omitempty"`
	LookBatch
}

// IsLook reports whether the payload is a look batch. A payload is a look
// batch iff it carries a look description or a remaining count (including
// zero); otherwise it is a Q&A turn.
func (p Payload) IsLook() bool {
	return p.Description != nil || p.Remaining != nil
}

// Look returns the look-batch portion of the payload.
func (p Payload) Look() LookBatch {
	return p.LookBatch
}

// WebhookRequest is the raw inbound webhook body. The backend uses two
// spellings for the look-description field depending on the workflow
// branch; Normalize folds them into one.
type WebhookRequest struct {
	ClienteID      FlexID           `json:"clienteId"`
	ChatID         FlexID           `json:"chatId"`
	Question       string           `json:"question"`
	Answers        []string         `json:"answers"`
	Remaining      *int             `json:"remaining"`
	DescricaoLooks *LookDescription `json:"descricaoLooks"`
	DescricaoAlt   *LookDescription `json:"descricao_looks"`
	Items1         []ProductItem    `json:"items1"`
	Items2         []ProductItem    `json:"items2"`
	Items3         []ProductItem    `json:"items3"`
	Items4         []ProductItem    `json:"items4"`
	Items5         []ProductItem    `json:"items5"`
}

// Normalize converts the raw webhook body into a Payload. Look responses
// keep only look fields, Q&A responses keep only question fields, matching
// the variant split the classifier expects. Answers defaults to an empty
// slice so the client always gets a list.
func (r WebhookRequest) Normalize() Payload {
	p := Payload{
		ChatID:    string(r.ChatID),
		ClienteID: string(r.ClienteID),
	}

	desc := r.DescricaoLooks
	if desc == nil {
		desc = r.DescricaoAlt
	}

	if desc != nil || r.Remaining != nil {
		p.Remaining = r.Remaining
		p.Description = desc
		p.Items1 = r.Items1
		p.Items2 = r.Items2
		p.Items3 = r.Items3
		p.Items4 = r.Items4
		p.Items5 = r.Items5
		return p
	}

	p.Question = r.Question
	p.Answers = r.Answers
	if p.Answers == nil {
		p.Answers = []string{}
	}
	return p
}
