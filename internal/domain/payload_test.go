package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(n int) *int { return &n }

func TestIsLook(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		want    bool
	}{
		{
			name:    "question only",
			payload: Payload{Question: "Qual a ocasião?", Answers: []string{"Casual", "Formal"}},
			want:    false,
		},
		{
			name:    "remaining zero is still a look",
			payload: Payload{LookBatch: LookBatch{Remaining: intp(0)}},
			want:    true,
		},
		{
			name:    "remaining positive",
			payload: Payload{LookBatch: LookBatch{Remaining: intp(3)}},
			want:    true,
		},
		{
			name:    "description without remaining",
			payload: Payload{LookBatch: LookBatch{Description: &LookDescription{Item1: "Camisa branca"}}},
			want:    true,
		},
		{
			name:    "empty payload is qa",
			payload: Payload{},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.payload.IsLook())
		})
	}
}

func TestFlexIDAcceptsStringAndNumber(t *testing.T) {
	var req WebhookRequest
	err := json.Unmarshal([]byte(`{"clienteId": 42, "chatId": "abc-123"}`), &req)
	require.NoError(t, err)

	assert.Equal(t, FlexID("42"), req.ClienteID)
	assert.Equal(t, FlexID("abc-123"), req.ChatID)
}

func TestNormalizeQA(t *testing.T) {
	req := WebhookRequest{
		ClienteID: "7",
		ChatID:    "c1",
		Question:  "Prefere cores claras ou escuras?",
		Answers:   []string{"Claras", "Escuras"},
	}

	p := req.Normalize()

	assert.False(t, p.IsLook())
	assert.Equal(t, "c1", p.ChatID)
	assert.Equal(t, "Prefere cores claras ou escuras?", p.Question)
	assert.Equal(t, []string{"Claras", "Escuras"}, p.Answers)
}

func TestNormalizeQADefaultsAnswers(t *testing.T) {
	p := WebhookRequest{ClienteID: "7", ChatID: "c1", Question: "Ok?"}.Normalize()

	require.NotNil(t, p.Answers)
	assert.Empty(t, p.Answers)
}

func TestNormalizeLook(t *testing.T) {
	req := WebhookRequest{
		ClienteID:      "7",
		ChatID:         "c1",
		Remaining:      intp(2),
		DescricaoLooks: &LookDescription{Item1: "Blazer", Item2: "Calça alfaiataria"},
		Items1:         []ProductItem{{Title: "Blazer preto", Price: 299.9}},
		// A stray question on a look payload is ignored by the variant split.
		Question: "deveria sumir",
	}

	p := req.Normalize()

	require.True(t, p.IsLook())
	assert.Empty(t, p.Question)
	assert.Equal(t, 2, p.RemainingCount())
	require.NotNil(t, p.Description)
	assert.Equal(t, "Blazer", p.Description.Item1)
	require.Len(t, p.Items1, 1)
	assert.Equal(t, "Blazer preto", p.Items1[0].Title)
}

func TestNormalizeAcceptsBothDescriptionSpellings(t *testing.T) {
	flattened := WebhookRequest{ChatID: "c1", ClienteID: "7",
		DescricaoLooks: &LookDescription{Item1: "Vestido"}}
	nested := WebhookRequest{ChatID: "c1", ClienteID: "7",
		DescricaoAlt: &LookDescription{Item1: "Vestido"}}

	p1 := flattened.Normalize()
	p2 := nested.Normalize()

	require.NotNil(t, p1.Description)
	require.NotNil(t, p2.Description)
	assert.Equal(t, p1.Description.Item1, p2.Description.Item1)
}

func TestNormalizePrefersFlattenedSpelling(t *testing.T) {
	req := WebhookRequest{ChatID: "c1", ClienteID: "7",
		DescricaoLooks: &LookDescription{Item1: "flattened"},
		DescricaoAlt:   &LookDescription{Item1: "nested"},
	}

	p := req.Normalize()

	require.NotNil(t, p.Description)
	assert.Equal(t, "flattened", p.Description.Item1)
}

func TestRemainingCountAbsentIsZero(t *testing.T) {
	assert.Equal(t, 0, LookBatch{}.RemainingCount())
	assert.Equal(t, 5, LookBatch{Remaining: intp(5)}.RemainingCount())
}

func TestPayloadJSONRoundTrip(t *testing.T) {
	raw := `{
		"clienteId": "7",
		"chatId": "c1",
		"remaining": 1,
		"descricao_looks": {"item1": "Camiseta", "item3": "Tênis"},
		"items1": [{"title": "Camiseta básica", "product_link": "tok-1", "source": "LojaX", "icon": "https://x/icon.png", "price": 29.9, "photo_url": "https://x/p.jpg"}]
	}`

	var req WebhookRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	p := req.Normalize()

	out, err := json.Marshal(p)
	require.NoError(t, err)

	// The normalized payload serializes the canonical spelling only.
	assert.Contains(t, string(out), `"descricaoLooks"`)
	assert.NotContains(t, string(out), `"descricao_looks"`)
	assert.Contains(t, string(out), `"price":29.9`)
}
