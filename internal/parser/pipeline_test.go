package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatlens/chatlens/internal/logger"
	"github.com/chatlens/chatlens/internal/models"
)

func newTestPipeline() *Pipeline {
	return NewPipeline(logger.Get())
}

func TestPipeline_Run_EmptyInput(t *testing.T) {
	_, err := newTestPipeline().Run("export.zip", nil)
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestPipeline_Run_SortsAndDeduplicates(t *testing.T) {
	doc := Document{
		Name: "chat.json",
		Data: []byte(`[
			{"sender":"bob","message":"later","timestamp":"2023-01-02 11:00:00"},
			{"sender":"alice","message":"earlier","timestamp":"2023-01-02 10:00:00"},
			{"sender":"alice","message":"earlier","timestamp":"2023-01-02 10:00:00"},
			{"sender":"carol","message":"no clock here","timestamp":"someday maybe"}
		]`),
	}

	result, err := newTestPipeline().Run("chat.json", []Document{doc})
	require.NoError(t, err)

	require.Len(t, result.Messages, 2, "duplicate and unparseable-timestamp records are dropped")
	assert.Equal(t, "earlier", result.Messages[0].Message)
	assert.Equal(t, "later", result.Messages[1].Message)
	assert.Equal(t, "2023-01-02 10:00:00", result.Messages[0].Timestamp)

	assert.Equal(t, 2, result.Statistics.TotalMessages)
	assert.Equal(t, 2, result.Statistics.UniqueSenders)
	assert.Equal(t, []string{"Generic JSON"}, result.Statistics.PlatformsDetected)
	assert.Equal(t, "chat.json", result.Statistics.FileProcessed)
}

func TestPipeline_Run_DedupSharedAcrossDocuments(t *testing.T) {
	record := `[{"sender":"alice","message":"hey","timestamp":"2023-01-02 10:00:00"}]`
	docs := []Document{
		{Name: "a.json", Data: []byte(record)},
		{Name: "b.json", Data: []byte(record)},
	}

	result, err := newTestPipeline().Run("export.zip", docs)
	require.NoError(t, err)
	assert.Len(t, result.Messages, 1, "the same record in two documents counts once per run")
}

func TestPipeline_Run_ToleratesBrokenDocuments(t *testing.T) {
	docs := []Document{
		{Name: "broken.json", Data: []byte(`{not json`)},
		{Name: "mystery.html", Data: []byte(`<div class="whatever">hi</div>`)},
		{Name: "notes.txt", Data: []byte(`plain text`)},
		{Name: "good.json", Data: []byte(`[{"sender":"alice","message":"hey","timestamp":"2023-01-02 10:00:00"}]`)},
	}

	result, err := newTestPipeline().Run("export.zip", docs)
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)
	assert.Equal(t, "hey", result.Messages[0].Message)
}

func TestPipeline_Run_HTMLDocument(t *testing.T) {
	html := `
	<div class="history">
		<div class="message">
			<div class="pull_right date details" title="02.01.2023 10:00:00"></div>
			<div class="from_name">Alice</div>
			<div class="text">hello</div>
		</div>
	</div>`

	result, err := newTestPipeline().Run("telegram.html", []Document{{Name: "telegram.html", Data: []byte(html)}})
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)

	assert.Equal(t, "Telegram", result.Messages[0].Source)
	assert.Equal(t, "2023-01-02 10:00:00", result.Messages[0].Timestamp)
	assert.Equal(t, []string{"Telegram"}, result.Statistics.PlatformsDetected)
}

func TestPipeline_Run_InvalidUTF8Tolerated(t *testing.T) {
	data := append([]byte(`[{"sender":"alice","message":"hey","timestamp":"2023-01-02 10:00:00"}`), 0xff, 0xfe)
	data = append(data, []byte(`]`)...)

	result, err := newTestPipeline().Run("chat.json", []Document{{Name: "chat.json", Data: data}})
	require.NoError(t, err)
	assert.Len(t, result.Messages, 1, "invalid byte sequences are stripped before decoding")
}

func TestFinalize_StableOrderForEqualInstants(t *testing.T) {
	msgs := []models.Message{
		{Source: "Telegram", Timestamp: "2023-01-02 10:00:00", Sender: "alice", Message: "first extracted"},
		{Source: "Telegram", Timestamp: "2023-01-02T10:00:00Z", Sender: "bob", Message: "second extracted"},
		{Source: "Telegram", Timestamp: "2023-01-02 09:00:00", Sender: "carol", Message: "earliest"},
	}

	result := Finalize("chat.html", msgs)
	require.Len(t, result.Messages, 3)

	assert.Equal(t, "earliest", result.Messages[0].Message)
	assert.Equal(t, "first extracted", result.Messages[1].Message, "equal instants keep extraction order")
	assert.Equal(t, "second extracted", result.Messages[2].Message)

	for _, msg := range result.Messages {
		assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, msg.Timestamp)
	}
}

func TestFinalize_PlatformsInFirstAppearanceOrder(t *testing.T) {
	msgs := []models.Message{
		{Source: "Facebook", Timestamp: "2023-01-02 12:00:00", Sender: "a", Message: "x"},
		{Source: "Telegram", Timestamp: "2023-01-02 10:00:00", Sender: "b", Message: "y"},
		{Source: "Facebook", Timestamp: "2023-01-02 11:00:00", Sender: "c", Message: "z"},
	}

	result := Finalize("mixed.zip", msgs)
	assert.Equal(t, []string{"Telegram", "Facebook"}, result.Statistics.PlatformsDetected,
		"order follows the sorted corpus, not extraction order")
}

func TestFinalize_EmptyCorpus(t *testing.T) {
	result := Finalize("empty.json", nil)
	assert.Empty(t, result.Messages)
	assert.Equal(t, 0, result.Statistics.TotalMessages)
	assert.Equal(t, 0, result.Statistics.UniqueSenders)
	assert.Empty(t, result.Statistics.PlatformsDetected)
}

func TestProcessDocument_EmptyMessageConsumesHash(t *testing.T) {
	p := newTestPipeline()
	dedup := NewDedup()

	// First occurrence has an empty message: filtered out, but its hash is
	// recorded, so the identical later record is still a duplicate.
	first := Document{Name: "a.json", Data: []byte(`[{"sender":"alice","message":"","timestamp":"2023-01-02 10:00:00"}]`)}
	second := Document{Name: "b.json", Data: []byte(`[{"sender":"alice","message":"","timestamp":"2023-01-02 10:00:00"}]`)}

	assert.Empty(t, p.ProcessDocument(first, dedup))
	assert.Empty(t, p.ProcessDocument(second, dedup))
	assert.Equal(t, 1, dedup.Len())
}
