package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blugelabs/bluge"

	"watch-party/domain"
)

// MessageIndex maintains a full-text index of chat history. Indexing is
// best-effort: chat never fails because the index is behind.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
	limit  int
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger, limit int) *MessageIndex {
	return &MessageIndex{writer: writer, log: log, limit: limit}
}

// Index adds one message to the index, scoped to its room.
func (m *MessageIndex) Index(roomCode string, msg domain.Message) error {
	doc := bluge.NewDocument(msg.ID.String()).
		AddField(bluge.NewKeywordField("room", roomCode)).
		AddField(bluge.NewTextField("content", msg.Content).StoreValue()).
		AddField(bluge.NewKeywordField("sender", msg.Sender).StoreValue()).
		AddField(bluge.NewDateTimeField("at", msg.Timestamp))
	if err := m.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("index message %s: %w", msg.ID, err)
	}
	return nil
}

// SearchHit is one chat history match.
type SearchHit struct {
	Sender  string
	Content string
}

// Search runs a room-scoped match query over message content. Returns up to
// the configured limit of hits starting at offset, plus the total match
// count.
func (m *MessageIndex) Search(ctx context.Context, terms, roomCode string, offset int) ([]SearchHit, uint64, error) {
	reader, err := m.writer.Reader()
	if err != nil {
		return nil, 0, fmt.Errorf("open index reader: %w", err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			m.log.Warn("Failed to close index reader", "error", err)
		}
	}()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("content")).
		AddMust(bluge.NewTermQuery(roomCode).SetField("room"))
	request := bluge.NewTopNSearch(m.limit, query).
		SetFrom(offset).
		WithStandardAggregations()

	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, 0, fmt.Errorf("search %q: %w", terms, err)
	}

	var hits []SearchHit
	match, err := iterator.Next()
	for err == nil && match != nil {
		var hit SearchHit
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "sender":
				hit.Sender = string(value)
			case "content":
				hit.Content = string(value)
			}
			return true
		})
		if visitErr != nil {
			return nil, 0, visitErr
		}
		hits = append(hits, hit)
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, 0, err
	}
	return hits, iterator.Aggregations().Count(), nil
}
