package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"

	"watch-party/domain"
	"watch-party/domain/event"
)

// Read-only dump of the shared store: room records and any event key still
// in flight. Opens alongside a running participant thanks to the bypassed
// lock guard.
func main() {
	dbPath := flag.String("db", "./data/party", "Path to badger DB")
	prefix := flag.String("prefix", "", "Prefix to scan (empty scans everything)")
	flag.Parse()

	opts := badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Writer", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				table.Append(describe(string(item.Key()), v))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

// storedValue mirrors the writer envelope every participant wraps around
// its values.
type storedValue struct {
	Writer uuid.UUID       `json:"writer"`
	Data   json.RawMessage `json:"data"`
}

func describe(key string, raw []byte) []string {
	var value storedValue
	if err := json.Unmarshal(raw, &value); err != nil {
		return []string{key, "RAW", "", fmt.Sprintf("%d bytes (no envelope)", len(raw))}
	}
	writer := value.Writer.String()[:8]

	switch {
	case strings.HasPrefix(key, "room:"):
		var room domain.Room
		if err := json.Unmarshal(value.Data, &room); err != nil {
			return []string{key, "ROOM", writer, fmt.Sprintf("undecodable: %v", err)}
		}
		video := "no video"
		if room.Video != nil {
			video = "video " + room.Video.VideoID
		}
		detail := fmt.Sprintf("%d user(s), %d message(s), %s, created %s",
			len(room.Users), len(room.Messages), video, room.CreatedAt.Format("15:04:05"))
		return []string{key, "ROOM", writer, detail}

	case strings.HasPrefix(key, "event:"):
		var env event.Envelope
		if err := json.Unmarshal(value.Data, &env); err != nil {
			return []string{key, "EVENT", writer, fmt.Sprintf("undecodable: %v", err)}
		}
		detail := fmt.Sprintf("%s room=%s at=%s", env.Type, env.RoomCode, env.Timestamp.Format("15:04:05"))
		return []string{key, "EVENT", writer, detail}
	}

	return []string{key, "OTHER", writer, fmt.Sprintf("%d bytes", len(value.Data))}
}
