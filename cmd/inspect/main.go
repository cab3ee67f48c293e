// Command inspect dumps the contents of a chathub BadgerDB store for
// debugging. It opens the database read-only, so it is safe to point at
// the store of a running server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "/tmp/chathub", "Path to badger DB")
	// Default to messages; "user:", "channel:" and "member:" work too.
	prefix := flag.String("prefix", "msg:", "Prefix to scan")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "Timestamp", "Who", "Detail"})
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
			key := string(item.Key())

			// The name index only holds a channel id, skip it.
			if strings.HasPrefix(key, "channel_name:") {
				continue
			}

			err := item.Value(func(v []byte) error {
				kind, at, who, detail, err := describe(key, v)
				if err != nil {
					// Keep scanning on a single bad record.
					fmt.Printf("Error decoding key %s: %v\n", key, err)
					return nil
				}
				table.Append([]string{key, kind, at, who, detail})
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

// describe decodes one record according to its key prefix.
func describe(key string, value []byte) (kind, at, who, detail string, err error) {
	switch {
	case strings.HasPrefix(key, "msg:"):
		var record struct {
			SenderName string `json:"sender_name"`
			Text       string `json:"text"`
			At         int64  `json:"at"`
		}
		if err = json.Unmarshal(value, &record); err != nil {
			return
		}
		return "MSG", time.Unix(0, record.At).UTC().Format("15:04:05"), record.SenderName, truncate(record.Text), nil

	case strings.HasPrefix(key, "user:"):
		var record struct {
			Username  string `json:"username"`
			Email     string `json:"email"`
			CreatedAt int64  `json:"created_at"`
		}
		if err = json.Unmarshal(value, &record); err != nil {
			return
		}
		return "USER", time.Unix(record.CreatedAt, 0).UTC().Format("2006-01-02"), record.Username, record.Email, nil

	case strings.HasPrefix(key, "channel:"):
		var record struct {
			Name      string `json:"name"`
			CreatedBy string `json:"created_by"`
			CreatedAt int64  `json:"created_at"`
		}
		if err = json.Unmarshal(value, &record); err != nil {
			return
		}
		return "CHANNEL", time.Unix(record.CreatedAt, 0).UTC().Format("2006-01-02"), record.CreatedBy, record.Name, nil

	case strings.HasPrefix(key, "member:"):
		var record struct {
			UserID   string `json:"user_id"`
			JoinedAt int64  `json:"joined_at"`
		}
		if err = json.Unmarshal(value, &record); err != nil {
			return
		}
		return "MEMBER", time.Unix(record.JoinedAt, 0).UTC().Format("2006-01-02"), record.UserID, "", nil
	}
	return "RAW", "", "", truncate(string(value)), nil
}

func truncate(s string) string {
	if len(s) > 60 {
		return s[:57] + "..."
	}
	return s
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	db, err := badger.Open(opts)
	if err != nil {
		if strings.Contains(err.Error(), "Log truncate required") {
			// Open in write mode once to let badger truncate, then retry.
			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)

			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}
			db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
