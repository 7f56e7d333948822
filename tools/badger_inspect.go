package main

import (
	"bate-papo/domain"
	"bate-papo/repositories"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	table := flag.String("table", "all", "What to dump: participants, messages or all")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	if *table == "all" || *table == "participants" {
		if err := dumpParticipants(db); err != nil {
			log.Fatal(err)
		}
	}
	if *table == "all" || *table == "messages" {
		if err := dumpMessages(db); err != nil {
			log.Fatal(err)
		}
	}
}

func newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
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
	return table
}

func dumpParticipants(db *badger.DB) error {
	participants, err := repositories.NewParticipantRepository(db).List()
	if err != nil {
		return err
	}
	table := newTable([]string{"Name", "Last status", "Idle"})
	now := time.Now()
	for _, p := range participants {
		table.Append([]string{
			p.Name,
			p.LastSeen.Local().Format(domain.ClockLayout),
			now.Sub(p.LastSeen).Truncate(time.Second).String(),
		})
	}
	fmt.Printf("== participants (%d)\n", len(participants))
	table.Render()
	return nil
}

func dumpMessages(db *badger.DB) error {
	messages := repositories.NewMessageRepository(db, slog.Default())
	table := newTable([]string{"Seq", "ID", "Time", "Type", "From", "To", "Text"})
	count := 0
	err := messages.ScanLog(func(m repositories.DiskMessage) error {
		count++
		// The first 8 characters are enough to tell ids apart on screen
		displayID := m.ID.String()[:8]
		table.Append([]string{
			strconv.FormatUint(m.Seq, 10),
			displayID,
			m.Time,
			string(m.Type),
			m.From,
			m.To,
			m.Text,
		})
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Printf("== messages (%d)\n", count)
	table.Render()
	return nil
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	db, err := badger.Open(opts)
	if err != nil {
		// A crashed writer leaves a log to truncate, which needs a write open first
		if strings.Contains(err.Error(), "Log truncate required") {
			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)

			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}
			_ = db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
