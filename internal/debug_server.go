// Package internal hosts the operator-facing debug surface: a small HTML
// page over the coordinator's live state. Inspection goes through the
// dispatch loop, so the page always shows a consistent snapshot.
package internal

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"mentorlive/contract"
	"mentorlive/domain"
	"mentorlive/observability"
)

//go:embed inspect.html
var templatesFS embed.FS

const inspectTimeout = 2 * time.Second

type roomRow struct {
	ID      domain.ConsultationID
	Members string
	Seats   int
	Notes   int
}

type chatRow struct {
	ID          domain.ChatID
	Subscribers int
}

type pageData struct {
	At       string
	Sessions int
	Accounts int
	Rooms    []roomRow
	Chats    []chatRow
	Stats    observability.MonitoringStats
}

// StartDebugServer serves /inspect on its own port, away from client
// traffic. Not supervised: losing the debug page must never restart
// anything.
func StartDebugServer(log *slog.Logger, port int,
	dispatcher contract.IDispatcher, monitor *observability.MonitoringManager) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), inspectTimeout)
		defer cancel()

		snapshot, err := dispatcher.Inspect(ctx)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		data := pageData{
			At:       time.Now().Format(time.RFC822),
			Sessions: snapshot.Sessions,
			Accounts: snapshot.BoundAccounts,
			Stats:    monitor.Snapshot(),
		}
		for _, room := range snapshot.Rooms {
			data.Rooms = append(data.Rooms, roomRow{
				ID:      room.ID,
				Members: fmt.Sprintf("%v", room.Members),
				Seats:   len(room.Members),
				Notes:   room.Notes,
			})
		}
		for _, chat := range snapshot.Chats {
			data.Chats = append(data.Chats, chatRow{
				ID:          chat.ID,
				Subscribers: chat.Subscribers,
			})
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		addr := fmt.Sprintf("0.0.0.0:%d", port)
		log.Info("Debug server listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Warn("Debug server stopped", "error", err)
		}
	}()
}
