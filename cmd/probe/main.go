// Command probe connects to a running signaling server like a web client
// would, optionally joins a consultation or subscribes chats, and prints
// every received event as a table. Handy to watch a live environment or
// to hold a seat while testing the second one by hand.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/net/websocket"
)

type frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type received struct {
	at    time.Time
	event string
	body  string
}

func main() {
	addr := flag.String("addr", "ws://localhost:8080/ws", "Signaling server URL")
	account := flag.String("account", "", "Account id to init with")
	consultation := flag.String("consultation", "", "Consultation id to join")
	chats := flag.String("chats", "", "Comma separated chat ids to subscribe")
	note := flag.String("note", "", "Text to add as a consultation note after init")
	call := flag.String("call", "", "Session id to send a dummy call offer to")
	listen := flag.Duration("listen", 30*time.Second, "How long to listen for events")
	flag.Parse()

	conn, err := websocket.Dial(*addr, "", "http://localhost/")
	if err != nil {
		log.Fatal("Error while connecting: ", err)
	}
	defer conn.Close()

	color.Green.Printf("Connected to %s, listening for %s\n", *addr, *listen)

	encoder := json.NewEncoder(conn)
	if *account != "" || *consultation != "" || *chats != "" {
		payload := map[string]any{}
		if *account != "" {
			payload["accountId"] = *account
		}
		if *consultation != "" {
			payload["consultationId"] = *consultation
		}
		if *chats != "" {
			payload["chatIds"] = strings.Split(*chats, ",")
		}
		sendEvent(encoder, "init", payload)
	}

	if *note != "" {
		sendEvent(encoder, "addNote", map[string]any{
			"consultationId": *consultation,
			"newNote":        map[string]string{"text": *note},
		})
	}
	if *call != "" {
		sendEvent(encoder, "callUser", map[string]any{
			"userToCall": *call,
			"signalData": map[string]string{"probe": "offer"},
		})
	}

	events := collect(conn, *listen)
	render(events)
}

func sendEvent(encoder *json.Encoder, event string, payload map[string]any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Fatal(err)
	}
	if err := encoder.Encode(frame{Event: event, Payload: raw}); err != nil {
		log.Fatal("Error while sending ", event, ": ", err)
	}
}

// collect decodes frames until the deadline. A read error ends the
// collection early; whatever arrived so far still gets printed.
func collect(conn *websocket.Conn, listen time.Duration) []received {
	deadline := time.Now().Add(listen)
	if err := conn.SetReadDeadline(deadline); err != nil {
		log.Fatal(err)
	}

	var events []received
	decoder := json.NewDecoder(conn)
	for time.Now().Before(deadline) {
		var f frame
		if err := decoder.Decode(&f); err != nil {
			break
		}

		body := string(f.Payload)
		if len(body) > 80 {
			body = body[:77] + "..."
		}
		events = append(events, received{at: time.Now(), event: f.Event, body: body})
		color.Cyan.Printf("<< %s\n", f.Event)
	}
	return events
}

func render(events []received) {
	if len(events) == 0 {
		color.Yellow.Println("No events received")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "Event", "Payload"})
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

	for _, e := range events {
		table.Append([]string{e.at.Format("15:04:05.000"), e.event, e.body})
	}
	table.Render()

	fmt.Printf("\n%d events in total\n", len(events))
}
