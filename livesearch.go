package tunedex

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// watchRequest is one search-as-you-type frame from the client.
type watchRequest struct {
	Filter string `json:"filter"`
}

// watchResponse answers the client's latest filter. It is re-sent whenever
// the collection changes.
type watchResponse struct {
	Filter string   `json:"filter"`
	Total  int      `json:"total"`
	IDs    []uint64 `json:"ids"`
}

// handleWatch upgrades the request and runs a live search session over it.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request, collectionName string) {
	collection, exists := s.getCollection(collectionName)
	if !exists {
		http.Error(w, "Collection not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	go watchCollection(conn, collection)
}

/*
watchCollection multiplexes filter frames from the client with change ticks
from the collection. Each event re-evaluates the latest filter and writes the
matching ids back. Closing the connection ends the session and deregisters
the watcher.
*/
func watchCollection(conn *websocket.Conn, collection *Collection) {
	defer conn.Close()

	notify := collection.addWatcher()
	defer collection.removeWatcher(notify)

	filters := make(chan string)
	done := make(chan struct{})
	quit := make(chan struct{})
	defer close(quit)

	// Reader: one goroutine per connection feeds filter strings in. quit
	// unblocks it if the writer side bails first.
	go func() {
		defer close(done)
		for {
			var req watchRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			select {
			case filters <- req.Filter:
			case <-quit:
				return
			}
		}
	}()

	var filter string
	received := false
	for {
		select {
		case filter = <-filters:
			received = true
		case <-notify:
			// Nothing to re-run until the client has sent a filter.
			if !received {
				continue
			}
		case <-done:
			return
		}

		ids := collection.FilterIDs(filter)
		resp := watchResponse{Filter: filter, Total: len(ids), IDs: ids}
		if err := conn.WriteJSON(&resp); err != nil {
			return
		}
	}
}
