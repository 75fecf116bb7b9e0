package api

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsHandler streams the same run lifecycle events as the SSE endpoint over a
// websocket, for subscribers that prefer a bidirectional transport.
func (s *Server) wsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		client := make(chan Event)
		s.hub.register <- client
		defer func() { s.hub.unregister <- client }()

		// Reader pump: only used to detect disconnect.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case event, ok := <-client:
				if !ok {
					return
				}
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("websocket write failed: %v", err)
					return
				}
			case <-done:
				return
			}
		}
	}
}
