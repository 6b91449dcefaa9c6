package public

import (
	"contest-platform/internal/metrics"
	"contest-platform/logging"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// streamEvents upgrades the connection and pushes every new record as JSON.
// The read loop exists only to notice the peer going away.
func (s *Server) streamEvents(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	records, cancel := s.recorder.Subscribe(64)
	metrics.EventSubscribers.Inc()
	logging.Info("Event stream opened", logging.Events, "remote", conn.RemoteAddr().String())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		defer func() {
			cancel()
			conn.Close()
			metrics.EventSubscribers.Dec()
			logging.Info("Event stream closed", logging.Events)
		}()
		for {
			select {
			case <-done:
				return
			case record, ok := <-records:
				if !ok {
					return
				}
				if err := conn.WriteJSON(record); err != nil {
					logging.Debug("Event stream write failed", logging.Events, "error", err)
					return
				}
			}
		}
	}()
	return nil
}
