package preview

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/dilithium/internal/errors"
	"github.com/vango-dev/dilithium/pkg/protocol"
)

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	s.track(conn)
	defer func() {
		s.untrack(conn)
		conn.Close()
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The client never sends anything we act on; reading only detects
	// disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	if err := s.stream(ctx, conn); err != nil {
		if !stderrors.Is(err, context.Canceled) {
			s.logger.Warn("stream ended", "error", err)
		}
		return
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "scene complete")
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.opts.WriteTimeout))
}

// stream replays the scene onto conn. Only this goroutine writes to conn.
func (s *Server) stream(ctx context.Context, conn *websocket.Conn) error {
	rp := s.newReplay(ctx)
	defer rp.release()

	if err := rp.player.Start(); err != nil {
		s.sendError(conn, err)
		return err
	}
	rp.batches.take()
	if err := s.sendTree(conn, rp); err != nil {
		return err
	}

	ticker := time.NewTicker(s.opts.StepInterval)
	defer ticker.Stop()

	for rp.player.Remaining() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if _, err := rp.player.Step(); err != nil {
			s.sendError(conn, err)
			return err
		}
		for _, b := range rp.batches.take() {
			if err := s.send(conn, protocol.FrameOps, 0, protocol.EncodeOps(b)); err != nil {
				return err
			}
		}
		if err := s.sendTree(conn, rp); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) sendTree(conn *websocket.Conn, rp *replay) error {
	return s.send(conn, protocol.FrameTree, protocol.FlagFinal|protocol.FlagResync, protocol.EncodeTree(rp.tree()))
}

func (s *Server) sendError(conn *websocket.Conn, err error) {
	e := errors.Classify(err, "E143")
	payload := protocol.EncodeError(&protocol.ErrorMessage{Code: e.Code, Message: err.Error()})
	if werr := s.send(conn, protocol.FrameError, protocol.FlagFinal, payload); werr != nil {
		s.logger.Debug("error frame not sent", "error", werr)
	}
}

func (s *Server) send(conn *websocket.Conn, ft protocol.FrameType, flags protocol.FrameFlags, payload []byte) error {
	frame := protocol.NewFrame(ft, flags, payload)
	conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
	return conn.WriteMessage(websocket.BinaryMessage, frame.Encode())
}
