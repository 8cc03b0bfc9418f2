package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	_ "net/http/pprof" // Profiling
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"wasteland-server/internal/version"
	"wasteland-server/pkg/api"
	"wasteland-server/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StateReader - источник снимка для отладки (хост).
type StateReader interface {
	Snapshot(ctx context.Context) (api.StateSyncPayload, error)
}

type Server struct {
	Slot  *HostSlot
	State StateReader
	Port  string
}

func New(slot *HostSlot, state StateReader, port string) *Server {
	return &Server{
		Slot:  slot,
		State: state,
		Port:  port,
	}
}

// Handler собирает роуты. Вынесено отдельно для httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", enableCORS(s.handleWS))
	mux.HandleFunc("/health", enableCORS(s.handleHealth))
	mux.HandleFunc("/version", enableCORS(s.handleVersion))

	debugHandler := NewDebugHandler(s.State)
	debugHandler.RegisterRoutes(mux)

	// pprof регистрируется в DefaultServeMux
	mux.Handle("/debug/pprof/", http.DefaultServeMux)
	return mux
}

// Run запускает HTTP сервер и гасит его при отмене ctx.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Infof("Wasteland host listening on :%s", s.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Разрешаем запросы с фронтенда
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		next(w, r)
	}
}

// handleWS принимает единственного пира
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.Slot.Taken() {
		http.Error(w, ErrSlotTaken.Error(), http.StatusConflict)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("Upgrade error:", err)
		return
	}

	if err := s.Slot.Attach(conn); err != nil {
		// Два пира пришли одновременно: второй проиграл гонку
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error())
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	logger.Log.WithFields(logrus.Fields{"remote": r.RemoteAddr, "agent": r.UserAgent()}).Info("Peer connected")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(version.Current())
}
