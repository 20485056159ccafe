// Package daemon serves the rig over HTTP on a unix socket.
package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hoopdev/ktaga-lab/pkg/config"
)

// Server serializes access to the rig. Every handler takes the mutex: the
// instruments themselves are single-channel serial devices, and a ramp must
// not interleave with a measurement.
type Server struct {
	mu  sync.Mutex
	rig *Rig
}

func NewServer(rig *Rig) *Server {
	return &Server{rig: rig}
}

func (s *Server) Routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/field", s.getField)
	router.PUT("/field", s.setField)
	router.GET("/field/measured", s.getMeasuredField)
	router.GET("/angle", s.getAngle)
	router.PUT("/angle", s.setAngle)
	router.GET("/instruments", s.getInstruments)
	router.GET("/instruments/:name/params", s.getParamNames)
	router.GET("/instruments/:name/params/:param", s.getParam)
	router.PUT("/instruments/:name/params/:param", s.setParam)
	router.GET("/version", s.getVersion)

	return router
}

// Run opens the rig, serves it on the unix socket, and shuts down cleanly on
// SIGINT/SIGTERM, ramping the field back to zero before closing transports.
func Run(cfg *config.Config) error {
	rig, err := OpenRig(cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler: NewServer(rig).Routes(),
	}

	// A stale socket from an unclean exit blocks the listener.
	if err := os.Remove(cfg.Socket); err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrapf(err, "failed to remove stale socket %s", cfg.Socket)
	}

	l, err := net.Listen("unix", cfg.Socket)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to listen on %s", cfg.Socket)
	}

	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("http server exited: %v", err)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	logrus.Info("zeroing field and closing instruments")
	if err := rig.Shutdown(); err != nil {
		logrus.Errorf("rig shutdown: %v", err)
	}

	logrus.Info("exiting")
	return nil
}
