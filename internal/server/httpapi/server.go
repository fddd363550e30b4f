// Package httpapi is the share portal: third parties redeem a share code and
// fetch the documents it grants, without an account.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/custodian/internal/common"
	"github.com/dmitrijs2005/custodian/internal/logging"
	"github.com/dmitrijs2005/custodian/internal/server/models"
	"github.com/dmitrijs2005/custodian/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

type ShareCodeRedeemer interface {
	Redeem(ctx context.Context, fullCode string) (*services.Grant, error)
}

type AccessRecorder interface {
	LogAccess(ctx context.Context, shareCodeID, documentID string, action models.AccessAction,
		clientAddress, userAgent string) (*models.DocumentAccessEvent, error)
}

type Presigner interface {
	PresignGet(ctx context.Context, key string, action models.AccessAction, filename string) (string, error)
}

type Server struct {
	address   string
	engine    *gin.Engine
	codes     ShareCodeRedeemer
	access    AccessRecorder
	presigner Presigner
	logger    logging.Logger
}

// NewServer builds the portal. X-Forwarded-For is honoured only when the
// socket peer is one of trustedProxies; with none, the peer address is what
// access events record.
func NewServer(addr string, l logging.Logger, corsOrigins, trustedProxies []string,
	codes ShareCodeRedeemer, access AccessRecorder, p Presigner) (*Server, error) {
	s := &Server{
		address:   addr,
		codes:     codes,
		access:    access,
		presigner: p,
		logger:    l.With("module", "http_server"),
	}

	r := gin.New()
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("%w: trusted proxies: %v", common.ErrorConfig, err)
	}
	r.Use(gin.Recovery(), requestLogger(s.logger))
	if len(corsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: corsOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
			MaxAge:       12 * time.Hour,
		}))
	}

	r.GET("/healthz", s.healthz)
	share := r.Group("/api/v1/share")
	share.POST("/redeem", s.redeem)
	share.GET("/documents/:documentID", s.document)

	s.engine = r
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
