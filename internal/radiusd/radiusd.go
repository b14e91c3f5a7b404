// Package radiusd bridges RADIUS Access-Requests to the heracles
// credential store, so network gear can authenticate against the same
// user database.
package radiusd

import (
	"context"
	"net"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"layeh.com/radius"
	"layeh.com/radius/rfc2865"

	"github.com/b1naryth1ef/heracles/internal/config"
	"github.com/b1naryth1ef/heracles/internal/models"
)

// Server answers RADIUS Access-Requests with Accept/Reject decisions.
type Server struct {
	db     *gorm.DB
	server *radius.PacketServer
}

// NewServer constructs a Server bound per the RADIUS config.
func NewServer(db *gorm.DB, cfg config.RadiusConfig) *Server {
	s := &Server{db: db}
	s.server = &radius.PacketServer{
		Addr:         cfg.Bind,
		SecretSource: radius.StaticSecretSource([]byte(cfg.Secret)),
		Handler:      radius.HandlerFunc(s.handle),
	}
	return s
}

// ListenAndServe blocks serving RADIUS requests.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Serve blocks serving RADIUS requests on an existing packet connection.
func (s *Server) Serve(conn net.PacketConn) error {
	return s.server.Serve(conn)
}

// Shutdown stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handle(w radius.ResponseWriter, r *radius.Request) {
	username := rfc2865.UserName_GetString(r.Packet)
	password := rfc2865.UserPassword_GetString(r.Packet)

	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		w.Write(r.Response(radius.CodeAccessReject))
		return
	}

	// Passwordless accounts can never authenticate over RADIUS.
	if !user.HasPassword() || user.CheckPassword(password) != nil {
		w.Write(r.Response(radius.CodeAccessReject))
		return
	}

	log.WithField("username", username).Debug("radius access accepted")
	w.Write(r.Response(radius.CodeAccessAccept))
}
