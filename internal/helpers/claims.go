package helpers

import (
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionKey is the gin context key the auth middleware stores the Session under.
const SessionKey = "user"

// UnauthorizedMessage is the single 401 message for missing and rejected
// tokens alike.
const UnauthorizedMessage = "Not authorized"

type TokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Session is the authenticated caller of the current request.
type Session struct {
	UserID primitive.ObjectID `json:"id"`
	Role   string             `json:"role"`
	Email  string             `json:"email,omitempty"`
	Name   string             `json:"name,omitempty"`
}

// Owns reports whether a document belonging to userID is the caller's.
func (s *Session) Owns(userID primitive.ObjectID) bool {
	return s.UserID == userID
}

// CurrentSession returns the caller identity set by the auth middleware.
func CurrentSession(c *gin.Context) (*Session, bool) {
	value, exists := c.Get(SessionKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*Session)
	return session, ok && session != nil
}
