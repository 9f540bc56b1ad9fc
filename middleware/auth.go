package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"varto-api/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Token audiences keep a customer token out of /admin and vice versa
const (
	AudienceStaff    = "varto-staff"
	AudienceCustomer = "varto-customer"
)

const (
	ctxUserID     = "userID"
	ctxRole       = "role"
	ctxCustomerID = "customerID"
)

type Claims struct {
	Role  models.UserRole `json:"role,omitempty"`
	Phone string          `json:"phone,omitempty"`
	jwt.RegisteredClaims
}

// Auth issues and verifies signed tokens for both namespaces
type Auth struct {
	secret      []byte
	staffTTL    time.Duration
	customerTTL time.Duration
}

func NewAuth(secret []byte, staffTTL, customerTTL time.Duration) *Auth {
	return &Auth{secret: secret, staffTTL: staffTTL, customerTTL: customerTTL}
}

// GenerateStaffToken creates a signed JWT for an admin, vendor or courier user
func (a *Auth) GenerateStaffToken(user *models.User) (string, error) {
	return a.sign(Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Audience:  jwt.ClaimStrings{AudienceStaff},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(a.staffTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
}

// GenerateCustomerToken creates a signed JWT after a successful OTP check
func (a *Auth) GenerateCustomerToken(customer *models.Customer) (string, error) {
	return a.sign(Claims{
		Phone: customer.Phone,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(customer.ID), 10),
			Audience:  jwt.ClaimStrings{AudienceCustomer},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(a.customerTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
}

func (a *Auth) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Parse verifies tokenStr for the given audience and returns its subject id
func (a *Auth) Parse(tokenStr, audience string) (*Claims, uint, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithAudience(audience))
	if err != nil {
		return nil, 0, err
	}
	if !token.Valid {
		return nil, 0, errors.New("invalid token")
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return nil, 0, errors.New("invalid token subject")
	}
	return claims, uint(id), nil
}

// StaffRequired validates a staff JWT and injects the user into context
func (a *Auth) StaffRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			return
		}
		claims, id, err := a.Parse(tokenStr, AudienceStaff)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(ctxUserID, id)
		c.Set(ctxRole, string(claims.Role))
		c.Next()
	}
}

// CustomerRequired validates a customer JWT and injects the customer id
func (a *Auth) CustomerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			return
		}
		_, id, err := a.Parse(tokenStr, AudienceCustomer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(ctxCustomerID, id)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		// browsers cannot set headers on a websocket handshake
		if q := c.Query("access_token"); q != "" && c.IsWebsocket() {
			return q, true
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required (Bearer <token>)"})
		return "", false
	}
	return strings.TrimPrefix(authHeader, "Bearer "), true
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerRole := GetRole(c)
		if callerRole == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Role not found in context"})
			return
		}
		for _, r := range roles {
			if callerRole == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "Access denied. Required role(s): " + rolesString(roles),
		})
	}
}

func rolesString(roles []models.UserRole) string {
	s := make([]string, len(roles))
	for i, r := range roles {
		s[i] = string(r)
	}
	return strings.Join(s, ", ")
}

// GetUserID extracts caller user ID from context
func GetUserID(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}

// GetRole extracts caller role from context
func GetRole(c *gin.Context) models.UserRole {
	return models.UserRole(c.GetString(ctxRole))
}

// GetCustomerID extracts the signed-in customer from context
func GetCustomerID(c *gin.Context) uint {
	return c.GetUint(ctxCustomerID)
}
