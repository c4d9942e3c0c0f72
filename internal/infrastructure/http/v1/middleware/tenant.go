package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"clinicore/internal/core/apperror"
	"clinicore/internal/core/tenant"
	"clinicore/internal/infrastructure/storage/postgres"
	"clinicore/pkg/logger"
)

const (
	// TenantHeader is the HTTP header for tenant identification.
	TenantHeader = "X-Tenant-ID"

	// tenantClaim is the JWT claim carrying the tenant UUID.
	tenantClaim = "tenant_id"
)

// TenantConfig wires the tenant resolution middleware.
type TenantConfig struct {
	Registry  tenant.Registry
	Pool      *pgxpool.Pool
	TxManager *postgres.TxManager

	// JWTSecret enables tenant resolution from a bearer token claim.
	// Empty disables token resolution; the header is then mandatory.
	JWTSecret []byte
}

// TenantScope middleware resolves the tenant and injects the database
// handles into the request context. It MUST run before any handler that
// touches tenant data.
//
// Resolution order: X-Tenant-ID header first, then the tenant_id claim
// of the bearer token. When both are present they must agree.
func TenantScope(cfg TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		headerID := c.GetHeader(TenantHeader)
		tokenID, err := tenantFromToken(c, cfg.JWTSecret)
		if err != nil {
			_ = c.Error(apperror.NewUnauthorized("invalid bearer token"))
			c.Abort()
			return
		}

		rawTenantID := headerID
		if rawTenantID == "" {
			rawTenantID = tokenID
		}
		if rawTenantID == "" {
			_ = c.Error(
				apperror.NewValidation("tenant is required").
					WithDetail("header", TenantHeader),
			)
			c.Abort()
			return
		}
		if headerID != "" && tokenID != "" && headerID != tokenID {
			_ = c.Error(
				apperror.NewForbidden("tenant mismatch").
					WithDetail("header_tenant_id", headerID).
					WithDetail("token_tenant_id", tokenID),
			)
			c.Abort()
			return
		}

		tenantUUID, err := uuid.Parse(rawTenantID)
		if err != nil {
			_ = c.Error(
				apperror.NewValidation("invalid tenant id").
					WithDetail("value", rawTenantID),
			)
			c.Abort()
			return
		}

		t, err := cfg.Registry.GetByID(ctx, tenantUUID.String())
		if err != nil {
			logger.Warn(ctx, "tenant lookup failed", "tenant_id", tenantUUID, "error", err)

			if errors.Is(err, tenant.ErrTenantNotFound) {
				_ = c.Error(apperror.NewNotFound("tenant", tenantUUID.String()))
			} else {
				_ = c.Error(apperror.NewInternal(err).WithDetail("tenant_id", tenantUUID.String()))
			}
			c.Abort()
			return
		}
		if !t.IsActive() {
			_ = c.Error(
				apperror.NewForbidden("tenant is not active").
					WithDetail("tenant_id", t.ID).
					WithDetail("status", string(t.Status)),
			)
			c.Abort()
			return
		}

		ctx = tenant.WithPool(ctx, cfg.Pool)
		ctx = tenant.WithTxManager(ctx, cfg.TxManager)
		ctx = tenant.WithTenant(ctx, t)
		c.Request = c.Request.WithContext(ctx)

		c.Set("tenant_uuid", t.ID)

		c.Next()
	}
}

// tenantFromToken extracts the tenant claim from the Authorization
// header. A missing header is not an error; a malformed or badly signed
// token is.
func tenantFromToken(c *gin.Context, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", nil
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", fmt.Errorf("malformed authorization header")
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("validate token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected claims type %T", token.Claims)
	}
	tid, _ := claims[tenantClaim].(string)
	return tid, nil
}
