// Package middleware provides HTTP middleware for the puzzle layer.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	apperrors "github.com/gridchain/puzzle_layer/internal/errors"
)

// WalletHeader carries the caller's identity. There is no signature check;
// the header is trusted as-is.
const WalletHeader = "X-Wallet-Address"

type contextKey string

const walletContextKey contextKey = "wallet"

var walletPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// Wallet extracts and validates the wallet header when present. A malformed
// header fails the request; an absent one passes through so public routes
// keep working.
func Wallet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(WalletHeader))
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !walletPattern.MatchString(raw) {
			writeError(w, apperrors.InvalidWallet("invalid wallet address"))
			return
		}
		ctx := context.WithValue(r.Context(), walletContextKey, strings.ToLower(raw))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireWallet rejects requests that did not present a valid wallet header.
func RequireWallet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if WalletFromContext(r.Context()) == "" {
			writeError(w, apperrors.Unauthorized("wallet address required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WalletFromContext returns the validated, lowercased wallet address, or "".
func WalletFromContext(ctx context.Context) string {
	wallet, _ := ctx.Value(walletContextKey).(string)
	return wallet
}

func writeError(w http.ResponseWriter, svcErr *apperrors.ServiceError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(svcErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error": map[string]interface{}{
			"code":    string(svcErr.Code),
			"message": svcErr.Message,
		},
	})
}
