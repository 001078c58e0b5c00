// federails
// Copyright (C) federails authors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package fedsig

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-fed/httpsig"
)

// MaxDateSkew bounds how far a request's Date header may drift from
// the server's clock before it's rejected as a possible replay, the
// same ±30s window common ActivityPub implementations enforce.
const MaxDateSkew = 30 * time.Second

// ErrMissingDate, ErrDateSkew and ErrDigestMismatch are returned by
// VerifyRequest for the respective failure, so the Inbox Dispatcher
// (C6) can log the precise rejection reason.
var (
	ErrMissingDate   = errors.New("fedsig: missing Date header")
	ErrDateSkew      = errors.New("fedsig: Date header outside allowed skew")
	ErrDigestMismatch = errors.New("fedsig: body does not match Digest header")
)

// KeyResolver resolves a signature's keyId (an actor's public-key PEM,
// typically fetched or read from cache/store) to a verifier key. The
// Inbox Dispatcher supplies this as a closure over the Fetcher (C3)
// and Store (C2) so fedsig stays free of a dependency on either.
type KeyResolver func(ctx context.Context, keyID string) (pemKey string, err error)

// VerifyDigest checks that the Digest request header (if present)
// matches the SHA-256 hash of body. An absent header is tolerated for
// compatibility with peers that omit it; an unrecognized algorithm is
// skipped rather than rejected.
func VerifyDigest(body []byte, digestHeader string) error {
	if digestHeader == "" {
		return nil
	}
	const prefix = "SHA-256="
	if !strings.HasPrefix(digestHeader, prefix) {
		return nil
	}
	sum := sha256.Sum256(body)
	got := base64.StdEncoding.EncodeToString(sum[:])
	want := digestHeader[len(prefix):]
	if got != want {
		return ErrDigestMismatch
	}
	return nil
}

// VerifyRequest checks the Date header's freshness, the body's Digest,
// and the HTTP Signature itself, resolving the signer's public key via
// resolve. Returns the keyId on success.
func VerifyRequest(ctx context.Context, req *http.Request, body []byte, resolve KeyResolver) (string, error) {
	dateStr := req.Header.Get("Date")
	if dateStr == "" {
		return "", ErrMissingDate
	}
	reqTime, err := http.ParseTime(dateStr)
	if err != nil {
		return "", fmt.Errorf("fedsig: invalid Date header %q: %w", dateStr, err)
	}
	if skew := time.Since(reqTime); skew > MaxDateSkew || skew < -MaxDateSkew {
		return "", ErrDateSkew
	}

	if err := VerifyDigest(body, req.Header.Get("Digest")); err != nil {
		return "", err
	}

	verifier, err := httpsig.NewVerifier(req)
	if err != nil {
		return "", fmt.Errorf("fedsig: create verifier: %w", err)
	}
	keyID := verifier.KeyId()

	pemKey, err := resolve(ctx, keyID)
	if err != nil {
		return keyID, fmt.Errorf("fedsig: resolve key %s: %w", keyID, err)
	}

	pubKey, err := DecodePublicKey(pemKey)
	if err != nil {
		return keyID, err
	}

	if err := verifier.Verify(pubKey, httpsig.RSA_SHA256); err != nil {
		return keyID, fmt.Errorf("fedsig: signature verification failed: %w", err)
	}

	return keyID, nil
}
