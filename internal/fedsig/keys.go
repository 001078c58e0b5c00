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

// Package fedsig is the Identity & Signing component (C1): it mints
// the RSA keypair every local actor is federated with, and signs and
// verifies the HTTP Signatures carried on every inbox delivery.
package fedsig

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// keyBits is the RSA modulus size for newly generated actor keypairs.
// 2048 matches what every deployed ActivityPub implementation accepts;
// federails never generates 4096-bit keys since some peers still cap
// accepted key size.
const keyBits = 2048

// GenerateKeypair mints a fresh RSA keypair for a newly created local
// actor, PEM-encoding both halves for storage in fedmodel.Actor's
// PublicKeyPEM / PrivateKeyPEM columns.
func GenerateKeypair() (publicPEM, privatePEM string, err error) {
	key, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return "", "", fmt.Errorf("fedsig: generate key: %w", err)
	}

	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return "", "", fmt.Errorf("fedsig: marshal public key: %w", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubBytes,
	})

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	return string(pubPEM), string(privPEM), nil
}

// DecodePublicKey parses a PEM-encoded PKIX RSA public key, as stored
// on fedmodel.Actor or embedded in a fetched actor document.
func DecodePublicKey(pemStr string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, fmt.Errorf("fedsig: no PEM block found")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("fedsig: parse PKIX public key: %w", err)
	}

	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("fedsig: key is not RSA")
	}

	return rsaPub, nil
}

// DecodePrivateKey parses a PEM-encoded PKCS1 RSA private key, as
// stored on fedmodel.Actor for local actors only.
func DecodePrivateKey(pemStr string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, fmt.Errorf("fedsig: no PEM block found")
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("fedsig: parse PKCS1 private key: %w", err)
	}

	return key, nil
}
