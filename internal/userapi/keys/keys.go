// Package keys owns the identity authority's signing keypair.
package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// Keypair is the process-lifetime RSA signing keypair. It is generated once
// at startup and held only in memory: restarting the process invalidates all
// outstanding tokens, an accepted limitation of this design.
type Keypair struct {
	private   *rsa.PrivateKey
	publicPEM string
}

// Generate creates a fresh RSA-2048 keypair.
func Generate() (*Keypair, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generate signing keypair: %w", err)
	}

	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("encode public key: %w", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: der,
	})

	return &Keypair{
		private:   priv,
		publicPEM: string(pemBytes),
	}, nil
}

// Private returns the signing key. It never leaves this process.
func (k *Keypair) Private() *rsa.PrivateKey {
	return k.private
}

// PublicPEM returns the PEM-encoded public half served to the gateway.
func (k *Keypair) PublicPEM() string {
	return k.publicPEM
}
